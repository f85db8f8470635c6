// Package config loads user settings and the profile document.
package config

import (
	"bytes"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/models"
)

// Document is the on-disk profile file
type Document struct {
	Profile   models.Profile     `yaml:"profile"`
	Overrides models.OverrideMap `yaml:"overrides,omitempty"`
}

// LoadProfile reads and validates a profile document
func LoadProfile(fsys filesystem.FileSystem, path string) (*Document, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return &doc, nil
}

// SaveProfile validates doc and writes it to path
func SaveProfile(fsys filesystem.FileSystem, path string, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid profile: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// ResolveOutputDir returns the output directory of a document loaded from path.
// A relative output_dir is taken relative to the directory of the profile file.
func (d *Document) ResolveOutputDir(path string) string {
	if d.Profile.OutputDir == "" || filepath.IsAbs(d.Profile.OutputDir) {
		return d.Profile.OutputDir
	}
	return filepath.Join(filepath.Dir(path), d.Profile.OutputDir)
}

// Validate checks the profile and every override target
func (d *Document) Validate() error {
	if d.Profile.OutputDir == "" {
		return fmt.Errorf("profile %q has no output_dir", d.Profile.Name)
	}
	if err := d.Profile.Validate(); err != nil {
		return err
	}
	for key, id := range d.Overrides {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("override %s: %w", key, err)
		}
	}
	return nil
}
