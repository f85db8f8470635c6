package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsafeFilename is returned for artifact filenames that would not land directly in the output directory
var ErrUnsafeFilename = errors.New("unsafe artifact filename")

// ResolvedArtifact is the downloadable file picked for a mod.
// It is created once per identifier and never mutated afterwards,
// except for Output which the reconciler rewrites.
type ResolvedArtifact struct {
	Source       ModIdentifier
	Filename     string
	URL          string
	Output       string
	Dependencies []ModIdentifier
}

// CheckFilename rejects names that are not a single visible path element, such as
// "../evil.jar", "mods/a.jar" or ".hidden.jar".
func CheckFilename(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrUnsafeFilename, name)
	}
	return nil
}

// OverrideMap maps a raw dependency identifier (project id or owner/repo)
// to the identifier that should be resolved instead
type OverrideMap map[string]ModIdentifier

// Apply returns the replacement for id, if one is configured
func (o OverrideMap) Apply(id ModIdentifier) (ModIdentifier, bool) {
	if len(o) == 0 {
		return id, false
	}
	if replacement, ok := o[id.OverrideKey()]; ok {
		return replacement, true
	}
	return id, false
}
