package models

import (
	"fmt"
	"strings"
)

// ModRecord is a mod entry of a profile
type ModRecord struct {
	// Name is the display name of the mod
	Name string `yaml:"name"`

	// Identifier is the canonical reference used for resolution and equality
	Identifier ModIdentifier `yaml:"identifier"`

	// Slug is the platform slug; installed files are matched against it
	Slug string `yaml:"slug,omitempty"`

	// PinRelease prevents newer releases from being picked for this mod
	PinRelease bool `yaml:"pin_release,omitempty"`
}

// NewModRecord creates a new ModRecord instance
func NewModRecord(name string, id ModIdentifier, slug string) ModRecord {
	return ModRecord{
		Name:       name,
		Identifier: id,
		Slug:       slug,
	}
}

// NewDependencyRecord creates the synthetic record queued for a discovered dependency
func NewDependencyRecord(id ModIdentifier) ModRecord {
	return ModRecord{
		Name:       "Dependency: " + id.OverrideKey(),
		Identifier: id,
	}
}

// FileSlug returns the slug installed files of this mod are matched against.
// Repositories fall back to the repository name.
func (m ModRecord) FileSlug() string {
	if m.Slug != "" {
		return strings.ToLower(m.Slug)
	}
	if m.Identifier.Kind == KindGitHub {
		return strings.ToLower(m.Identifier.Repo)
	}
	return ""
}

// Matches reports whether selector names this mod by name (case-insensitive),
// canonical identifier or slug (case-insensitive).
func (m ModRecord) Matches(selector string) bool {
	if strings.EqualFold(m.Name, selector) {
		return true
	}
	if m.Identifier.MatchesSelector(selector) {
		return true
	}
	return m.Slug != "" && strings.EqualFold(m.Slug, selector)
}

// DisplayName returns the name shown in selection lists
func (m ModRecord) DisplayName() string {
	if m.Identifier.Kind == KindGitHub {
		return fmt.Sprintf("%s/%s", m.Identifier.Owner, m.Identifier.Repo)
	}
	return m.Name
}
