package models

import "fmt"

// Profile is a named set of mods installed into one output directory
type Profile struct {
	Name      string      `yaml:"name"`
	OutputDir string      `yaml:"output_dir"`
	Filters   Filters     `yaml:"filters"`
	Mods      []ModRecord `yaml:"mods"`
	Disabled  []ModRecord `yaml:"disabled,omitempty"`
}

// Validate checks that no identifier is both active and disabled
func (p *Profile) Validate() error {
	if err := p.Filters.Validate(); err != nil {
		return err
	}

	active := make(map[ModIdentifier]string, len(p.Mods))
	for _, m := range p.Mods {
		if err := m.Identifier.Validate(); err != nil {
			return fmt.Errorf("mod %s: %w", m.Name, err)
		}
		active[m.Identifier.Unpinned()] = m.Name
	}
	for _, m := range p.Disabled {
		if err := m.Identifier.Validate(); err != nil {
			return fmt.Errorf("mod %s: %w", m.Name, err)
		}
		if name, ok := active[m.Identifier.Unpinned()]; ok {
			return fmt.Errorf("mod %s (%s) is both active and disabled", name, m.Identifier)
		}
	}
	return nil
}

// Contains reports whether the identifier is present in the active or disabled set
func (p *Profile) Contains(id ModIdentifier) bool {
	id = id.Unpinned()
	for _, m := range p.Mods {
		if m.Identifier.Unpinned() == id {
			return true
		}
	}
	for _, m := range p.Disabled {
		if m.Identifier.Unpinned() == id {
			return true
		}
	}
	return false
}

// DisabledSlugs returns the file slugs of all disabled mods that have one
func (p *Profile) DisabledSlugs() map[string]bool {
	slugs := make(map[string]bool, len(p.Disabled))
	for _, m := range p.Disabled {
		if slug := m.FileSlug(); slug != "" {
			slugs[slug] = true
		}
	}
	return slugs
}

// KnownSlugs returns the file slugs of every mod of the profile
func (p *Profile) KnownSlugs() []string {
	var slugs []string
	for _, list := range [][]ModRecord{p.Mods, p.Disabled} {
		for _, m := range list {
			if slug := m.FileSlug(); slug != "" {
				slugs = append(slugs, slug)
			}
		}
	}
	return slugs
}
