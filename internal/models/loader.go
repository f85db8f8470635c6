package models

import "fmt"

// ModLoader represents a mod loader kind
type ModLoader string

const (
	LoaderFabric   ModLoader = "fabric"
	LoaderQuilt    ModLoader = "quilt"
	LoaderForge    ModLoader = "forge"
	LoaderNeoForge ModLoader = "neoforge"
	LoaderVelocity ModLoader = "velocity"
)

// IsValid checks if the mod loader is valid
func (l ModLoader) IsValid() bool {
	switch l {
	case LoaderFabric, LoaderQuilt, LoaderForge, LoaderNeoForge, LoaderVelocity:
		return true
	default:
		return false
	}
}

// String returns the string representation of ModLoader
func (l ModLoader) String() string {
	return string(l)
}

// ParseModLoader parses a string into a ModLoader
func ParseModLoader(s string) (ModLoader, error) {
	l := ModLoader(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid mod loader: %s (must be fabric, quilt, forge, neoforge, or velocity)", s)
	}
	return l, nil
}

// Filters are the compatibility constraints applied during resolution
type Filters struct {
	GameVersions []string    `yaml:"game_versions"`
	ModLoaders   []ModLoader `yaml:"mod_loaders"`
}

// PrimaryLoader returns the first configured loader, if any
func (f Filters) PrimaryLoader() (ModLoader, bool) {
	if len(f.ModLoaders) == 0 {
		return "", false
	}
	return f.ModLoaders[0], true
}

// HasLoader reports whether the loader is configured
func (f Filters) HasLoader(loader ModLoader) bool {
	for _, l := range f.ModLoaders {
		if l == loader {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so tasks never share the slices
func (f Filters) Clone() Filters {
	return Filters{
		GameVersions: append([]string(nil), f.GameVersions...),
		ModLoaders:   append([]ModLoader(nil), f.ModLoaders...),
	}
}

// Validate checks the configured loaders
func (f Filters) Validate() error {
	for _, l := range f.ModLoaders {
		if !l.IsValid() {
			return fmt.Errorf("invalid mod loader: %s", l)
		}
	}
	return nil
}
