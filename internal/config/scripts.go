package config

import (
	"fmt"
	"sort"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// fabricAPI is the Modrinth project of Fabric API, which loader ports replace
const fabricAPI = "P7dR8mSH"

// Script mutates a profile document for a common setup
type Script func(doc *Document) error

var scripts = map[string]Script{
	"setup:quilt":   setupQuilt,
	"setup:sinytra": setupSinytra,
}

// ScriptNames lists the available scripts
func ScriptNames() []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunScript applies the named script to doc
func RunScript(doc *Document, name string) error {
	script, ok := scripts[name]
	if !ok {
		return fmt.Errorf("unknown script %q (available: %v)", name, ScriptNames())
	}
	return script(doc)
}

// setupQuilt replaces Fabric API dependencies with Quilted Fabric API and lets Fabric mods resolve
func setupQuilt(doc *Document) error {
	setOverride(doc, fabricAPI, models.ModrinthProject("qvIfYCYJ"))
	addLoader(&doc.Profile, models.LoaderFabric)
	return nil
}

// setupSinytra replaces Fabric API with Forgified Fabric API and adds Connector Extras,
// so Fabric mods run through Sinytra Connector
func setupSinytra(doc *Document) error {
	setOverride(doc, fabricAPI, models.ModrinthProject("Aqlf1Shp"))

	extras := models.ModrinthProject("FYpiwiBR")
	if !doc.Profile.Contains(extras) {
		doc.Profile.Mods = append(doc.Profile.Mods, models.NewModRecord("Connector Extras", extras, "connector-extras"))
	}

	addLoader(&doc.Profile, models.LoaderFabric)
	return nil
}

func setOverride(doc *Document, key string, target models.ModIdentifier) {
	if doc.Overrides == nil {
		doc.Overrides = models.OverrideMap{}
	}
	doc.Overrides[key] = target
}

func addLoader(p *models.Profile, loader models.ModLoader) {
	if !p.Filters.HasLoader(loader) {
		p.Filters.ModLoaders = append(p.Filters.ModLoaders, loader)
	}
}
