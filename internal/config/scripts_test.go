package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-modsync/internal/models"
)

func TestRunScript_Quilt(t *testing.T) {
	doc := &Document{Profile: models.Profile{
		Name:      "quilt",
		OutputDir: "/mods",
		Filters:   models.Filters{ModLoaders: []models.ModLoader{models.LoaderQuilt}},
	}}

	require.NoError(t, RunScript(doc, "setup:quilt"))
	require.Equal(t, models.ModrinthProject("qvIfYCYJ"), doc.Overrides["P7dR8mSH"])
	require.Equal(t, []models.ModLoader{models.LoaderQuilt, models.LoaderFabric}, doc.Profile.Filters.ModLoaders)

	// Running twice does not add the loader again
	require.NoError(t, RunScript(doc, "setup:quilt"))
	require.Len(t, doc.Profile.Filters.ModLoaders, 2)
}

func TestRunScript_Sinytra(t *testing.T) {
	doc := &Document{Profile: models.Profile{
		Name:      "forge",
		OutputDir: "/mods",
		Filters:   models.Filters{ModLoaders: []models.ModLoader{models.LoaderNeoForge}},
	}}

	require.NoError(t, RunScript(doc, "setup:sinytra"))
	require.Equal(t, models.ModrinthProject("Aqlf1Shp"), doc.Overrides["P7dR8mSH"])
	require.Len(t, doc.Profile.Mods, 1)
	require.Equal(t, "Connector Extras", doc.Profile.Mods[0].Name)
	require.Equal(t, models.ModrinthProject("FYpiwiBR"), doc.Profile.Mods[0].Identifier)
	require.True(t, doc.Profile.Filters.HasLoader(models.LoaderFabric))

	require.NoError(t, RunScript(doc, "setup:sinytra"))
	require.Len(t, doc.Profile.Mods, 1)
	require.NoError(t, doc.Validate())
}

func TestRunScript_Unknown(t *testing.T) {
	err := RunScript(&Document{}, "setup:rift")
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown script "setup:rift"`)
	require.Equal(t, []string{"setup:quilt", "setup:sinytra"}, ScriptNames())
}
