package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverrideMap_Apply(t *testing.T) {
	overrides := OverrideMap{
		"P7dR8mSH":   ModrinthProject("qvIfYCYJ"),
		"owner/repo": CurseForgeProject(99),
	}

	got, ok := overrides.Apply(ModrinthProject("P7dR8mSH"))
	require.True(t, ok)
	require.Equal(t, ModrinthProject("qvIfYCYJ"), got)

	got, ok = overrides.Apply(GitHubRepository("owner", "repo"))
	require.True(t, ok)
	require.Equal(t, CurseForgeProject(99), got)

	got, ok = overrides.Apply(ModrinthProject("other"))
	require.False(t, ok)
	require.Equal(t, ModrinthProject("other"), got)

	var empty OverrideMap
	got, ok = empty.Apply(CurseForgeProject(1))
	require.False(t, ok)
	require.Equal(t, CurseForgeProject(1), got)
}

func TestNewDependencyRecord(t *testing.T) {
	rec := NewDependencyRecord(CurseForgeProject(306612))
	require.Equal(t, "Dependency: 306612", rec.Name)
	require.Equal(t, CurseForgeProject(306612), rec.Identifier)
}

func TestProfile_Validate(t *testing.T) {
	p := &Profile{
		Name: "test",
		Mods: []ModRecord{
			NewModRecord("Sodium", ModrinthProject("AANobbMI"), "sodium"),
		},
		Disabled: []ModRecord{
			NewModRecord("Lithium", ModrinthProject("gvQqBUqZ"), "lithium"),
		},
	}
	require.NoError(t, p.Validate())

	p.Disabled = append(p.Disabled, NewModRecord("Sodium again", ModrinthProject("AANobbMI").Pinned("x"), "sodium"))
	err := p.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "both active and disabled")
}

func TestProfile_ValidateRejectsUnknownLoader(t *testing.T) {
	p := &Profile{Filters: Filters{ModLoaders: []ModLoader{"rift"}}}
	require.Error(t, p.Validate())
}

func TestModRecord_Matches(t *testing.T) {
	m := NewModRecord("Fabric API", ModrinthProject("P7dR8mSH"), "fabric-api")

	require.True(t, m.Matches("fabric api"))
	require.True(t, m.Matches("P7dR8mSH"))
	require.True(t, m.Matches("FABRIC-API"))
	require.False(t, m.Matches("fabric"))
}

func TestModRecord_FileSlug(t *testing.T) {
	require.Equal(t, "sodium", NewModRecord("Sodium", ModrinthProject("x"), "Sodium").FileSlug())
	require.Equal(t, "sodium", NewModRecord("Sodium", GitHubRepository("CaffeineMC", "Sodium"), "").FileSlug())
	require.Empty(t, NewModRecord("Sodium", CurseForgeProject(1), "").FileSlug())
}

func TestProfile_DisabledSlugs(t *testing.T) {
	p := &Profile{
		Disabled: []ModRecord{
			NewModRecord("Lithium", ModrinthProject("gvQqBUqZ"), "lithium"),
			NewModRecord("No slug", CurseForgeProject(5), ""),
		},
	}
	require.Equal(t, map[string]bool{"lithium": true}, p.DisabledSlugs())
}

func TestCheckFilename(t *testing.T) {
	for _, name := range []string{"sodium-fabric-0.5.3.jar", "fabric-api-0.90.0+1.20.1.jar", "a..b.jar"} {
		require.NoError(t, CheckFilename(name), name)
	}

	for _, name := range []string{"", ".", "..", "../../evil.jar", "mods/a.jar", `..\evil.jar`, ".hidden.jar", "/etc/passwd"} {
		require.ErrorIs(t, CheckFilename(name), ErrUnsafeFilename, name)
	}
}
