package toggle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/models"
)

func markerProfile() *models.Profile {
	return &models.Profile{
		Name:      "survival",
		OutputDir: "/mods",
		Mods: []models.ModRecord{
			models.NewModRecord("Sodium Extra", models.ModrinthProject("PtjYWJkn"), "sodium-extra"),
			models.NewModRecord("Lithium", models.ModrinthProject("gvQqBUqZ"), "lithium"),
		},
		Disabled: []models.ModRecord{
			models.NewModRecord("Sodium", models.ModrinthProject("AANobbMI"), "sodium"),
			models.NewModRecord("Gamma", models.GitHubRepository("owner", "Gamma"), ""),
		},
	}
}

func TestSyncMarkers_MarksAndUnmarks(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/sodium-fabric-0.5.8.jar", []byte("sodium"))
	fsys.AddFile("/mods/sodium-extra-0.5.1.jar", []byte("extra"))
	fsys.AddFile("/mods/gamma_1.0.jar", []byte("gamma"))
	fsys.AddFile("/mods/lithium-0.11.jar.disabled", []byte("lithium"))
	fsys.AddFile("/mods/notes.txt", []byte("notes"))
	fsys.AddDir("/mods/.old")

	changes, err := SyncMarkers(fsys, "/mods", markerProfile(), nil, nil)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	require.Equal(t, []string{
		"gamma_1.0.jar.disabled",
		"lithium-0.11.jar",
		"notes.txt",
		"sodium-extra-0.5.1.jar",
		"sodium-fabric-0.5.8.jar.disabled",
	}, fsys.FileNames("/mods"))
}

func TestSyncMarkers_Idempotent(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/sodium-fabric-0.5.8.jar", nil)
	fsys.AddFile("/mods/lithium-0.11.jar.disabled", nil)
	profile := markerProfile()

	_, err := SyncMarkers(fsys, "/mods", profile, nil, nil)
	require.NoError(t, err)
	require.Len(t, fsys.Renames(), 2)

	fsys.ResetRenames()
	changes, err := SyncMarkers(fsys, "/mods", profile, nil, nil)
	require.NoError(t, err)
	require.Empty(t, changes)
	require.Empty(t, fsys.Renames())
	require.NoError(t, AuditMarkers(fsys, "/mods", profile, nil))
}

func TestSyncMarkers_DropsMarkedCopyWhenPlainExists(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/lithium-0.11.jar", []byte("new"))
	fsys.AddFile("/mods/lithium-0.11.jar.disabled", []byte("old"))

	changes, err := SyncMarkers(fsys, "/mods", markerProfile(), nil, nil)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	require.Equal(t, ActionDrop, changes[0].Action)

	content, err := fsys.ReadFile("/mods/lithium-0.11.jar")
	require.NoError(t, err)
	require.Equal(t, "new", string(content))
	require.Equal(t, []string{"lithium-0.11.jar"}, fsys.FileNames("/mods"))
}

func TestSyncMarkers_CreatesOutputDir(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()

	changes, err := SyncMarkers(fsys, "/instances/survival/mods", markerProfile(), nil, nil)
	require.NoError(t, err)
	require.Empty(t, changes)
	require.True(t, fsys.Exists("/instances/survival/mods"))
}

func TestSyncMarkers_RenameFailure(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/sodium-fabric-0.5.8.jar", nil)
	fsys.RenameError = errors.New("read-only file system")

	_, err := SyncMarkers(fsys, "/mods", markerProfile(), nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to rename sodium-fabric-0.5.8.jar")
}

func TestDisableEnable_RoundTripRemovesMarker(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/lithium-0.11.jar", nil)
	profile := markerProfile()

	_, err := Disable(profile, []string{"lithium"}, nil)
	require.NoError(t, err)
	_, err = SyncMarkers(fsys, "/mods", profile, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"lithium-0.11.jar.disabled"}, fsys.FileNames("/mods"))

	_, err = Enable(profile, []string{"lithium"}, nil)
	require.NoError(t, err)
	_, err = SyncMarkers(fsys, "/mods", profile, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"lithium-0.11.jar"}, fsys.FileNames("/mods"))
}

func TestSyncMarkers_KeepsWantedFiles(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/sodium-extra-0.5.jar", []byte("extra"))
	fsys.AddFile("/mods/sodium-addon-1.0.jar.disabled", []byte("addon"))
	fsys.AddFile("/mods/sodium-fabric-0.5.8.jar", []byte("sodium"))

	// The active CurseForge mods have no slug, so their jars match the disabled "sodium"
	profile := &models.Profile{
		Name:      "survival",
		OutputDir: "/mods",
		Mods: []models.ModRecord{
			models.NewModRecord("Sodium Extra", models.CurseForgeProject(447673), ""),
			models.NewModRecord("Sodium Addon", models.CurseForgeProject(447674), ""),
		},
		Disabled: []models.ModRecord{
			models.NewModRecord("Sodium", models.ModrinthProject("AANobbMI"), "sodium"),
		},
	}
	keep := []string{"sodium-extra-0.5.jar", "sodium-addon-1.0.jar"}

	changes, err := SyncMarkers(fsys, "/mods", profile, keep, nil)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	require.Equal(t, []string{
		"sodium-addon-1.0.jar",
		"sodium-extra-0.5.jar",
		"sodium-fabric-0.5.8.jar.disabled",
	}, fsys.FileNames("/mods"))
	require.NoError(t, AuditMarkers(fsys, "/mods", profile, keep))

	// Without the wanted set the same jar would be marked
	require.Error(t, AuditMarkers(fsys, "/mods", profile, nil))
}

func TestAuditMarkers_ReportsMismatch(t *testing.T) {
	fsys := filesystem.NewMockFileSystem()
	fsys.AddFile("/mods/sodium-fabric-0.5.8.jar", nil)

	err := AuditMarkers(fsys, "/mods", markerProfile(), nil)

	var mismatch *MarkerMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Len(t, mismatch.Changes, 1)
	require.Equal(t, "disabled markers out of sync for sodium-fabric-0.5.8.jar", err.Error())
	require.Empty(t, fsys.Renames())
}

func TestMatchSlug(t *testing.T) {
	slugs := []string{"sodium-extra", "sodium", "fabric-api"}

	tests := []struct {
		filename string
		want     string
	}{
		{"sodium-fabric-0.5.8.jar", "sodium"},
		{"Sodium-Extra-0.5.1.jar", "sodium-extra"},
		{"sodium.jar", "sodium"},
		{"sodium+1.20.jar", "sodium"},
		{"sodiumplus-1.0.jar", ""},
		{"fabric-api-0.92.0+1.20.1.jar", "fabric-api"},
		{"lithium-0.11.jar", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := MatchSlug(tt.filename, slugs)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want != "", ok)
		})
	}
}
