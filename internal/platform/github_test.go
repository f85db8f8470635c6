package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-modsync/internal/github"
	"github.com/jakoblorz/go-modsync/internal/models"
)

func jar(name string) *github.Asset {
	return &github.Asset{Name: name, BrowserDownloadURL: "https://github.com/dl/" + name}
}

func TestGitHubResolver_NewestCompatibleRelease(t *testing.T) {
	client := github.NewMockClient()
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	client.AddRelease("CaffeineMC", "lithium", &github.Release{
		TagName: "v0.11.0", PublishedAt: published,
		Assets: []*github.Asset{jar("lithium-fabric-mc1.20.1-0.11.0.jar")},
	})
	client.AddRelease("CaffeineMC", "lithium", &github.Release{
		TagName: "v0.12.0", PublishedAt: published.Add(time.Hour),
		Assets: []*github.Asset{
			jar("lithium-fabric-mc1.20.4-0.12.0-sources.jar"),
			jar("lithium-fabric-mc1.20.4-0.12.0.jar"),
		},
	})
	client.AddRelease("CaffeineMC", "lithium", &github.Release{
		TagName: "v0.13.0", Draft: true, PublishedAt: published.Add(2 * time.Hour),
		Assets: []*github.Asset{jar("lithium-fabric-mc1.20.4-0.13.0.jar")},
	})

	resolver := NewGitHubResolver(client)
	id := models.GitHubRepository("CaffeineMC", "lithium")

	artifact, err := resolver.Resolve(context.Background(), id, models.Filters{
		GameVersions: []string{"1.20.4"},
		ModLoaders:   []models.ModLoader{models.LoaderFabric},
	})
	require.NoError(t, err)
	require.Equal(t, "lithium-fabric-mc1.20.4-0.12.0.jar", artifact.Filename)
	require.Equal(t, "https://github.com/dl/lithium-fabric-mc1.20.4-0.12.0.jar", artifact.URL)
	require.Empty(t, artifact.Dependencies)

	artifact, err = resolver.Resolve(context.Background(), id, models.Filters{GameVersions: []string{"1.20.1"}})
	require.NoError(t, err)
	require.Equal(t, "lithium-fabric-mc1.20.1-0.11.0.jar", artifact.Filename)

	_, err = resolver.Resolve(context.Background(), id, models.Filters{ModLoaders: []models.ModLoader{models.LoaderForge}})
	require.ErrorIs(t, err, ErrNoCompatibleFile)
}

func TestGitHubResolver_Pinned(t *testing.T) {
	client := github.NewMockClient()
	client.AddRelease("owner", "mod", &github.Release{TagName: "1.0.0", Assets: []*github.Asset{jar("mod-1.0.0.jar")}})
	client.AddRelease("owner", "mod", &github.Release{TagName: "2.0.0", Assets: []*github.Asset{jar("mod-2.0.0.jar")}})

	resolver := NewGitHubResolver(client)

	artifact, err := resolver.Resolve(context.Background(), models.GitHubRepository("owner", "mod").Pinned("1.0.0"), models.Filters{})
	require.NoError(t, err)
	require.Equal(t, "mod-1.0.0.jar", artifact.Filename)

	_, err = resolver.Resolve(context.Background(), models.GitHubRepository("owner", "mod").Pinned("9.9.9"), models.Filters{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGitHubResolver_SkipsUnsafeAssetNames(t *testing.T) {
	client := github.NewMockClient()
	client.AddRelease("owner", "mod", &github.Release{TagName: "1.0.0", Assets: []*github.Asset{
		jar("../mod-1.0.0.jar"),
		jar("mod-1.0.0.jar"),
	}})
	client.AddRelease("owner", "evil", &github.Release{TagName: "1.0.0", Assets: []*github.Asset{jar(".evil.jar")}})

	resolver := NewGitHubResolver(client)

	artifact, err := resolver.Resolve(context.Background(), models.GitHubRepository("owner", "mod"), models.Filters{})
	require.NoError(t, err)
	require.Equal(t, "mod-1.0.0.jar", artifact.Filename)

	_, err = resolver.Resolve(context.Background(), models.GitHubRepository("owner", "evil"), models.Filters{})
	require.ErrorIs(t, err, ErrNoCompatibleFile)
}

func TestGitHubResolver_RateLimited(t *testing.T) {
	client := github.NewMockClient()
	client.ListReleasesError = &github.RateLimitError{ResetAt: time.Now().Add(time.Hour)}

	resolver := NewGitHubResolver(client)

	_, err := resolver.Resolve(context.Background(), models.GitHubRepository("owner", "mod"), models.Filters{})
	require.True(t, IsRateLimited(err))

	var rateErr *RateLimitError
	require.True(t, errors.As(err, &rateErr))
	require.Equal(t, "GitHub", rateErr.Platform)
	require.Greater(t, rateErr.RetryAfter, 59*time.Minute)
}

func TestSortReleases(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	releases := []*github.Release{
		{TagName: "v1.9.0", PublishedAt: base.Add(3 * time.Hour)},
		{TagName: "1.10.0", PublishedAt: base},
		{TagName: "v1.2.0", PublishedAt: base.Add(time.Hour)},
	}

	sorted := sortReleases(releases)

	require.Equal(t, "1.10.0", sorted[0].TagName)
	require.Equal(t, "v1.9.0", sorted[1].TagName)
	require.Equal(t, "v1.2.0", sorted[2].TagName)
	require.Equal(t, "v1.9.0", releases[0].TagName, "input must not be reordered")
}

func TestSortReleases_PublishDateFallback(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	releases := []*github.Release{
		{TagName: "build-a", PublishedAt: base},
		{TagName: "build-b", PublishedAt: base.Add(time.Hour)},
	}

	sorted := sortReleases(releases)

	require.Equal(t, "build-b", sorted[0].TagName)
}

func TestAssetMatches(t *testing.T) {
	fabric120 := models.Filters{GameVersions: []string{"1.20.1"}, ModLoaders: []models.ModLoader{models.LoaderFabric}}

	require.True(t, assetMatches("mod-fabric-1.20.1.jar", fabric120))
	require.True(t, assetMatches("mod.jar", fabric120))
	require.False(t, assetMatches("mod-fabric-1.20.1.zip", fabric120))
	require.False(t, assetMatches("mod-fabric-1.20.1-dev.jar", fabric120))
	require.False(t, assetMatches("mod-fabric-1.19.2.jar", fabric120))
	require.False(t, assetMatches("mod-forge-1.20.1.jar", fabric120))
	require.False(t, assetMatches("mod-neoforge-1.20.1.jar", models.Filters{ModLoaders: []models.ModLoader{models.LoaderForge}}))
	require.True(t, assetMatches("mod-neoforge-1.20.1.jar", models.Filters{ModLoaders: []models.ModLoader{models.LoaderNeoForge}}))
}
