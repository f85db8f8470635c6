package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/jakoblorz/go-modsync/internal/github"
	"github.com/jakoblorz/go-modsync/internal/models"
)

// GitHubResolver resolves mods published as jar assets of GitHub releases
type GitHubResolver struct {
	client github.GitHubClient
}

// NewGitHubResolver creates a resolver backed by the given GitHub client
func NewGitHubResolver(client github.GitHubClient) *GitHubResolver {
	return &GitHubResolver{client: client}
}

// Resolve implements Resolver
func (g *GitHubResolver) Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
	if id.Kind != models.KindGitHub {
		return nil, fmt.Errorf("github cannot resolve %s identifier", id.Kind)
	}

	var releases []*github.Release
	if id.IsPinned() {
		release, err := g.client.GetReleaseByTag(ctx, id.Owner, id.Repo, id.Pin)
		if err != nil {
			return nil, convertGitHubError(err)
		}
		releases = []*github.Release{release}
	} else {
		list, err := g.client.ListReleases(ctx, id.Owner, id.Repo)
		if err != nil {
			return nil, convertGitHubError(err)
		}
		releases = sortReleases(list)
	}

	for _, release := range releases {
		if release.Draft {
			continue
		}
		if asset, ok := pickAsset(release.Assets, filters); ok {
			return &models.ResolvedArtifact{
				Source:   id,
				Filename: asset.Name,
				URL:      asset.BrowserDownloadURL,
				Output:   asset.Name,
			}, nil
		}
	}

	return nil, ErrNoCompatibleFile
}

// sortReleases orders releases newest first by semantic version, falling back to publish date
func sortReleases(releases []*github.Release) []*github.Release {
	sorted := append([]*github.Release(nil), releases...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := canonicalTag(sorted[i].TagName), canonicalTag(sorted[j].TagName)
		if semver.IsValid(a) && semver.IsValid(b) {
			if c := semver.Compare(a, b); c != 0 {
				return c > 0
			}
		}
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return sorted
}

func canonicalTag(tag string) string {
	if strings.HasPrefix(tag, "v") {
		return tag
	}
	return "v" + tag
}

var (
	excludedAssetSuffixes = []string{"-sources.jar", "-dev.jar", "-javadoc.jar"}
	allLoaders            = []models.ModLoader{models.LoaderFabric, models.LoaderQuilt, models.LoaderForge, models.LoaderNeoForge, models.LoaderVelocity}
)

// pickAsset returns the first jar asset compatible with the filters. Assets whose name is not a
// plain filename are skipped.
func pickAsset(assets []*github.Asset, filters models.Filters) (*github.Asset, bool) {
	for _, asset := range assets {
		if models.CheckFilename(asset.Name) != nil {
			continue
		}
		if assetMatches(strings.ToLower(asset.Name), filters) {
			return asset, true
		}
	}
	return nil, false
}

// assetMatches checks a lower-cased asset name. Version and loader constraints only apply
// when the name mentions any version or loader at all.
func assetMatches(name string, filters models.Filters) bool {
	if !strings.HasSuffix(name, ".jar") {
		return false
	}
	for _, suffix := range excludedAssetSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}

	if len(filters.GameVersions) > 0 && mentionsVersion(name) {
		found := false
		for _, v := range filters.GameVersions {
			if strings.Contains(name, strings.ToLower(v)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filters.ModLoaders) > 0 {
		mentioned := false
		for _, l := range allLoaders {
			if mentionsLoader(name, l) {
				mentioned = true
				break
			}
		}
		if mentioned {
			for _, l := range filters.ModLoaders {
				if mentionsLoader(name, l) {
					return true
				}
			}
			return false
		}
	}

	return true
}

// mentionsLoader treats "neoforge" as not mentioning "forge"
func mentionsLoader(name string, loader models.ModLoader) bool {
	if loader == models.LoaderForge {
		return strings.Contains(strings.ReplaceAll(name, "neoforge", ""), "forge")
	}
	return strings.Contains(name, loader.String())
}

// mentionsVersion reports whether the name contains something like "1.20" (a Minecraft version)
func mentionsVersion(name string) bool {
	for i := 0; i+3 < len(name); i++ {
		if name[i] == '1' && name[i+1] == '.' && isDigit(name[i+2]) && isDigit(name[i+3]) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func convertGitHubError(err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		limited := &RateLimitError{Platform: "GitHub"}
		if !rateErr.ResetAt.IsZero() {
			if wait := time.Until(rateErr.ResetAt); wait > 0 {
				limited.RetryAfter = wait
			}
		}
		return limited
	}
	if errors.Is(err, github.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}
