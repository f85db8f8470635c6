package platform

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jakoblorz/go-modsync/internal/models"
)

const (
	// DefaultCurseForgeURL is the CurseForge core API base URL
	DefaultCurseForgeURL = "https://api.curseforge.com/v1"

	curseForgeRequiredDependency = 3
	curseForgePageSize           = 50
)

type curseForgeFile struct {
	ID           int                    `json:"id"`
	FileName     string                 `json:"fileName"`
	DownloadURL  *string                `json:"downloadUrl"`
	FileDate     time.Time              `json:"fileDate"`
	GameVersions []string               `json:"gameVersions"`
	Dependencies []curseForgeDependency `json:"dependencies"`
}

type curseForgeDependency struct {
	ModID        int `json:"modId"`
	RelationType int `json:"relationType"`
}

type curseForgeFilesResponse struct {
	Data []curseForgeFile `json:"data"`
}

type curseForgeFileResponse struct {
	Data curseForgeFile `json:"data"`
}

// CurseForgeResolver resolves CurseForge projects
type CurseForgeResolver struct {
	api    apiClient
	apiKey string
}

// NewCurseForgeResolver creates a resolver for the CurseForge API
func NewCurseForgeResolver(apiKey string, opts ...Option) *CurseForgeResolver {
	r := &CurseForgeResolver{
		api:    newAPIClient("CurseForge", DefaultCurseForgeURL, opts),
		apiKey: apiKey,
	}
	if apiKey != "" {
		r.api.headers["x-api-key"] = apiKey
	}
	return r
}

// Resolve implements Resolver
func (c *CurseForgeResolver) Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
	if id.Kind != models.KindCurseForge {
		return nil, fmt.Errorf("curseforge cannot resolve %s identifier", id.Kind)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("curseforge: %w", ErrMissingAPIKey)
	}

	modPath := "/mods/" + strconv.Itoa(id.ModID) + "/files"

	var file curseForgeFile
	if id.IsPinned() {
		var resp curseForgeFileResponse
		if err := c.api.getJSON(ctx, modPath+"/"+url.PathEscape(id.Pin), nil, &resp); err != nil {
			return nil, wrapNotFound(err, "file %s of project %d", id.Pin, id.ModID)
		}
		file = resp.Data
	} else {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(curseForgePageSize))

		var resp curseForgeFilesResponse
		if err := c.api.getJSON(ctx, modPath, query, &resp); err != nil {
			return nil, wrapNotFound(err, "project %d", id.ModID)
		}

		latest, ok := latestCompatibleFile(resp.Data, filters)
		if !ok {
			return nil, ErrNoCompatibleFile
		}
		file = latest
	}

	if file.DownloadURL == nil || *file.DownloadURL == "" {
		return nil, fmt.Errorf("%s: %w", file.FileName, ErrDistributionDenied)
	}
	if err := models.CheckFilename(file.FileName); err != nil {
		return nil, fmt.Errorf("file %d: %w", file.ID, err)
	}

	artifact := &models.ResolvedArtifact{
		Source:   id,
		Filename: file.FileName,
		URL:      *file.DownloadURL,
		Output:   file.FileName,
	}
	for _, dep := range file.Dependencies {
		if dep.RelationType != curseForgeRequiredDependency || dep.ModID <= 0 {
			continue
		}
		artifact.Dependencies = append(artifact.Dependencies, models.CurseForgeProject(dep.ModID))
	}

	return artifact, nil
}

// latestCompatibleFile picks the newest file whose game version tags match the filters.
// CurseForge lists loaders ("Fabric", "NeoForge") alongside game versions in the same tag list.
func latestCompatibleFile(files []curseForgeFile, filters models.Filters) (curseForgeFile, bool) {
	sorted := append([]curseForgeFile(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FileDate.After(sorted[j].FileDate)
	})

	for _, f := range sorted {
		if curseForgeFileMatches(f, filters) {
			return f, true
		}
	}
	return curseForgeFile{}, false
}

func curseForgeFileMatches(f curseForgeFile, filters models.Filters) bool {
	tags := make(map[string]bool, len(f.GameVersions))
	for _, v := range f.GameVersions {
		tags[strings.ToLower(v)] = true
	}

	if len(filters.GameVersions) > 0 {
		found := false
		for _, v := range filters.GameVersions {
			if tags[strings.ToLower(v)] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(filters.ModLoaders) > 0 {
		found := false
		for _, l := range filters.ModLoaders {
			if tags[l.String()] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
