package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// DefaultModrinthURL is the Modrinth API v2 base URL
const DefaultModrinthURL = "https://api.modrinth.com/v2"

type modrinthVersion struct {
	ID            string               `json:"id"`
	ProjectID     string               `json:"project_id"`
	VersionNumber string               `json:"version_number"`
	Files         []modrinthFile       `json:"files"`
	Dependencies  []modrinthDependency `json:"dependencies"`
}

type modrinthFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
}

type modrinthDependency struct {
	ProjectID      string `json:"project_id"`
	VersionID      string `json:"version_id"`
	DependencyType string `json:"dependency_type"`
}

// ModrinthResolver resolves Modrinth projects
type ModrinthResolver struct {
	api apiClient
}

// NewModrinthResolver creates a resolver for the Modrinth API
func NewModrinthResolver(opts ...Option) *ModrinthResolver {
	return &ModrinthResolver{api: newAPIClient("Modrinth", DefaultModrinthURL, opts)}
}

// Resolve implements Resolver
func (m *ModrinthResolver) Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
	if id.Kind != models.KindModrinth {
		return nil, fmt.Errorf("modrinth cannot resolve %s identifier", id.Kind)
	}

	var version modrinthVersion
	if id.IsPinned() {
		if err := m.api.getJSON(ctx, "/version/"+url.PathEscape(id.Pin), nil, &version); err != nil {
			return nil, wrapNotFound(err, "version %s", id.Pin)
		}
	} else {
		query, err := modrinthQuery(filters)
		if err != nil {
			return nil, err
		}

		var versions []modrinthVersion
		if err := m.api.getJSON(ctx, "/project/"+url.PathEscape(id.ProjectID)+"/version", query, &versions); err != nil {
			return nil, wrapNotFound(err, "project %s", id.ProjectID)
		}
		if len(versions) == 0 {
			return nil, ErrNoCompatibleFile
		}
		// The API lists the newest version first
		version = versions[0]
	}

	file, ok := primaryFile(version.Files)
	if !ok {
		return nil, fmt.Errorf("version %s has no files: %w", version.ID, ErrNoCompatibleFile)
	}
	if err := models.CheckFilename(file.Filename); err != nil {
		return nil, fmt.Errorf("version %s: %w", version.ID, err)
	}

	artifact := &models.ResolvedArtifact{
		Source:   id,
		Filename: file.Filename,
		URL:      file.URL,
		Output:   file.Filename,
	}
	for _, dep := range version.Dependencies {
		if dep.DependencyType != "required" || dep.ProjectID == "" {
			continue
		}
		artifact.Dependencies = append(artifact.Dependencies, models.ModrinthProject(dep.ProjectID))
	}

	return artifact, nil
}

func modrinthQuery(filters models.Filters) (url.Values, error) {
	query := url.Values{}
	if len(filters.ModLoaders) > 0 {
		loaders := make([]string, 0, len(filters.ModLoaders))
		for _, l := range filters.ModLoaders {
			loaders = append(loaders, l.String())
		}
		encoded, err := json.Marshal(loaders)
		if err != nil {
			return nil, fmt.Errorf("failed to encode loaders: %w", err)
		}
		query.Set("loaders", string(encoded))
	}
	if len(filters.GameVersions) > 0 {
		encoded, err := json.Marshal(filters.GameVersions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode game versions: %w", err)
		}
		query.Set("game_versions", string(encoded))
	}
	return query, nil
}

func primaryFile(files []modrinthFile) (modrinthFile, bool) {
	for _, f := range files {
		if f.Primary {
			return f, true
		}
	}
	if len(files) > 0 {
		return files[0], true
	}
	return modrinthFile{}, false
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}
