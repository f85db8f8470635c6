package platform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// Project is what a platform reports about a mod when it is added to a profile
type Project struct {
	// ID is the canonical identifier, carrying over the pin of the looked up one
	ID   models.ModIdentifier
	Name string
	Slug string
}

// Describer looks up the canonical identifier, display name and slug of a project
type Describer interface {
	Describe(ctx context.Context, id models.ModIdentifier) (*Project, error)
}

type modrinthProject struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// Describe implements Describer. The identifier may name the project by id or by slug.
func (m *ModrinthResolver) Describe(ctx context.Context, id models.ModIdentifier) (*Project, error) {
	if id.Kind != models.KindModrinth {
		return nil, fmt.Errorf("modrinth cannot describe %s identifier", id.Kind)
	}

	var project modrinthProject
	if err := m.api.getJSON(ctx, "/project/"+url.PathEscape(id.ProjectID), nil, &project); err != nil {
		return nil, wrapNotFound(err, "project %s", id.ProjectID)
	}
	if project.ID == "" {
		return nil, fmt.Errorf("project %s: %w", id.ProjectID, ErrNotFound)
	}

	return &Project{
		ID:   models.ModrinthProject(project.ID).Pinned(id.Pin),
		Name: project.Title,
		Slug: project.Slug,
	}, nil
}

type curseForgeModResponse struct {
	Data struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"data"`
}

// Describe implements Describer
func (c *CurseForgeResolver) Describe(ctx context.Context, id models.ModIdentifier) (*Project, error) {
	if id.Kind != models.KindCurseForge {
		return nil, fmt.Errorf("curseforge cannot describe %s identifier", id.Kind)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("curseforge: %w", ErrMissingAPIKey)
	}

	var resp curseForgeModResponse
	if err := c.api.getJSON(ctx, "/mods/"+strconv.Itoa(id.ModID), nil, &resp); err != nil {
		return nil, wrapNotFound(err, "project %d", id.ModID)
	}

	return &Project{
		ID:   id,
		Name: resp.Data.Name,
		Slug: resp.Data.Slug,
	}, nil
}

// Describe dispatches to the backend responsible for the identifier kind
func (r *Router) Describe(ctx context.Context, id models.ModIdentifier) (*Project, error) {
	var backend Resolver
	switch id.Kind {
	case models.KindModrinth:
		backend = r.Modrinth
	case models.KindCurseForge:
		backend = r.CurseForge
	case models.KindGitHub:
		backend = r.GitHub
	}

	describer, ok := backend.(Describer)
	if !ok {
		return nil, fmt.Errorf("%s projects cannot be looked up", id.Kind)
	}
	return describer.Describe(ctx, id)
}
