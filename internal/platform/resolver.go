// Package platform resolves mod identifiers to downloadable files on the
// hosting platforms (Modrinth, CurseForge and GitHub releases).
package platform

import (
	"context"
	"fmt"

	"github.com/jakoblorz/go-modsync/internal/models"
)

// Resolver looks up the latest file of a mod that is compatible with the filters
type Resolver interface {
	Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error)

func (f ResolverFunc) Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
	return f(ctx, id, filters)
}

// Router dispatches resolution to the backend responsible for the identifier kind
type Router struct {
	Modrinth   Resolver
	CurseForge Resolver
	GitHub     Resolver
}

// Resolve implements Resolver
func (r *Router) Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
	var backend Resolver
	switch id.Kind {
	case models.KindModrinth:
		backend = r.Modrinth
	case models.KindCurseForge:
		backend = r.CurseForge
	case models.KindGitHub:
		backend = r.GitHub
	default:
		return nil, fmt.Errorf("unknown identifier kind: %q", id.Kind)
	}

	if backend == nil {
		return nil, fmt.Errorf("no resolver configured for %s", id.Kind)
	}
	return backend.Resolve(ctx, id, filters)
}
