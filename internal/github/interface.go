package github

import (
	"context"
	"time"
)

// GitHubClient provides an abstraction over the GitHub release API operations
// used to resolve repository-hosted mods
type GitHubClient interface {
	// Release operations
	ListReleases(ctx context.Context, owner, repo string) ([]*Release, error)
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error)

	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
}

// Release represents a GitHub release
type Release struct {
	ID          int64
	TagName     string
	Name        string
	Draft       bool
	Prerelease  bool
	CreatedAt   time.Time
	PublishedAt time.Time
	Assets      []*Asset
}

// Asset represents a downloadable file attached to a release
type Asset struct {
	Name               string
	BrowserDownloadURL string
	Size               int64
	ContentType        string
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	DefaultBranch string
}
