package github

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu           sync.RWMutex
	releases     map[string][]*Release  // key: "owner/repo"
	repositories map[string]*Repository // key: "owner/repo"
	calls        map[string]int         // key: "owner/repo"

	// Hooks for testing error scenarios
	ListReleasesError    error
	GetReleaseByTagError error
	GetRepositoryError   error
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		releases:     make(map[string][]*Release),
		repositories: make(map[string]*Repository),
		calls:        make(map[string]int),
	}
}

// SetupRepository adds a repository to the mock
func (m *MockClient) SetupRepository(owner, repo string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.repositories[key] = &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		DefaultBranch: "main",
	}
}

// AddRelease adds a release to the mock
func (m *MockClient) AddRelease(owner, repo string, release *Release) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.releases[key] = append(m.releases[key], release)
}

// Calls returns how many release lookups were made for owner/repo
func (m *MockClient) Calls(owner, repo string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.calls[fmt.Sprintf("%s/%s", owner, repo)]
}

func (m *MockClient) ListReleases(ctx context.Context, owner, repo string) ([]*Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.calls[key]++

	if m.ListReleasesError != nil {
		return nil, m.ListReleasesError
	}

	releases, exists := m.releases[key]
	if !exists {
		return nil, fmt.Errorf("failed to list releases of %s: %w", key, ErrNotFound)
	}

	// Newest first, like the API
	result := make([]*Release, 0, len(releases))
	for i := len(releases) - 1; i >= 0; i-- {
		result = append(result, releases[i])
	}
	return result, nil
}

func (m *MockClient) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.calls[key]++

	if m.GetReleaseByTagError != nil {
		return nil, m.GetReleaseByTagError
	}

	for _, r := range m.releases[key] {
		if r.TagName == tag {
			return r, nil
		}
	}

	return nil, fmt.Errorf("release with tag %s: %w", tag, ErrNotFound)
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	repository, exists := m.repositories[key]
	if !exists {
		return nil, fmt.Errorf("repository %s: %w", key, ErrNotFound)
	}
	return repository, nil
}
