package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakoblorz/go-modsync/internal/models"
	"github.com/jakoblorz/go-modsync/internal/platform"
)

// fakeResolver serves a static dependency graph and counts lookups per identifier
type fakeResolver struct {
	mu     sync.Mutex
	deps   map[models.ModIdentifier][]models.ModIdentifier
	errs   map[models.ModIdentifier]error
	delays map[models.ModIdentifier]time.Duration
	calls  map[models.ModIdentifier]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		deps:   make(map[models.ModIdentifier][]models.ModIdentifier),
		errs:   make(map[models.ModIdentifier]error),
		delays: make(map[models.ModIdentifier]time.Duration),
		calls:  make(map[models.ModIdentifier]int),
	}
}

func (f *fakeResolver) Resolve(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
	f.mu.Lock()
	f.calls[id]++
	delay := f.delays[id]
	err := f.errs[id]
	deps := f.deps[id]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}

	return &models.ResolvedArtifact{
		Source:       id,
		Filename:     id.OverrideKey() + ".jar",
		URL:          "https://example.com/" + id.OverrideKey() + ".jar",
		Output:       id.OverrideKey() + ".jar",
		Dependencies: deps,
	}, nil
}

func (f *fakeResolver) callCount(id models.ModIdentifier) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type recordingReporter struct {
	mu         sync.Mutex
	dispatched []string
	succeeded  []string
	failed     []string
}

func (r *recordingReporter) Dispatched(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched = append(r.dispatched, name)
}

func (r *recordingReporter) Succeeded(name, filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, name)
}

func (r *recordingReporter) Failed(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, name)
}

func mod(name, id string) models.ModRecord {
	return models.NewModRecord(name, models.ModrinthProject(id), "")
}

func sources(artifacts []*models.ResolvedArtifact) []string {
	ids := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		ids = append(ids, a.Source.String())
	}
	sort.Strings(ids)
	return ids
}

func TestPool_DiamondDependencyResolvedOnce(t *testing.T) {
	resolver := newFakeResolver()
	shared := models.ModrinthProject("P7dR8mSH")
	resolver.deps[models.ModrinthProject("alpha")] = []models.ModIdentifier{shared}
	resolver.deps[models.ModrinthProject("beta")] = []models.ModIdentifier{shared}
	// Let beta finish first in some runs
	resolver.delays[models.ModrinthProject("alpha")] = 5 * time.Millisecond

	reporter := &recordingReporter{}
	pool := NewPool(resolver, models.Filters{}, nil, WithReporter(reporter))

	result, err := pool.Run(context.Background(), []models.ModRecord{mod("Alpha", "alpha"), mod("Beta", "beta")})
	require.NoError(t, err)
	require.False(t, result.SoftFailed)
	require.Equal(t, []string{"P7dR8mSH", "alpha", "beta"}, sources(result.Artifacts))
	require.Equal(t, 1, resolver.callCount(shared))
	require.Len(t, reporter.dispatched, 3)
	require.Len(t, reporter.succeeded, 3)
	require.Contains(t, reporter.dispatched, "Dependency: P7dR8mSH")
}

func TestPool_DuplicateActiveMods(t *testing.T) {
	resolver := newFakeResolver()
	pool := NewPool(resolver, models.Filters{}, nil)

	result, err := pool.Run(context.Background(), []models.ModRecord{mod("Alpha", "alpha"), mod("Alpha again", "alpha")})
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)
	require.Equal(t, 1, resolver.callCount(models.ModrinthProject("alpha")))
}

func TestPool_CycleTerminates(t *testing.T) {
	resolver := newFakeResolver()
	a, b, c := models.ModrinthProject("a"), models.ModrinthProject("b"), models.ModrinthProject("c")
	resolver.deps[a] = []models.ModIdentifier{b}
	resolver.deps[b] = []models.ModIdentifier{c}
	resolver.deps[c] = []models.ModIdentifier{a, b}

	pool := NewPool(resolver, models.Filters{}, nil, WithConcurrency(2))

	done := make(chan struct{})
	var result *Result
	var err error
	go func() {
		defer close(done)
		result, err = pool.Run(context.Background(), []models.ModRecord{mod("A", "a")})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not terminate")
	}

	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, sources(result.Artifacts))
	for _, id := range []models.ModIdentifier{a, b, c} {
		require.Equal(t, 1, resolver.callCount(id))
	}
}

func TestPool_DeepChain(t *testing.T) {
	resolver := newFakeResolver()
	const depth = 50
	for i := 0; i < depth-1; i++ {
		resolver.deps[models.ModrinthProject(fmt.Sprintf("m%d", i))] = []models.ModIdentifier{
			models.ModrinthProject(fmt.Sprintf("m%d", i+1)),
		}
	}

	pool := NewPool(resolver, models.Filters{}, nil, WithConcurrency(1))

	result, err := pool.Run(context.Background(), []models.ModRecord{mod("root", "m0")})
	require.NoError(t, err)
	require.Len(t, result.Artifacts, depth)
}

func TestPool_EmptyModsTerminatesImmediately(t *testing.T) {
	resolver := newFakeResolver()
	pool := NewPool(resolver, models.Filters{}, nil)

	result, err := pool.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, result.Artifacts)
	require.False(t, result.SoftFailed)
}

func TestPool_OverrideSubstitution(t *testing.T) {
	resolver := newFakeResolver()
	original := models.ModrinthProject("P7dR8mSH")
	replacement := models.ModrinthProject("qvIfYCYJ")
	resolver.deps[models.ModrinthProject("sodium")] = []models.ModIdentifier{original}

	overrides := models.OverrideMap{"P7dR8mSH": replacement}
	reporter := &recordingReporter{}
	pool := NewPool(resolver, models.Filters{}, overrides, WithReporter(reporter))

	result, err := pool.Run(context.Background(), []models.ModRecord{mod("Sodium", "sodium")})
	require.NoError(t, err)
	require.Equal(t, []string{"qvIfYCYJ", "sodium"}, sources(result.Artifacts))
	require.Equal(t, 0, resolver.callCount(original))
	require.Equal(t, 1, resolver.callCount(replacement))
	require.Contains(t, reporter.dispatched, "Dependency: qvIfYCYJ")
}

func TestPool_OverridesDoNotApplyToActiveMods(t *testing.T) {
	resolver := newFakeResolver()
	overrides := models.OverrideMap{"P7dR8mSH": models.ModrinthProject("qvIfYCYJ")}
	pool := NewPool(resolver, models.Filters{}, overrides)

	result, err := pool.Run(context.Background(), []models.ModRecord{mod("Fabric API", "P7dR8mSH")})
	require.NoError(t, err)
	require.Equal(t, []string{"P7dR8mSH"}, sources(result.Artifacts))
}

func TestPool_SoftFailureContinues(t *testing.T) {
	resolver := newFakeResolver()
	resolver.errs[models.ModrinthProject("broken")] = platform.ErrNoCompatibleFile

	reporter := &recordingReporter{}
	pool := NewPool(resolver, models.Filters{}, nil, WithReporter(reporter))

	result, err := pool.Run(context.Background(), []models.ModRecord{mod("Broken", "broken"), mod("Fine", "fine")})
	require.NoError(t, err)
	require.True(t, result.SoftFailed)
	require.Equal(t, []string{"fine"}, sources(result.Artifacts))
	require.Equal(t, []string{"Broken"}, reporter.failed)
	require.Equal(t, 1, resolver.callCount(models.ModrinthProject("broken")))
}

func TestPool_RateLimitFailsRun(t *testing.T) {
	resolver := newFakeResolver()
	limited := models.ModrinthProject("limited")
	slow := models.ModrinthProject("slow")
	resolver.errs[limited] = &platform.RateLimitError{Platform: "Modrinth"}
	resolver.delays[limited] = 10 * time.Millisecond
	resolver.delays[slow] = 40 * time.Millisecond

	reporter := &recordingReporter{}
	pool := NewPool(resolver, models.Filters{}, nil, WithReporter(reporter))

	result, err := pool.Run(context.Background(), []models.ModRecord{
		mod("Slow", "slow"),
		mod("Limited", "limited"),
		mod("Fine", "fine"),
	})
	require.Error(t, err)
	require.Nil(t, result)
	require.True(t, errors.Is(err, ErrRateLimited))
	require.True(t, platform.IsRateLimited(err))
	require.Contains(t, err.Error(), "Limited")

	// The slow lookup was already running and was allowed to finish
	require.Equal(t, 1, resolver.callCount(slow))
	require.Contains(t, reporter.succeeded, "Slow")
}

func TestPool_RateLimitStopsDispatch(t *testing.T) {
	resolver := newFakeResolver()
	limited := models.ModrinthProject("limited")
	resolver.errs[limited] = &platform.RateLimitError{Platform: "Modrinth"}
	resolver.deps[models.ModrinthProject("slow")] = []models.ModIdentifier{models.ModrinthProject("late")}
	resolver.delays[models.ModrinthProject("slow")] = 20 * time.Millisecond

	pool := NewPool(resolver, models.Filters{}, nil, WithConcurrency(1))

	_, err := pool.Run(context.Background(), []models.ModRecord{mod("Limited", "limited"), mod("Slow", "slow")})
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, 0, resolver.callCount(models.ModrinthProject("slow")))
	require.Equal(t, 0, resolver.callCount(models.ModrinthProject("late")))
}

func TestPool_ContextCancelled(t *testing.T) {
	resolver := newFakeResolver()
	resolver.delays[models.ModrinthProject("slow")] = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(resolver, models.Filters{}, nil)
	_, err := pool.Run(ctx, []models.ModRecord{mod("Slow", "slow")})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, resolver.callCount(models.ModrinthProject("slow")))
}

func TestPool_PassesFilters(t *testing.T) {
	var seen models.Filters
	resolver := platform.ResolverFunc(func(ctx context.Context, id models.ModIdentifier, filters models.Filters) (*models.ResolvedArtifact, error) {
		seen = filters
		return &models.ResolvedArtifact{Source: id, Filename: "x.jar"}, nil
	})

	filters := models.Filters{GameVersions: []string{"1.20.1"}, ModLoaders: []models.ModLoader{models.LoaderFabric}}
	pool := NewPool(resolver, filters, nil)

	_, err := pool.Run(context.Background(), []models.ModRecord{mod("A", "a")})
	require.NoError(t, err)
	require.Equal(t, filters, seen)
}

func TestWorkQueue_DrainedOnlyWhenNothingOutstanding(t *testing.T) {
	q := newWorkQueue([]models.ModRecord{mod("A", "a")})

	item, ok, err := q.take(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A", item.Name)

	items, outstanding := q.pending()
	require.Equal(t, 0, items)
	require.Equal(t, 1, outstanding)

	go q.release(mod("B", "b"))

	item, ok, err = q.take(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B", item.Name)

	q.release()
	_, ok, err = q.take(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}
