// Package resolve turns the active mods of a profile into the full set of artifacts to
// install, discovering dependencies while it runs.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/models"
	"github.com/jakoblorz/go-modsync/internal/platform"
)

// DefaultConcurrency bounds the number of lookups in flight
const DefaultConcurrency = 8

// ErrRateLimited is returned when a platform rate limit aborted the run
var ErrRateLimited = errors.New("resolution aborted")

// Reporter receives one Dispatched call per started lookup and exactly one
// Succeeded or Failed call per finished lookup
type Reporter interface {
	Dispatched(name string)
	Succeeded(name, filename string)
	Failed(name string, err error)
}

type nopReporter struct{}

func (nopReporter) Dispatched(string)        {}
func (nopReporter) Succeeded(string, string) {}
func (nopReporter) Failed(string, error)     {}

// Result is the outcome of a completed run
type Result struct {
	// Artifacts holds one artifact per resolved identifier, in completion order
	Artifacts []*models.ResolvedArtifact

	// SoftFailed is set when at least one lookup failed for a reason other than rate limiting
	SoftFailed bool
}

// Pool resolves mods concurrently
type Pool struct {
	resolver  platform.Resolver
	filters   models.Filters
	overrides models.OverrideMap
	reporter  Reporter
	logger    *log.Logger
	limit     int
}

// Option configures a Pool
type Option func(*Pool)

// WithReporter sets the progress reporter
func WithReporter(r Reporter) Option {
	return func(p *Pool) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithConcurrency bounds the number of lookups in flight
func WithConcurrency(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.limit = n
		}
	}
}

// NewPool creates a Pool resolving against the given filters and dependency overrides
func NewPool(resolver platform.Resolver, filters models.Filters, overrides models.OverrideMap, opts ...Option) *Pool {
	p := &Pool{
		resolver:  resolver,
		filters:   filters,
		overrides: overrides,
		reporter:  nopReporter{},
		logger:    logging.Discard(),
		limit:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// run holds the state of a single Run call
type run struct {
	pool  *Pool
	queue *workQueue

	// seen is only touched by the consumer loop in Run
	seen map[models.ModIdentifier]bool

	aborted atomic.Bool

	mu         sync.Mutex
	artifacts  []*models.ResolvedArtifact
	softFailed bool
}

// Run resolves every mod and every dependency discovered along the way. Each identifier is
// looked up at most once. A rate limit stops further dispatch; lookups already started are
// allowed to finish before the rate limit error is returned.
func (p *Pool) Run(ctx context.Context, mods []models.ModRecord) (*Result, error) {
	r := &run{
		pool:  p,
		queue: newWorkQueue(mods),
		seen:  make(map[models.ModIdentifier]bool, len(mods)),
	}

	var g errgroup.Group
	g.SetLimit(p.limit)

	var loopErr error
	for !r.aborted.Load() {
		mod, ok, err := r.queue.take(ctx)
		if err != nil {
			loopErr = err
			break
		}
		if !ok {
			break
		}
		if r.aborted.Load() {
			r.queue.release()
			break
		}

		if r.seen[mod.Identifier] {
			r.queue.release()
			continue
		}
		r.seen[mod.Identifier] = true

		g.Go(func() error {
			// No new lookups once a rate limit was hit, even for tasks that waited on a slot
			if r.aborted.Load() {
				r.queue.release()
				return nil
			}
			return r.lookup(ctx, mod)
		})
	}

	// In-flight lookups finish even when the loop stopped early
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if loopErr != nil {
		return nil, loopErr
	}

	return &Result{Artifacts: r.artifacts, SoftFailed: r.softFailed}, nil
}

// lookup resolves one mod and queues its dependencies. The task slot is released
// only after the dependencies are queued.
func (r *run) lookup(ctx context.Context, mod models.ModRecord) error {
	p := r.pool
	p.reporter.Dispatched(mod.Name)
	p.logger.Debug("dispatching lookup", "mod", mod.Name, "id", mod.Identifier.String())

	artifact, err := p.resolver.Resolve(ctx, mod.Identifier, p.filters.Clone())
	if err != nil {
		p.reporter.Failed(mod.Name, err)

		if platform.IsRateLimited(err) {
			r.aborted.Store(true)
			r.queue.release()
			p.logger.Error("rate limited, stopping", "mod", mod.Name, "error", err)
			return fmt.Errorf("%w: %s: %w", ErrRateLimited, mod.Name, err)
		}

		r.mu.Lock()
		r.softFailed = true
		r.mu.Unlock()
		r.queue.release()
		p.logger.Warn("lookup failed", "mod", mod.Name, "error", err)
		return nil
	}

	artifact.Source = mod.Identifier
	p.reporter.Succeeded(mod.Name, artifact.Filename)

	r.mu.Lock()
	r.artifacts = append(r.artifacts, artifact)
	r.mu.Unlock()

	discovered := make([]models.ModRecord, 0, len(artifact.Dependencies))
	for _, dep := range artifact.Dependencies {
		if replacement, ok := p.overrides.Apply(dep); ok {
			p.logger.Debug("dependency overridden", "from", dep.String(), "to", replacement.String())
			dep = replacement
		}
		discovered = append(discovered, models.NewDependencyRecord(dep))
	}
	r.queue.release(discovered...)
	return nil
}
