// Package upgrade brings the output directory of a profile up to date.
package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jakoblorz/go-modsync/internal/config"
	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/models"
	"github.com/jakoblorz/go-modsync/internal/platform"
	"github.com/jakoblorz/go-modsync/internal/progress"
	"github.com/jakoblorz/go-modsync/internal/reconcile"
	"github.com/jakoblorz/go-modsync/internal/resolve"
	"github.com/jakoblorz/go-modsync/internal/toggle"
	"github.com/jakoblorz/go-modsync/internal/tui"
)

// ErrIncomplete is returned after the directory was reconciled when some mods could not be resolved
var ErrIncomplete = errors.New("could not get the latest compatible version of some mods")

// Runner wires resolution, marker sync and reconciliation together
type Runner struct {
	fs          filesystem.FileSystem
	resolver    platform.Resolver
	reconciler  *reconcile.Reconciler
	out         io.Writer
	logger      *log.Logger
	concurrency int
	styles      progress.Styles
}

// Option configures a Runner
type Option func(*Runner)

// WithOutput sets where user-facing lines are written
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConcurrency bounds the number of lookups in flight
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithStyles sets the progress line styles
func WithStyles(s progress.Styles) Option {
	return func(r *Runner) {
		r.styles = s
	}
}

// NewRunner creates a Runner
func NewRunner(fsys filesystem.FileSystem, resolver platform.Resolver, reconciler *reconcile.Reconciler, opts ...Option) *Runner {
	r := &Runner{
		fs:          fsys,
		resolver:    resolver,
		reconciler:  reconciler,
		out:         io.Discard,
		logger:      logging.Discard(),
		concurrency: resolve.DefaultConcurrency,
		styles:      progress.PlainStyles(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves the active mods of doc, mirrors the disabled set onto the output directory and
// reconciles it. A rate limit aborts before anything on disk changes. When some mods failed to
// resolve the directory is still reconciled and ErrIncomplete is returned.
func (r *Runner) Run(ctx context.Context, doc *config.Document) error {
	profile := &doc.Profile

	if len(profile.Mods) == 0 {
		fmt.Fprintln(r.out, "No mods to upgrade")
		return nil
	}

	fmt.Fprintln(r.out, tui.TitleStyle.Render("Determining the Latest Compatible Versions"))

	names := make([]string, 0, len(profile.Mods))
	for _, m := range profile.Mods {
		names = append(names, m.Name)
	}
	reporter := progress.NewReporter(r.out,
		progress.WithPadding(progress.PaddingFor(names)),
		progress.WithStyles(r.styles),
	)

	pool := resolve.NewPool(r.resolver, profile.Filters, doc.Overrides,
		resolve.WithReporter(reporter),
		resolve.WithLogger(r.logger.With("component", "resolve")),
		resolve.WithConcurrency(r.concurrency),
	)

	result, err := pool.Run(ctx, profile.Mods)
	summary := reporter.Close()
	if err != nil {
		return err
	}
	r.logger.Info("resolution finished", "resolved", len(result.Artifacts), "total", summary.Total, "failed", summary.Failed)

	artifacts := withoutDisabled(result.Artifacts, profile, r.logger)

	installs, err := reconcile.UserInstalls(r.fs, profile.OutputDir, profile.Filters)
	if err != nil {
		return err
	}

	keep := wantedFiles(artifacts, installs)
	if _, err := toggle.SyncMarkers(r.fs, profile.OutputDir, profile, keep, r.logger.With("component", "markers")); err != nil {
		return err
	}

	fmt.Fprintln(r.out)
	report, reconcileErr := r.reconciler.Reconcile(ctx, profile.OutputDir, artifacts, installs)
	if reconcileErr != nil && report == nil {
		return reconcileErr
	}

	if err := toggle.AuditMarkers(r.fs, profile.OutputDir, profile, keep); err != nil {
		return err
	}
	if reconcileErr != nil {
		return reconcileErr
	}

	if report.UpToDate() {
		fmt.Fprintln(r.out, tui.SuccessStyle.Render("All up to date!"))
	}

	if result.SoftFailed {
		return ErrIncomplete
	}
	return nil
}

// wantedFiles lists the filenames the reconciler will keep in the output directory
func wantedFiles(artifacts []*models.ResolvedArtifact, installs []reconcile.Install) []string {
	names := make([]string, 0, len(artifacts)+len(installs))
	for _, a := range artifacts {
		names = append(names, a.Filename)
	}
	for _, i := range installs {
		names = append(names, i.Name)
	}
	return names
}

// withoutDisabled drops artifacts of mods the user disabled that were pulled in as dependencies
func withoutDisabled(artifacts []*models.ResolvedArtifact, profile *models.Profile, logger *log.Logger) []*models.ResolvedArtifact {
	if len(profile.Disabled) == 0 {
		return artifacts
	}

	disabled := make(map[models.ModIdentifier]string, len(profile.Disabled))
	for _, m := range profile.Disabled {
		disabled[m.Identifier.Unpinned()] = m.Name
	}

	kept := make([]*models.ResolvedArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		if name, ok := disabled[a.Source.Unpinned()]; ok {
			logger.Warn("skipping disabled dependency", "mod", name)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
