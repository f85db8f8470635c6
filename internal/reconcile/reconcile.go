// Package reconcile brings an output directory in line with a set of resolved artifacts.
package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gitignore "github.com/denormal/go-gitignore"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/logging"
	"github.com/jakoblorz/go-modsync/internal/models"
)

const (
	// OldDir receives stale files, relative to the output directory
	OldDir = ".old"

	// UserDir holds user-supplied jars that are installed alongside resolved mods
	UserDir = "user"

	// IgnoreFile lists gitignore-style patterns of files that are never cleaned
	IgnoreFile = ".modsyncignore"

	// DefaultWorkers is the number of concurrent downloads
	DefaultWorkers = 8
)

// Install is a user-supplied file copied into the output directory
type Install struct {
	Name   string
	Source string
}

// Report describes what a reconciliation did
type Report struct {
	Downloaded []string
	Installed  []string
	Moved      []string
	Kept       []string
}

// UpToDate reports whether nothing had to be downloaded or installed
func (r *Report) UpToDate() bool {
	return len(r.Downloaded) == 0 && len(r.Installed) == 0
}

// Reconciler cleans and fills an output directory
type Reconciler struct {
	fs        filesystem.FileSystem
	client    *http.Client
	workers   int
	userAgent string
	logger    *log.Logger
	out       io.Writer
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithHTTPClient sets the client used for downloads
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reconciler) {
		if c != nil {
			r.client = c
		}
	}
}

// WithWorkers sets the number of concurrent downloads
func WithWorkers(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithUserAgent sets the User-Agent header of download requests
func WithUserAgent(ua string) Option {
	return func(r *Reconciler) {
		r.userAgent = ua
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithOutput prints one line per downloaded or installed file to w
func WithOutput(w io.Writer) Option {
	return func(r *Reconciler) {
		r.out = w
	}
}

// NewReconciler creates a Reconciler working on fsys
func NewReconciler(fsys filesystem.FileSystem, opts ...Option) *Reconciler {
	r := &Reconciler{
		fs:      fsys,
		client:  &http.Client{Timeout: 5 * time.Minute},
		workers: DefaultWorkers,
		logger:  logging.Discard(),
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UserInstalls lists the jars in the user directory of outputDir. Quilt profiles get none.
func UserInstalls(fsys filesystem.FileSystem, outputDir string, filters models.Filters) ([]Install, error) {
	if loader, ok := filters.PrimaryLoader(); ok && loader == models.LoaderQuilt {
		return nil, nil
	}

	userDir := filepath.Join(outputDir, UserDir)
	if !fsys.Exists(userDir) {
		return nil, nil
	}

	entries, err := fsys.ReadDir(userDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read user directory: %w", err)
	}

	var installs []Install
	for _, entry := range entries {
		if entry.IsDir() || !isJar(entry.Name()) {
			continue
		}
		installs = append(installs, Install{Name: entry.Name(), Source: filepath.Join(userDir, entry.Name())})
	}
	return installs, nil
}

// Reconcile moves stale jars out of outputDir, then downloads missing artifacts and copies
// missing user installs into it. Each artifact's Output is set to its path inside outputDir.
// Artifacts whose filename is not a plain file name are reported as errors and left alone.
func (r *Reconciler) Reconcile(ctx context.Context, outputDir string, artifacts []*models.ResolvedArtifact, installs []Install) (*Report, error) {
	if err := r.fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	report := &Report{}

	// Unsafe names never reach the directory; they count as failed artifacts
	var errs []error
	safe := make([]*models.ResolvedArtifact, 0, len(artifacts))
	for _, a := range artifacts {
		if err := models.CheckFilename(a.Filename); err != nil {
			errs = append(errs, fmt.Errorf("refusing to download %s: %w", a.Source, err))
			continue
		}
		safe = append(safe, a)
	}

	toDownload, toInstall, err := r.clean(outputDir, safe, installs, report)
	if err != nil {
		return nil, err
	}

	for _, a := range safe {
		a.Output = filepath.Join(outputDir, a.Filename)
	}

	for _, res := range r.download(ctx, toDownload) {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("failed to download %s: %w", res.artifact.Filename, res.err))
			continue
		}
		report.Downloaded = append(report.Downloaded, res.artifact.Filename)
		fmt.Fprintf(r.out, "✓ Downloaded  %s\n", res.artifact.Filename)
	}

	for _, install := range toInstall {
		if err := r.install(outputDir, install); err != nil {
			errs = append(errs, fmt.Errorf("failed to install %s: %w", install.Name, err))
			continue
		}
		report.Installed = append(report.Installed, install.Name)
		fmt.Fprintf(r.out, "✓ Installed   %s\n", install.Name)
	}

	sort.Strings(report.Downloaded)
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}

// clean keeps jars that are still wanted and moves every other jar to the .old directory.
// It returns the artifacts and installs that are not present yet.
func (r *Reconciler) clean(outputDir string, artifacts []*models.ResolvedArtifact, installs []Install, report *Report) ([]*models.ResolvedArtifact, []Install, error) {
	ignore, err := r.loadIgnore(outputDir)
	if err != nil {
		return nil, nil, err
	}

	wanted := make(map[string]bool, len(artifacts)+len(installs))
	for _, a := range artifacts {
		wanted[a.Filename] = true
	}
	for _, i := range installs {
		wanted[i.Name] = true
	}

	entries, err := r.fs.ReadDir(outputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	present := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !isJar(name) {
			continue
		}
		if ignore != nil {
			if match := ignore.Relative(name, false); match != nil && match.Ignore() {
				r.logger.Debug("ignored by "+IgnoreFile, "file", name)
				continue
			}
		}

		if wanted[name] {
			present[name] = true
			report.Kept = append(report.Kept, name)
			continue
		}

		if err := r.moveToOld(outputDir, name); err != nil {
			return nil, nil, err
		}
		report.Moved = append(report.Moved, name)
	}

	var toDownload []*models.ResolvedArtifact
	queued := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		if present[a.Filename] || queued[a.Filename] {
			continue
		}
		queued[a.Filename] = true
		toDownload = append(toDownload, a)
	}

	var toInstall []Install
	for _, i := range installs {
		if present[i.Name] || queued[i.Name] {
			continue
		}
		queued[i.Name] = true
		toInstall = append(toInstall, i)
	}

	return toDownload, toInstall, nil
}

func (r *Reconciler) moveToOld(outputDir, name string) error {
	oldDir := filepath.Join(outputDir, OldDir)
	if err := r.fs.MkdirAll(oldDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", OldDir, err)
	}
	if err := r.fs.Rename(filepath.Join(outputDir, name), filepath.Join(oldDir, name)); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", name, OldDir, err)
	}
	r.logger.Info("moved stale file", "file", name)
	return nil
}

func (r *Reconciler) loadIgnore(outputDir string) (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(outputDir, IgnoreFile)
	if !r.fs.Exists(ignorePath) {
		return nil, nil
	}

	data, err := r.fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IgnoreFile, err)
	}

	return gitignore.New(bytes.NewReader(data), outputDir, nil), nil
}

func (r *Reconciler) install(outputDir string, install Install) error {
	data, err := r.fs.ReadFile(install.Source)
	if err != nil {
		return err
	}
	return writeAtomic(r.fs, filepath.Join(outputDir, install.Name), data)
}

func isJar(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".jar")
}
