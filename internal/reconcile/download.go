package reconcile

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/jakoblorz/go-modsync/internal/filesystem"
	"github.com/jakoblorz/go-modsync/internal/models"
)

const (
	partAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// maxDownloadBytes bounds a single artifact (256 MB)
	maxDownloadBytes = 256 << 20
)

type downloadResult struct {
	artifact *models.ResolvedArtifact
	err      error
}

// download fetches artifacts with a fixed number of workers
func (r *Reconciler) download(ctx context.Context, artifacts []*models.ResolvedArtifact) []downloadResult {
	if len(artifacts) == 0 {
		return nil
	}

	jobs := make(chan *models.ResolvedArtifact, len(artifacts))
	results := make(chan downloadResult, len(artifacts))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				results <- downloadResult{artifact: a, err: r.downloadOne(ctx, a)}
			}
		}()
	}

	for _, a := range artifacts {
		jobs <- a
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]downloadResult, 0, len(artifacts))
	for res := range results {
		collected = append(collected, res)
	}
	return collected
}

func (r *Reconciler) downloadOne(ctx context.Context, a *models.ResolvedArtifact) error {
	if a.URL == "" {
		return fmt.Errorf("no download url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return fmt.Errorf("file exceeds %d bytes", maxDownloadBytes)
	}

	r.logger.Debug("downloaded", "file", a.Filename, "bytes", len(data))
	return writeAtomic(r.fs, a.Output, data)
}

// writeAtomic writes data next to path under a hidden temporary name and renames it into place,
// so the directory never contains a partially written jar
func writeAtomic(fsys filesystem.FileSystem, path string, data []byte) error {
	id, err := gonanoid.Generate(partAlphabet, 8)
	if err != nil {
		return fmt.Errorf("failed to generate temporary name: %w", err)
	}

	part := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+id+".part")
	if err := fsys.WriteFile(part, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fsys.Rename(part, path); err != nil {
		_ = fsys.Remove(part)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
