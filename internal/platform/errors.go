package platform

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoCompatibleFile is returned when no file matches the filters
	ErrNoCompatibleFile = errors.New("no compatible file found")

	// ErrNotFound is returned when the project or pinned release does not exist
	ErrNotFound = errors.New("project not found")

	// ErrDistributionDenied is returned when a project forbids third-party downloads
	ErrDistributionDenied = errors.New("project does not allow third-party downloads")

	// ErrMissingAPIKey is returned when a platform requires an API key that is not configured
	ErrMissingAPIKey = errors.New("api key not configured")
)

// RateLimitError is returned when a platform rejects requests because of rate limiting.
// It is fatal to a resolution run.
type RateLimitError struct {
	Platform   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded (retry in %s)", e.Platform, e.RetryAfter.Round(time.Second))
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Platform)
}

// IsRateLimited reports whether err is or wraps a RateLimitError
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}
