// Package errors defines the scout service error taxonomy. Sentinels classify
// failures by how the pipeline must react: only ErrConfiguration may escape to
// process exit, everything else is contained at the campaign or candidate
// boundary.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing or invalid required settings. Fatal at
	// startup; the process exits non-zero.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrUpstreamUnavailable marks an unreachable campaign source. Fail-soft:
	// the run proceeds with an empty campaign list.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDiscoveryAuth marks a failed discovery login. The cached session is
	// invalidated and the run's remaining discovery work fails.
	ErrDiscoveryAuth = errors.New("discovery authentication failed")
	// ErrNoQuery marks a campaign with no configured hashtags. Configuration
	// problem, not transient; the campaign is skipped for the run.
	ErrNoQuery = errors.New("no search query for campaign")
	// ErrLookupTimeout marks an influence lookup exceeding its deadline. The
	// single candidate is dropped.
	ErrLookupTimeout = errors.New("influence lookup timed out")
	// ErrCacheUnavailable marks a seen-cache store failure. Reads fail open,
	// writes are logged and dropped.
	ErrCacheUnavailable = errors.New("seen cache unavailable")
	// ErrRunInProgress is returned when a run trigger overlaps an in-flight
	// run. The trigger is skipped, never queued.
	ErrRunInProgress = errors.New("scout run already in progress")
)

// AppError attaches a human-readable message to a sentinel while keeping the
// sentinel reachable through errors.Is.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{Err: sentinel, Message: message}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{Err: sentinel, Message: fmt.Sprintf(format, args...)}
}
