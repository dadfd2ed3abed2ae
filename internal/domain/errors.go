package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrJobFinalized      = errors.New("job already finalized")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrCorrupt           = errors.New("job store corrupted")
	ErrQueueFull         = errors.New("scheduling queue full")
	ErrNoResults         = errors.New("search returned no results")
	ErrSessionClosed     = errors.New("browser session closed")
)

// ConfigError covers a missing or unreadable config, credential, or cookie file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type SessionErrorKind string

const (
	SessionInitFailure  SessionErrorKind = "init_failure"
	SessionLoginTimeout SessionErrorKind = "login_timeout"
)

// SessionError is raised while the browser session starts. It is fatal.
type SessionError struct {
	Kind SessionErrorKind
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.Kind, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

type ScrapeErrorKind string

const (
	InteractionTimeout ScrapeErrorKind = "interaction_timeout"
	InteractionFailure ScrapeErrorKind = "interaction_failure"
	ExtractionFailure  ScrapeErrorKind = "extraction_failure"
)

// ScrapeError is a per-job failure. It is recorded on the job, never raised to the HTTP caller.
type ScrapeError struct {
	Kind ScrapeErrorKind
	Step string
	Err  error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("%s during %s: %v", e.Kind, e.Step, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// StoreError wraps I/O and decoding failures of the job store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrorKindOf names the failure class recorded on a failed job.
func ErrorKindOf(err error) string {
	var scrapeErr *ScrapeError
	var storeErr *StoreError
	var sessionErr *SessionError
	switch {
	case errors.As(err, &scrapeErr):
		return string(scrapeErr.Kind)
	case errors.Is(err, ErrQueueFull):
		return "queue_full"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	case errors.As(err, &sessionErr):
		return string(sessionErr.Kind)
	case errors.As(err, &storeErr):
		return "store_failure"
	default:
		return "internal"
	}
}
