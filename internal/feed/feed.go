// Package feed fetches recent messages from monitored channels through an
// authenticated provider session, pacing every call through the rate
// limiter and absorbing per-source failures.
package feed

import (
	"errors"
	"fmt"
	"time"
)

// Message is a raw channel post, in-flight only.
type Message struct {
	Source string // channel handle, e.g. "normrabota"
	ID     int64  // provider message id
	Date   time.Time
	Text   string

	// ButtonURLs are inline-keyboard button links, in display order.
	ButtonURLs []string
	// EntityURLs are hyperlink-entity targets embedded in the text.
	EntityURLs []string
}

// Client is the authenticated provider session. Session/credential
// acquisition happens elsewhere; the reader only consumes the handle.
// Whoever opens the session owns Close: the pipeline never closes a client
// between runs, so session-backed implementations stay usable across
// scheduled runs.
//
// History returns messages newest-first, up to limit. Failures map to the
// tagged errors below so retry policy stays provider-agnostic.
type Client interface {
	History(source string, limit int) ([]Message, error)
	Close() error
}

// SlowDownError is the provider's mandatory backoff signal. The reader must
// sleep RetryAfter and retry the same call.
type SlowDownError struct {
	RetryAfter time.Duration
}

func (e *SlowDownError) Error() string {
	return fmt.Sprintf("provider requested slow down for %s", e.RetryAfter)
}

// SourceUnavailableError marks a source that cannot be read this run:
// invalid handle, private channel, or otherwise unreachable.
type SourceUnavailableError struct {
	Source string
	Reason string
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %s", e.Source, e.Reason)
}

// AsSlowDown unwraps a SlowDownError if err carries one.
func AsSlowDown(err error) (*SlowDownError, bool) {
	var sd *SlowDownError
	if errors.As(err, &sd) {
		return sd, true
	}
	return nil, false
}

// IsUnavailable reports whether err marks an unreachable source.
func IsUnavailable(err error) bool {
	var su *SourceUnavailableError
	return errors.As(err, &su)
}
