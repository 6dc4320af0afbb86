// Package storage is the persistence layer: monitored sources, accepted
// records, delivery receipts, job runs, and recipient registrations.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateFingerprint is returned by InsertRecord when a record with
// the same content fingerprint already exists. Callers treat it as a
// duplicate, not a failure; the unique constraint lives in the database so
// two near-simultaneous runs cannot both insert the same posting.
var ErrDuplicateFingerprint = errors.New("storage: duplicate fingerprint")

// Config configures the sqlite backend.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// Source is a monitored channel. Created by seed import (out of scope);
// the core only reads enabled sources and touches last_checked.
type Source struct {
	ID          int64
	Name        string
	Handle      string // channel username without @
	Enabled     bool
	LastChecked time.Time // zero when never checked
}

// Record is a durable accepted posting.
type Record struct {
	ID          int64
	SourceID    int64
	MessageID   int64
	Title       string
	Company     string
	Link        string
	Category    string
	FullText    string
	Fingerprint string
	FoundAt     time.Time
	CreatedAt   time.Time
}

// Recipient maps a handle to its delivery chat. Written by the bot
// collaborator when a user opts in; read-only to the core.
type Recipient struct {
	ID     int64
	Handle string
	ChatID int64
}

// Job run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// JobRun is one scheduled collection attempt.
type JobRun struct {
	ID          int64
	StartedAt   time.Time
	CompletedAt time.Time // zero while running
	Status      string
	FoundCount  int
	SentCount   int
	Error       string
}

// Store is the persistence API used by the pipeline.
type Store interface {
	EnabledSources(ctx context.Context) ([]Source, error)
	TouchSource(ctx context.Context, id int64, checkedAt time.Time) error

	// InsertRecord persists an accepted record and fills in its ID.
	// Returns ErrDuplicateFingerprint when the fingerprint is taken.
	InsertRecord(ctx context.Context, rec *Record) error
	RecordByFingerprint(ctx context.Context, fingerprint string, since time.Time) (*Record, error)
	RecordByLink(ctx context.Context, link string, since time.Time) (*Record, error)
	// RecordsSince returns records with FoundAt >= since (inclusive),
	// optionally restricted to one category.
	RecordsSince(ctx context.Context, since time.Time, category string) ([]Record, error)
	DeleteRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	InsertReceipt(ctx context.Context, recordID int64, recipient string) error
	HasReceipt(ctx context.Context, recordID int64, recipient string) (bool, error)

	RecipientByHandle(ctx context.Context, handle string) (*Recipient, error)
	UpsertRecipient(ctx context.Context, handle string, chatID int64) error

	CreateJobRun(ctx context.Context, startedAt time.Time) (int64, error)
	FinishJobRun(ctx context.Context, run JobRun) error

	Close() error
}
