package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"vacradar/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the sqlite store, creating the schema when missing.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("storage: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Timestamps are stored as Unix microseconds so window-boundary comparisons
// hold at microsecond precision.
func toMicros(t time.Time) int64 { return t.UnixMicro() }

func fromMicros(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// ---- sources ----

func (s *sqliteStore) EnabledSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, handle, enabled, COALESCE(last_checked, 0)
		 FROM sources WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		var enabled int
		var checked int64
		if err := rows.Scan(&src.ID, &src.Name, &src.Handle, &enabled, &checked); err != nil {
			return nil, err
		}
		src.Enabled = enabled != 0
		src.LastChecked = fromMicros(checked)
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *sqliteStore) TouchSource(ctx context.Context, id int64, checkedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_checked = ? WHERE id = ?`, toMicros(checkedAt), id)
	return err
}

// ---- records ----

func (s *sqliteStore) InsertRecord(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records(source_id, message_id, title, company, link, category, full_text, fingerprint, found_at, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		rec.SourceID, rec.MessageID, rec.Title, nullStr(rec.Company), nullStr(rec.Link),
		nullStr(rec.Category), nullStr(rec.FullText), rec.Fingerprint,
		toMicros(rec.FoundAt), toMicros(rec.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFingerprint
		}
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

const recordCols = `id, source_id, COALESCE(message_id, 0), title, COALESCE(company, ''),
	COALESCE(link, ''), COALESCE(category, ''), COALESCE(full_text, ''), fingerprint, found_at, created_at`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var rec Record
	var foundAt, createdAt int64
	err := row.Scan(&rec.ID, &rec.SourceID, &rec.MessageID, &rec.Title, &rec.Company,
		&rec.Link, &rec.Category, &rec.FullText, &rec.Fingerprint, &foundAt, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.FoundAt = fromMicros(foundAt)
	rec.CreatedAt = fromMicros(createdAt)
	return &rec, nil
}

func (s *sqliteStore) RecordByFingerprint(ctx context.Context, fingerprint string, since time.Time) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordCols+` FROM records WHERE fingerprint = ? AND found_at >= ?`,
		fingerprint, toMicros(since))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *sqliteStore) RecordByLink(ctx context.Context, link string, since time.Time) (*Record, error) {
	if link == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordCols+` FROM records WHERE link = ? AND found_at >= ? LIMIT 1`,
		link, toMicros(since))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (s *sqliteStore) RecordsSince(ctx context.Context, since time.Time, category string) ([]Record, error) {
	q := `SELECT ` + recordCols + ` FROM records WHERE found_at >= ?`
	args := []any{toMicros(since)}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY found_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) DeleteRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE found_at < ?`, toMicros(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- receipts ----

func (s *sqliteStore) InsertReceipt(ctx context.Context, recordID int64, recipient string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO receipts(record_id, recipient, sent_at) VALUES(?,?,?)`,
		recordID, recipient, toMicros(time.Now()))
	if err != nil && isUniqueViolation(err) {
		// Pair already receipted; at-most-once holds.
		return nil
	}
	return err
}

func (s *sqliteStore) HasReceipt(ctx context.Context, recordID int64, recipient string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM receipts WHERE record_id = ? AND recipient = ?`,
		recordID, recipient).Scan(&n)
	return n > 0, err
}

// ---- recipients ----

func (s *sqliteStore) RecipientByHandle(ctx context.Context, handle string) (*Recipient, error) {
	var r Recipient
	err := s.db.QueryRowContext(ctx,
		`SELECT id, handle, chat_id FROM recipients WHERE handle = ?`, handle).
		Scan(&r.ID, &r.Handle, &r.ChatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *sqliteStore) UpsertRecipient(ctx context.Context, handle string, chatID int64) error {
	now := toMicros(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recipients(handle, chat_id, created_at, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(handle) DO UPDATE SET chat_id=excluded.chat_id, updated_at=excluded.updated_at`,
		handle, chatID, now, now)
	return err
}

// ---- job runs ----

func (s *sqliteStore) CreateJobRun(ctx context.Context, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO job_runs(started_at, status) VALUES(?,?)`,
		toMicros(startedAt), RunStatusRunning)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) FinishJobRun(ctx context.Context, run JobRun) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE job_runs SET completed_at = ?, status = ?, found_count = ?, sent_count = ?, error = ?
		 WHERE id = ?`,
		toMicros(run.CompletedAt), run.Status, run.FoundCount, run.SentCount,
		nullStr(run.Error), run.ID)
	return err
}
