package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Outcome values stored for each probe.
const (
	OutcomeReady      = "ready"
	OutcomeIO         = "io"
	OutcomeBadHeaders = "bad_headers"
	OutcomeNoVideo    = "no_video"
)

// Record is one probed file.
type Record struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Serial    uint32    `json:"serial,omitempty"`
	Width     uint32    `json:"width,omitempty"`
	Height    uint32    `json:"height,omitempty"`
	FPS       float64   `json:"fps,omitempty"`
	Vendor    string    `json:"vendor,omitempty"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages probe history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add stores rec and returns it with ID and CreatedAt assigned.
func (s *Store) Add(ctx context.Context, rec Record) (Record, error) {
	if rec.Path == "" || rec.Outcome == "" {
		return Record{}, errors.New("history record requires path and outcome")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	ready := rec.Outcome == OutcomeReady
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO probes (
                session_id, path, size_bytes, outcome, detail,
                serial, width, height, fps, vendor, pages, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.SessionID,
			rec.Path,
			rec.SizeBytes,
			rec.Outcome,
			nullableString(rec.Detail),
			nullableIf(ready, int64(rec.Serial)),
			nullableIf(ready, int64(rec.Width)),
			nullableIf(ready, int64(rec.Height)),
			nullableIf(ready, rec.FPS),
			nullableString(rec.Vendor),
			rec.Pages,
			rec.CreatedAt.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return Record{}, fmt.Errorf("insert probe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("last insert id: %w", err)
	}
	rec.ID = id
	return rec, nil
}

// Recent returns up to limit records, newest first. A non-empty outcome
// filters by outcome.
func (s *Store) Recent(ctx context.Context, limit int, outcome string) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, session_id, path, size_bytes, outcome, detail,
            serial, width, height, fps, vendor, pages, created_at
        FROM probes`
	args := []any{}
	if outcome != "" {
		query += " WHERE outcome = ?"
		args = append(args, outcome)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query probes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probes: %w", err)
	}
	return out, nil
}

// Clear deletes every stored record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM probes")
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear probes: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec       Record
		detail    sql.NullString
		serial    sql.NullInt64
		width     sql.NullInt64
		height    sql.NullInt64
		fps       sql.NullFloat64
		vendor    sql.NullString
		createdAt string
	)
	if err := rows.Scan(
		&rec.ID, &rec.SessionID, &rec.Path, &rec.SizeBytes, &rec.Outcome, &detail,
		&serial, &width, &height, &fps, &vendor, &rec.Pages, &createdAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan probe: %w", err)
	}
	rec.Detail = detail.String
	rec.Serial = uint32(serial.Int64)
	rec.Width = uint32(width.Int64)
	rec.Height = uint32(height.Int64)
	rec.FPS = fps.Float64
	rec.Vendor = vendor.String
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullableIf[T any](ok bool, v T) any {
	if !ok {
		return nil
	}
	return v
}
