// Package journal records one row per Graph API call in sqlite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"adte.com/adte/meta-ads-mcp/internal/auth"
	"adte.com/adte/meta-ads-mcp/internal/graph"
)

// DefaultDSN keeps the journal in process memory.
const DefaultDSN = ":memory:"

// MaxRecent caps how many entries Recent returns.
const MaxRecent = 200

// Fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one journaled call.
type Entry struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	Attempts   int       `json:"attempts"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is a sqlite-backed journal. It implements graph.Observer.
type Store struct {
	DB     *sql.DB
	Logger *slog.Logger
	now    func() time.Time
}

// Open opens the journal at dsn and applies the schema.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// A single connection keeps an in-memory database shared across callers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, SchemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{DB: db, Logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Record inserts an entry, assigning an id and timestamp when missing.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO api_calls (id, client_id, method, path, status_code, attempts, error_kind, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		sql.NullString{String: e.ClientID, Valid: e.ClientID != ""},
		e.Method,
		e.Path,
		e.StatusCode,
		e.Attempts,
		sql.NullString{String: e.ErrorKind, Valid: e.ErrorKind != ""},
		e.DurationMs,
		e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert api call: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, client_id, method, path, status_code, attempts, error_kind, duration_ms, created_at
		 FROM api_calls ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query api calls: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			clientID  sql.NullString
			errorKind sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &clientID, &e.Method, &e.Path, &e.StatusCode, &e.Attempts, &errorKind, &e.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan api call: %w", err)
		}
		e.ClientID = clientID.String
		e.ErrorKind = errorKind.String
		if parsed, err := time.Parse(timeLayout, createdAt); err == nil {
			e.CreatedAt = parsed
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api calls: %w", err)
	}
	return entries, nil
}

// ObserveCall journals a finished Graph API call. Failures are logged only.
func (s *Store) ObserveCall(ctx context.Context, rec graph.CallRecord) {
	clientID, _ := auth.ClientIDFromContext(ctx)
	err := s.Record(ctx, Entry{
		ClientID:   clientID,
		Method:     rec.Method,
		Path:       rec.Path,
		StatusCode: rec.StatusCode,
		Attempts:   rec.Attempts,
		ErrorKind:  string(rec.ErrorKind),
		DurationMs: rec.Duration.Milliseconds(),
	})
	if err != nil {
		s.Logger.Error("journal api call failed", "path", rec.Path, "error", err)
	}
}
