package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome classifies a network-backed lookup.
type Outcome string

const (
	OutcomeMatched   Outcome = "matched"
	OutcomeRejected  Outcome = "rejected"
	OutcomeNoResults Outcome = "no_results"
	OutcomeFailed    Outcome = "failed"
)

// Lookup is one journal row.
type Lookup struct {
	ID            int64         `json:"id"`
	CorrelationID string        `json:"correlation_id"`
	Title         string        `json:"title"`
	Query         string        `json:"query,omitempty"`
	AppID         string        `json:"app_id,omitempty"`
	MatchedTitle  string        `json:"matched_title,omitempty"`
	Score         float64       `json:"score"`
	Source        string        `json:"source"`
	Outcome       Outcome       `json:"outcome"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration_ns"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Store journals lookups in SQLite.
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

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
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

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends a lookup. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, lookup Lookup) error {
	if lookup.CreatedAt.IsZero() {
		lookup.CreatedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO lookups
            (correlation_id, title, query, app_id, matched_title, score, source, outcome, error, duration_ms, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lookup.CorrelationID,
			lookup.Title,
			lookup.Query,
			lookup.AppID,
			lookup.MatchedTitle,
			lookup.Score,
			lookup.Source,
			string(lookup.Outcome),
			lookup.Error,
			lookup.Duration.Milliseconds(),
			lookup.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert lookup: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit lookups, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Lookup, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, correlation_id, title, query, app_id, matched_title, score,
        source, outcome, error, duration_ms, created_at
        FROM lookups ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var out []Lookup
	for rows.Next() {
		var (
			lookup     Lookup
			outcome    string
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&lookup.ID, &lookup.CorrelationID, &lookup.Title, &lookup.Query, &lookup.AppID,
			&lookup.MatchedTitle, &lookup.Score, &lookup.Source, &outcome, &lookup.Error, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		lookup.Outcome = Outcome(outcome)
		lookup.Duration = time.Duration(durationMS) * time.Millisecond
		lookup.CreatedAt = time.UnixMilli(createdAt)
		out = append(out, lookup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookups: %w", err)
	}
	return out, nil
}

// Prune deletes lookups older than cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM lookups WHERE created_at < ?", cutoff.UnixMilli())
		if err != nil {
			return fmt.Errorf("prune lookups: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

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
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
