package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, WAL-friendly
)

// timeLayout is fixed width so updated_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one persisted selection with its last write time.
type Entry struct {
	ScopeKey  string
	ThemeID   string
	UpdatedAt time.Time
}

// SQLiteStore keeps selections in a SQLite database so several processes
// sharing a machine see the same saved themes.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SQLiteStore)(nil)

// DefaultSQLitePath returns ~/.themekit/themes.db.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, ".themekit", "themes.db"), nil
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("sqlite store requires a database path")
	}
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", buildSQLiteDSN(trimmed))
	if err != nil {
		return nil, fmt.Errorf("open theme db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping theme db: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, path: trimmed}, nil
}

// buildSQLiteDSN creates a read-write WAL DSN for the given path.
func buildSQLiteDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS theme_selections (
			scope      TEXT PRIMARY KEY,
			theme_id   TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating theme_selections table: %w", err)
	}
	return nil
}

// Path reports the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Load(ctx context.Context, scopeKey string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT theme_id FROM theme_selections WHERE scope = ?`, scopeKey,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query theme selection: %w", err)
	}
	return id, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, scopeKey, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO theme_selections (scope, theme_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(scope) DO UPDATE SET
			theme_id = excluded.theme_id,
			updated_at = excluded.updated_at`,
		scopeKey, id, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving theme selection: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, scopeKey string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM theme_selections WHERE scope = ?`, scopeKey); err != nil {
		return fmt.Errorf("clearing theme selection: %w", err)
	}
	return nil
}

// Entries lists every saved selection, most recently written first.
func (s *SQLiteStore) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope, theme_id, updated_at
		FROM theme_selections
		ORDER BY updated_at DESC, scope`)
	if err != nil {
		return nil, fmt.Errorf("listing theme selections: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ScopeKey, &e.ThemeID, &ts); err != nil {
			return nil, fmt.Errorf("scan theme selection: %w", err)
		}
		e.UpdatedAt, _ = time.Parse(timeLayout, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
