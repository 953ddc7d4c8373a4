package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

const defaultMaxEntries = 10000

// Entry is one script recorded by a Journal.
type Entry struct {
	ID         int64
	Timestamp  time.Time
	Identifier string
	Script     string
}

// Journal implements ports.Sink by appending every transmitted script to a SQLite database.
type Journal struct {
	mu         sync.Mutex
	db         *sql.DB
	maxEntries int
	logger     *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithMaxEntries caps the journal; the oldest entries are deleted first. Defaults to 10000.
func WithMaxEntries(n int) Option {
	return func(j *Journal) {
		j.maxEntries = n
	}
}

// WithLogger reports write failures, since Record cannot return them.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// Open creates or opens the journal at path.
func Open(path string, opts ...Option) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to journal database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	j := &Journal{
		db:         db,
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.logger == nil {
		j.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scripts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			identifier TEXT NOT NULL,
			script TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_scripts_timestamp ON scripts(timestamp);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends a script. Failures are logged.
func (j *Journal) Record(ctx context.Context, identifier, script string) {
	if err := j.Append(ctx, identifier, script); err != nil {
		j.logger.Warn("journal write failed", "identifier", identifier, "err", err)
	}
}

// Append inserts a script and trims the journal to its cap.
func (j *Journal) Append(ctx context.Context, identifier, script string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO scripts (timestamp, identifier, script) VALUES (?, ?, ?)`,
		time.Now().UnixNano(), identifier, script)
	if err != nil {
		return fmt.Errorf("inserting script: %w", err)
	}

	if j.maxEntries > 0 {
		_, err = j.db.ExecContext(ctx,
			`DELETE FROM scripts WHERE id <= (SELECT MAX(id) FROM scripts) - ?`, j.maxEntries)
		if err != nil {
			return fmt.Errorf("trimming journal: %w", err)
		}
	}
	return nil
}

// Entries returns up to limit of the most recent scripts, oldest first. A limit of zero returns all.
func (j *Journal) Entries(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, timestamp, identifier, script FROM (
			SELECT id, timestamp, identifier, script FROM scripts ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Identifier, &e.Script); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.Timestamp = time.Unix(0, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every entry.
func (j *Journal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `DELETE FROM scripts`)
	return err
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
