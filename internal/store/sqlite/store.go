// Package sqlite provides the embedded persistent store backing the sync
// engine: user aggregate, syncable records, settings keys, and the sync
// journal.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries bundles the store operations over a connection or transaction.
type Queries struct {
	db dbtx
}

// Store is the SQLite-backed store. All mutating sync work goes through InTx
// so one entity-type run commits exactly once.
type Store struct {
	*Queries
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// The store has single-writer affinity; one connection avoids
	// SQLITE_BUSY churn between the apply phase and read paths.
	db.SetMaxOpenConns(1)

	store := &Store{Queries: &Queries{db: db}, db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a single transaction, committing iff fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&Queries{db: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id     TEXT PRIMARY KEY,
    start_date  INTEGER NOT NULL,
    create_date INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS activities (
    user_id        TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    day            INTEGER NOT NULL,
    kind           TEXT NOT NULL DEFAULT '',
    planned_count  INTEGER NOT NULL DEFAULT 0,
    actual_count   INTEGER NOT NULL DEFAULT 0,
    execution_mode TEXT NOT NULL DEFAULT '',
    comment        TEXT NOT NULL DEFAULT '',
    is_synced      INTEGER NOT NULL DEFAULT 0,
    ever_synced    INTEGER NOT NULL DEFAULT 0,
    should_delete  INTEGER NOT NULL DEFAULT 0,
    create_date    INTEGER NOT NULL,
    modify_date    INTEGER NOT NULL,
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS trainings (
    user_id            TEXT NOT NULL,
    day                INTEGER NOT NULL,
    sort_order         INTEGER NOT NULL,
    exercise_type      TEXT NOT NULL DEFAULT '',
    custom_exercise_id TEXT NOT NULL DEFAULT '',
    count              INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, day, sort_order),
    FOREIGN KEY (user_id, day) REFERENCES activities(user_id, day) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS progress (
    user_id       TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    day           INTEGER NOT NULL,
    weight        REAL,
    pull_ups      INTEGER,
    push_ups      INTEGER,
    squats        INTEGER,
    photos        TEXT NOT NULL DEFAULT '[]',
    is_synced     INTEGER NOT NULL DEFAULT 0,
    ever_synced   INTEGER NOT NULL DEFAULT 0,
    should_delete INTEGER NOT NULL DEFAULT 0,
    create_date   INTEGER NOT NULL,
    modify_date   INTEGER NOT NULL,
    PRIMARY KEY (user_id, day)
);

CREATE TABLE IF NOT EXISTS exercises (
    exercise_id   TEXT NOT NULL,
    user_id       TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    name          TEXT NOT NULL DEFAULT '',
    image_id      TEXT NOT NULL DEFAULT '',
    hidden        INTEGER NOT NULL DEFAULT 0,
    is_synced     INTEGER NOT NULL DEFAULT 0,
    ever_synced   INTEGER NOT NULL DEFAULT 0,
    should_delete INTEGER NOT NULL DEFAULT 0,
    create_date   INTEGER NOT NULL,
    modify_date   INTEGER NOT NULL,
    PRIMARY KEY (user_id, exercise_id)
);

CREATE TABLE IF NOT EXISTS journal (
    run_id      TEXT PRIMARY KEY,
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL,
    result      TEXT NOT NULL,
    stats       TEXT NOT NULL,
    errors      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
	_, err := s.db.Exec(schema)
	return err
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
