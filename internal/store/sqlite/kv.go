package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

// Get implements settings.Store.
func (q *Queries) Get(ctx context.Context, key string) (string, bool, error) {
	row := q.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set implements settings.Store.
func (q *Queries) Set(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value)
	return err
}
