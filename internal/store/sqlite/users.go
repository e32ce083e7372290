package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"example.com/fitsync/internal/domain"
)

// SaveUser inserts or updates the user aggregate.
func (q *Queries) SaveUser(ctx context.Context, user *domain.User) error {
	const stmt = `INSERT INTO users (user_id, start_date, create_date) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET start_date=excluded.start_date`
	_, err := q.db.ExecContext(ctx, stmt, user.ID, encodeTime(user.StartDate), encodeTime(user.CreateDate))
	return err
}

// CurrentUser returns the device's local user, or nil when none exists yet.
// The store holds at most one.
func (q *Queries) CurrentUser(ctx context.Context) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT user_id, start_date, create_date FROM users LIMIT 1`)

	var (
		user           domain.User
		start, created int64
	)
	if err := row.Scan(&user.ID, &start, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.StartDate = decodeTime(start)
	user.CreateDate = decodeTime(created)
	return &user, nil
}

// DeleteUser removes the user and every owned record via cascade. A failure
// here leaves the store in an inconsistent state and is unrecoverable for
// the caller.
func (q *Queries) DeleteUser(ctx context.Context, userID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=?`, userID); err != nil {
		return fmt.Errorf("cascading user delete failed, store may be corrupt: %w", err)
	}
	return nil
}
