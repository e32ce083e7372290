package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"example.com/fitsync/internal/domain"
)

const exerciseColumns = `exercise_id, user_id, name, image_id, hidden, is_synced, ever_synced, should_delete, create_date, modify_date`

// SaveExercise inserts or updates the exercise row for (user, id).
func (q *Queries) SaveExercise(ctx context.Context, ex *domain.CustomExercise) error {
	const stmt = `INSERT INTO exercises (` + exerciseColumns + `)
        VALUES (?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(user_id, exercise_id) DO UPDATE SET
            name=excluded.name,
            image_id=excluded.image_id,
            hidden=excluded.hidden,
            is_synced=excluded.is_synced,
            ever_synced=excluded.ever_synced,
            should_delete=excluded.should_delete,
            create_date=excluded.create_date,
            modify_date=excluded.modify_date`

	_, err := q.db.ExecContext(ctx, stmt,
		ex.ID,
		ex.UserID,
		ex.Name,
		ex.ImageID,
		boolToInt(ex.Hidden),
		boolToInt(ex.IsSynced),
		boolToInt(ex.EverSynced),
		boolToInt(ex.ShouldDelete),
		encodeTime(ex.CreateDate),
		encodeTime(ex.ModifyDate),
	)
	return err
}

// GetExercise fetches the exercise for (user, id) including tombstones.
// Returns nil when absent.
func (q *Queries) GetExercise(ctx context.Context, userID, exerciseID string) (*domain.CustomExercise, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE user_id=? AND exercise_id=?`, userID, exerciseID)

	ex, err := scanExercise(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ex, nil
}

// DeleteExercise removes the row for (user, id).
func (q *Queries) DeleteExercise(ctx context.Context, userID, exerciseID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM exercises WHERE user_id=? AND exercise_id=?`, userID, exerciseID)
	return err
}

// ListExercises returns the user's visible exercises ordered by name.
func (q *Queries) ListExercises(ctx context.Context, userID string) ([]domain.CustomExercise, error) {
	return q.listExercises(ctx, userID, false)
}

// ListAllExercises returns every exercise including tombstones.
func (q *Queries) ListAllExercises(ctx context.Context, userID string) ([]domain.CustomExercise, error) {
	return q.listExercises(ctx, userID, true)
}

func (q *Queries) listExercises(ctx context.Context, userID string, includeTombstones bool) ([]domain.CustomExercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE user_id=?`
	if !includeTombstones {
		query += ` AND should_delete=0`
	}
	query += ` ORDER BY name, exercise_id`

	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CustomExercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ex)
	}
	return out, rows.Err()
}

func scanExercise(row rowScanner) (*domain.CustomExercise, error) {
	var (
		ex                                         domain.CustomExercise
		hidden, isSynced, everSynced, shouldDelete int
		created, modified                          int64
	)
	if err := row.Scan(&ex.ID, &ex.UserID, &ex.Name, &ex.ImageID, &hidden,
		&isSynced, &everSynced, &shouldDelete, &created, &modified); err != nil {
		return nil, err
	}
	ex.Hidden = hidden != 0
	ex.IsSynced = isSynced != 0
	ex.EverSynced = everSynced != 0
	ex.ShouldDelete = shouldDelete != 0
	ex.CreateDate = decodeTime(created)
	ex.ModifyDate = decodeTime(modified)
	return &ex, nil
}
