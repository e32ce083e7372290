package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"example.com/fitsync/internal/domain"
)

const activityColumns = `user_id, day, kind, planned_count, actual_count, execution_mode, comment, is_synced, ever_synced, should_delete, create_date, modify_date`

// SaveActivity inserts or updates the activity row for (user, day) and
// rewrites its trainings.
func (q *Queries) SaveActivity(ctx context.Context, act *domain.DailyActivity) error {
	const stmt = `INSERT INTO activities (` + activityColumns + `)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(user_id, day) DO UPDATE SET
            kind=excluded.kind,
            planned_count=excluded.planned_count,
            actual_count=excluded.actual_count,
            execution_mode=excluded.execution_mode,
            comment=excluded.comment,
            is_synced=excluded.is_synced,
            ever_synced=excluded.ever_synced,
            should_delete=excluded.should_delete,
            create_date=excluded.create_date,
            modify_date=excluded.modify_date`

	_, err := q.db.ExecContext(ctx, stmt,
		act.UserID,
		act.Day,
		string(act.Kind),
		act.PlannedCount,
		act.ActualCount,
		string(act.ExecutionMode),
		act.Comment,
		boolToInt(act.IsSynced),
		boolToInt(act.EverSynced),
		boolToInt(act.ShouldDelete),
		encodeTime(act.CreateDate),
		encodeTime(act.ModifyDate),
	)
	if err != nil {
		return err
	}

	if _, err := q.db.ExecContext(ctx, `DELETE FROM trainings WHERE user_id=? AND day=?`, act.UserID, act.Day); err != nil {
		return err
	}
	for _, tr := range act.Trainings {
		_, err := q.db.ExecContext(ctx,
			`INSERT INTO trainings (user_id, day, sort_order, exercise_type, custom_exercise_id, count) VALUES (?,?,?,?,?,?)`,
			act.UserID, act.Day, tr.SortOrder, tr.ExerciseType, tr.CustomExerciseID, tr.Count)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetActivity fetches the activity for (user, day) including tombstones.
// Returns nil when absent.
func (q *Queries) GetActivity(ctx context.Context, userID string, day int) (*domain.DailyActivity, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE user_id=? AND day=?`, userID, day)

	act, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := q.loadTrainings(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

// DeleteActivity removes the row for (user, day); trainings cascade.
func (q *Queries) DeleteActivity(ctx context.Context, userID string, day int) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM activities WHERE user_id=? AND day=?`, userID, day)
	return err
}

// ListActivities returns the user's visible activities ordered by day.
// Tombstoned records are hidden, as on every read path.
func (q *Queries) ListActivities(ctx context.Context, userID string) ([]domain.DailyActivity, error) {
	return q.listActivities(ctx, userID, false)
}

// ListAllActivities returns every activity including tombstones, for sync
// selection and the download sweep.
func (q *Queries) ListAllActivities(ctx context.Context, userID string) ([]domain.DailyActivity, error) {
	return q.listActivities(ctx, userID, true)
}

func (q *Queries) listActivities(ctx context.Context, userID string, includeTombstones bool) ([]domain.DailyActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id=?`
	if !includeTombstones {
		query += ` AND should_delete=0`
	}
	query += ` ORDER BY day`

	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DailyActivity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *act)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := q.loadTrainings(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (q *Queries) loadTrainings(ctx context.Context, act *domain.DailyActivity) error {
	rows, err := q.db.QueryContext(ctx,
		`SELECT exercise_type, custom_exercise_id, count, sort_order
         FROM trainings WHERE user_id=? AND day=? ORDER BY sort_order`,
		act.UserID, act.Day)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tr domain.Training
		if err := rows.Scan(&tr.ExerciseType, &tr.CustomExerciseID, &tr.Count, &tr.SortOrder); err != nil {
			return err
		}
		act.Trainings = append(act.Trainings, tr)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*domain.DailyActivity, error) {
	var (
		act                                domain.DailyActivity
		kind, mode                         string
		isSynced, everSynced, shouldDelete int
		created, modified                  int64
	)
	if err := row.Scan(&act.UserID, &act.Day, &kind, &act.PlannedCount, &act.ActualCount,
		&mode, &act.Comment, &isSynced, &everSynced, &shouldDelete, &created, &modified); err != nil {
		return nil, err
	}
	act.Kind = domain.ActivityKind(kind)
	act.ExecutionMode = domain.ExecutionMode(mode)
	act.IsSynced = isSynced != 0
	act.EverSynced = everSynced != 0
	act.ShouldDelete = shouldDelete != 0
	act.CreateDate = decodeTime(created)
	act.ModifyDate = decodeTime(modified)
	return &act, nil
}
