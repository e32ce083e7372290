package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"example.com/fitsync/internal/domain"
)

const progressColumns = `user_id, day, weight, pull_ups, push_ups, squats, photos, is_synced, ever_synced, should_delete, create_date, modify_date`

// photoRow is the JSON shape photos are stored in. PendingUpload bytes are
// base64-encoded by encoding/json.
type photoRow struct {
	Kind              string `json:"kind"`
	PendingUpload     []byte `json:"pending_upload,omitempty"`
	RemoteURL         string `json:"remote_url,omitempty"`
	MarkedForDeletion bool   `json:"marked_for_deletion,omitempty"`
}

// SaveProgress inserts or updates the progress row for (user, day).
func (q *Queries) SaveProgress(ctx context.Context, rec *domain.ProgressRecord) error {
	photos, err := encodePhotos(rec.Photos)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO progress (` + progressColumns + `)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT(user_id, day) DO UPDATE SET
            weight=excluded.weight,
            pull_ups=excluded.pull_ups,
            push_ups=excluded.push_ups,
            squats=excluded.squats,
            photos=excluded.photos,
            is_synced=excluded.is_synced,
            ever_synced=excluded.ever_synced,
            should_delete=excluded.should_delete,
            create_date=excluded.create_date,
            modify_date=excluded.modify_date`

	_, err = q.db.ExecContext(ctx, stmt,
		rec.UserID,
		rec.Day,
		rec.Weight,
		rec.PullUps,
		rec.PushUps,
		rec.Squats,
		photos,
		boolToInt(rec.IsSynced),
		boolToInt(rec.EverSynced),
		boolToInt(rec.ShouldDelete),
		encodeTime(rec.CreateDate),
		encodeTime(rec.ModifyDate),
	)
	return err
}

// GetProgress fetches the record for (user, day) including tombstones.
// Returns nil when absent.
func (q *Queries) GetProgress(ctx context.Context, userID string, day int) (*domain.ProgressRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM progress WHERE user_id=? AND day=?`, userID, day)

	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// DeleteProgress removes the row for (user, day).
func (q *Queries) DeleteProgress(ctx context.Context, userID string, day int) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM progress WHERE user_id=? AND day=?`, userID, day)
	return err
}

// ListProgress returns the user's visible progress records ordered by day.
func (q *Queries) ListProgress(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	return q.listProgress(ctx, userID, false)
}

// ListAllProgress returns every progress record including tombstones.
func (q *Queries) ListAllProgress(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	return q.listProgress(ctx, userID, true)
}

func (q *Queries) listProgress(ctx context.Context, userID string, includeTombstones bool) ([]domain.ProgressRecord, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE user_id=?`
	if !includeTombstones {
		query += ` AND should_delete=0`
	}
	query += ` ORDER BY day`

	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanProgress(row rowScanner) (*domain.ProgressRecord, error) {
	var (
		rec                                domain.ProgressRecord
		photos                             string
		isSynced, everSynced, shouldDelete int
		created, modified                  int64
	)
	if err := row.Scan(&rec.UserID, &rec.Day, &rec.Weight, &rec.PullUps, &rec.PushUps, &rec.Squats,
		&photos, &isSynced, &everSynced, &shouldDelete, &created, &modified); err != nil {
		return nil, err
	}

	decoded, err := decodePhotos(photos)
	if err != nil {
		return nil, fmt.Errorf("decode photos for day %d: %w", rec.Day, err)
	}
	rec.Photos = decoded
	rec.IsSynced = isSynced != 0
	rec.EverSynced = everSynced != 0
	rec.ShouldDelete = shouldDelete != 0
	rec.CreateDate = decodeTime(created)
	rec.ModifyDate = decodeTime(modified)
	return &rec, nil
}

func encodePhotos(photos []domain.ProgressPhoto) (string, error) {
	rows := make([]photoRow, 0, len(photos))
	for _, p := range photos {
		rows = append(rows, photoRow{
			Kind:              string(p.Kind),
			PendingUpload:     p.PendingUpload,
			RemoteURL:         p.RemoteURL,
			MarkedForDeletion: p.MarkedForDeletion,
		})
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodePhotos(value string) ([]domain.ProgressPhoto, error) {
	if value == "" || value == "[]" {
		return nil, nil
	}
	var rows []photoRow
	if err := json.Unmarshal([]byte(value), &rows); err != nil {
		return nil, err
	}
	out := make([]domain.ProgressPhoto, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ProgressPhoto{
			Kind:              domain.PhotoKind(r.Kind),
			PendingUpload:     r.PendingUpload,
			RemoteURL:         r.RemoteURL,
			MarkedForDeletion: r.MarkedForDeletion,
		})
	}
	return out, nil
}
