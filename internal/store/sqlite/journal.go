package sqlite

import (
	"context"
	"encoding/json"

	"example.com/fitsync/internal/domain"
)

// AppendJournal persists one orchestrator run. Journal rows are append-only.
func (q *Queries) AppendJournal(ctx context.Context, entry domain.JournalEntry) error {
	stats, err := json.Marshal(entry.Stats)
	if err != nil {
		return err
	}
	errs, err := json.Marshal(entry.Errors)
	if err != nil {
		return err
	}

	_, err = q.db.ExecContext(ctx,
		`INSERT INTO journal (run_id, started_at, finished_at, result, stats, errors) VALUES (?,?,?,?,?,?)`,
		entry.RunID,
		encodeTime(entry.StartedAt),
		encodeTime(entry.FinishedAt),
		string(entry.Result),
		string(stats),
		string(errs),
	)
	return err
}

// ListJournal returns the most recent runs, newest first.
func (q *Queries) ListJournal(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, result, stats, errors
         FROM journal ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JournalEntry
	for rows.Next() {
		var (
			entry              domain.JournalEntry
			started, finished  int64
			result, stats, raw string
		)
		if err := rows.Scan(&entry.RunID, &started, &finished, &result, &stats, &raw); err != nil {
			return nil, err
		}
		entry.StartedAt = decodeTime(started)
		entry.FinishedAt = decodeTime(finished)
		entry.Result = domain.SyncResult(result)
		if err := json.Unmarshal([]byte(stats), &entry.Stats); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &entry.Errors); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
