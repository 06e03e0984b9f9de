package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"prochecka/internal/domain"
)

// GetProgress returns the completed item ids for (user, kind, day). A day
// with no record is an empty checklist, not an error.
func (d *DB) GetProgress(ctx context.Context, userID int64, kind domain.ProgressKind, localDay string) ([]string, error) {
	var blob []byte
	err := d.sql.QueryRowContext(ctx,
		"SELECT completed_ids FROM progress_logs WHERE user_id = $1 AND kind = $2 AND day = $3;",
		userID, string(kind), localDay,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(blob, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetProgress upserts the completed item ids for (user, kind, day).
func (d *DB) SetProgress(ctx context.Context, userID int64, kind domain.ProgressKind, localDay string, completedIDs []string) error {
	blob, err := json.Marshal(completedIDs)
	if err != nil {
		return err
	}

	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO progress_logs(user_id, kind, day, completed_ids, updated_at)"+
			" VALUES($1, $2, $3, $4, $5)"+
			" ON CONFLICT (user_id, kind, day) DO UPDATE SET completed_ids = EXCLUDED.completed_ids, updated_at = EXCLUDED.updated_at;",
		userID, string(kind), localDay, blob, time.Now().UTC(),
	)
	return err
}
