package postgres

import (
	"context"

	"prochecka/internal/domain"
)

// AppendChatMessages inserts messages into the user's transcript preserving
// per-message role and timestamp order.
func (d *DB) AppendChatMessages(ctx context.Context, userID int64, msgs []domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chat_history(user_id, role, text, ts) VALUES($1, $2, $3, $4);")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx, userID, m.Role, m.Text, m.Timestamp.UTC()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListChatMessages returns the user's transcript oldest first, capped at the
// most recent limit messages.
func (d *DB) ListChatMessages(ctx context.Context, userID int64, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := d.sql.QueryContext(ctx,
		"SELECT role, text, ts FROM ("+
			" SELECT id, role, text, ts FROM chat_history WHERE user_id = $1 ORDER BY ts DESC, id DESC LIMIT $2"+
			") recent ORDER BY ts ASC, id ASC;",
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChatMessage, 0, limit)
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.Role, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
