package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"prochecka/internal/domain"
)

// CreateGuestSession inserts a fresh anonymous session seeded with the
// current blob format version.
func (d *DB) CreateGuestSession(ctx context.Context, token string, expiresAt time.Time) (*domain.GuestSession, error) {
	blob, err := json.Marshal(domain.AssessmentData{Version: 1})
	if err != nil {
		return nil, err
	}
	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO guest_sessions(session_token, assessment_data, expires_at, created_at)"+
			" VALUES($1, $2, $3, $4)"+
			" RETURNING session_token, assessment_data, risk_score, converted_to_user_id, expires_at, created_at;",
		token, blob, expiresAt.UTC(), time.Now().UTC(),
	)
	return scanGuestSession(row)
}

// GetGuestSession returns the session for token, or nil if none exists.
func (d *DB) GetGuestSession(ctx context.Context, token string) (*domain.GuestSession, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT session_token, assessment_data, risk_score, converted_to_user_id, expires_at, created_at"+
			" FROM guest_sessions WHERE session_token = $1;",
		token,
	)
	return scanGuestSession(row)
}

// UpdateGuestSession replaces the assessment data and denormalized risk
// score of a live, unconverted session.
func (d *DB) UpdateGuestSession(ctx context.Context, token string, data domain.AssessmentData, riskScore *int) (*domain.GuestSession, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	row := d.sql.QueryRowContext(ctx,
		"UPDATE guest_sessions SET assessment_data = $2, risk_score = $3"+
			" WHERE session_token = $1 AND converted_to_user_id IS NULL AND expires_at > $4"+
			" RETURNING session_token, assessment_data, risk_score, converted_to_user_id, expires_at, created_at;",
		token, blob, riskScore, time.Now().UTC(),
	)
	sess, err := scanGuestSession(row)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// ClaimConversion sets converted_to_user_id only if it is still unset.
// Returns false when another conversion already claimed the session.
func (d *DB) ClaimConversion(ctx context.Context, token string, userID int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE guest_sessions SET converted_to_user_id = $2"+
			" WHERE session_token = $1 AND converted_to_user_id IS NULL;",
		token, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanGuestSession(row *sql.Row) (*domain.GuestSession, error) {
	var (
		s         domain.GuestSession
		blob      []byte
		riskScore sql.NullInt64
		userID    sql.NullInt64
	)
	if err := row.Scan(&s.Token, &blob, &riskScore, &userID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(blob, &s.Data); err != nil {
		return nil, err
	}
	if riskScore.Valid {
		v := int(riskScore.Int64)
		s.RiskScore = &v
	}
	if userID.Valid {
		v := userID.Int64
		s.ConvertedToUserID = &v
	}
	return &s, nil
}
