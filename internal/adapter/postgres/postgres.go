// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements the domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS guest_sessions (session_token TEXT PRIMARY KEY, assessment_data JSONB NOT NULL DEFAULT '{}', risk_score INT, converted_to_user_id BIGINT REFERENCES users(id), expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_guest_sessions_expires_at ON guest_sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS action_plans (id BIGSERIAL PRIMARY KEY, user_id BIGINT REFERENCES users(id) ON DELETE CASCADE, guest_token TEXT REFERENCES guest_sessions(session_token) ON DELETE CASCADE, risk_score INT NOT NULL, factor TEXT NOT NULL, plan_message TEXT NOT NULL, tasks JSONB NOT NULL DEFAULT '[]', updated_at TIMESTAMPTZ NOT NULL, CHECK (num_nonnulls(user_id, guest_token) = 1));",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_action_plans_user ON action_plans(user_id) WHERE user_id IS NOT NULL;",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_action_plans_guest ON action_plans(guest_token) WHERE guest_token IS NOT NULL;",
		"CREATE TABLE IF NOT EXISTS chat_history (id BIGSERIAL PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, role TEXT NOT NULL, text TEXT NOT NULL, ts TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_chat_history_user_ts ON chat_history(user_id, ts);",
		"CREATE TABLE IF NOT EXISTS progress_logs (user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, kind TEXT NOT NULL CHECK(kind IN ('diet','exercise')), day TEXT NOT NULL, completed_ids JSONB NOT NULL DEFAULT '[]', updated_at TIMESTAMPTZ NOT NULL, PRIMARY KEY(user_id, kind, day));",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
