package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"prochecka/internal/domain"
)

// ownerClause returns the column and key an owner's plan row is keyed by.
func ownerClause(owner domain.Owner) (string, any) {
	if owner.IsUser() {
		return "user_id", owner.UserID
	}
	return "guest_token", owner.GuestToken
}

// GetPlan returns the owner's action plan, or nil if none exists.
func (d *DB) GetPlan(ctx context.Context, owner domain.Owner) (*domain.ActionPlan, error) {
	col, key := ownerClause(owner)
	row := d.sql.QueryRowContext(ctx,
		"SELECT risk_score, factor, plan_message, tasks, updated_at FROM action_plans WHERE "+col+" = $1;",
		key,
	)
	return scanPlan(row)
}

// UpsertPlan stores the plan for the owner, replacing any existing one.
func (d *DB) UpsertPlan(ctx context.Context, owner domain.Owner, plan domain.ActionPlan) (*domain.ActionPlan, error) {
	tasks, err := json.Marshal(plan.Tasks)
	if err != nil {
		return nil, err
	}

	col, key := ownerClause(owner)
	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO action_plans("+col+", risk_score, factor, plan_message, tasks, updated_at)"+
			" VALUES($1, $2, $3, $4, $5, $6)"+
			" ON CONFLICT ("+col+") WHERE "+col+" IS NOT NULL"+
			" DO UPDATE SET risk_score = EXCLUDED.risk_score, factor = EXCLUDED.factor, plan_message = EXCLUDED.plan_message, tasks = EXCLUDED.tasks, updated_at = EXCLUDED.updated_at"+
			" RETURNING risk_score, factor, plan_message, tasks, updated_at;",
		key, plan.RiskScore, string(plan.Factor), plan.PlanMessage, tasks, plan.UpdatedAt.UTC(),
	)
	return scanPlan(row)
}

// SetTaskCompleted flips one task's completed flag inside the stored jsonb
// array in a single statement, so concurrent toggles of different tasks do
// not overwrite each other.
func (d *DB) SetTaskCompleted(ctx context.Context, owner domain.Owner, taskID string, completed bool) (*domain.ActionPlan, error) {
	col, key := ownerClause(owner)
	row := d.sql.QueryRowContext(ctx,
		"UPDATE action_plans SET tasks = ("+
			" SELECT jsonb_agg(CASE WHEN t->>'id' = $2 THEN jsonb_set(t, '{completed}', to_jsonb($3::boolean)) ELSE t END)"+
			" FROM jsonb_array_elements(tasks) AS t)"+
			" WHERE "+col+" = $1 AND tasks @> jsonb_build_array(jsonb_build_object('id', $2::text))"+
			" RETURNING risk_score, factor, plan_message, tasks, updated_at;",
		key, taskID, completed,
	)
	plan, err := scanPlan(row)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}
	return plan, nil
}

// CreateUserPlanIfAbsent inserts a plan for the user only if none exists.
func (d *DB) CreateUserPlanIfAbsent(ctx context.Context, userID int64, plan domain.ActionPlan) (bool, error) {
	tasks, err := json.Marshal(plan.Tasks)
	if err != nil {
		return false, err
	}

	res, err := d.sql.ExecContext(ctx,
		"INSERT INTO action_plans(user_id, risk_score, factor, plan_message, tasks, updated_at)"+
			" VALUES($1, $2, $3, $4, $5, $6)"+
			" ON CONFLICT (user_id) WHERE user_id IS NOT NULL DO NOTHING;",
		userID, plan.RiskScore, string(plan.Factor), plan.PlanMessage, tasks, plan.UpdatedAt.UTC(),
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

func scanPlan(row *sql.Row) (*domain.ActionPlan, error) {
	var (
		p      domain.ActionPlan
		factor string
		tasks  []byte
		at     time.Time
	)
	if err := row.Scan(&p.RiskScore, &factor, &p.PlanMessage, &tasks, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(tasks, &p.Tasks); err != nil {
		return nil, err
	}
	p.Factor = domain.Factor(factor)
	p.UpdatedAt = at
	return &p, nil
}
