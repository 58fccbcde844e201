package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greenloop/recycle-league/internal/domain/goal"
	qb "github.com/greenloop/recycle-league/internal/platform/querybuilder"
)

type GoalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) GetByID(ctx context.Context, goalID string) (goal.Goal, bool, error) {
	query, args, err := qb.Select("*").From("goals").
		Where(qb.Eq("id", goalID)).
		ToSQL()
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("build get goal by id query: %w", err)
	}

	var row goalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return goal.Goal{}, false, nil
		}
		return goal.Goal{}, false, fmt.Errorf("get goal by id: %w", err)
	}

	g, err := goalFromRow(row)
	if err != nil {
		return goal.Goal{}, false, err
	}
	return g, true, nil
}

func (r *GoalRepository) GetByUserStatus(ctx context.Context, userID string, kind goal.Kind, status goal.Status) (goal.Goal, bool, error) {
	query, args, err := qb.Select("*").From("goals").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("kind", string(kind)),
			qb.Eq("status", string(status)),
		).
		OrderBy("created_at").
		Limit(1).
		ToSQL()
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("build get goal by user status query: %w", err)
	}

	var row goalTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return goal.Goal{}, false, nil
		}
		return goal.Goal{}, false, fmt.Errorf("get goal by user status: %w", err)
	}

	g, err := goalFromRow(row)
	if err != nil {
		return goal.Goal{}, false, err
	}
	return g, true, nil
}

func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]goal.Goal, error) {
	query, args, err := qb.Select("*").From("goals").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list goals by user query: %w", err)
	}

	var rows []goalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list goals by user: %w", err)
	}

	out := make([]goal.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, nil
}

func (r *GoalRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]goal.Goal, error) {
	query, args, err := qb.Select("*").From("goals").
		Where(
			qb.Eq("status", string(goal.StatusActual)),
			qb.Lte("next_check", now),
		).
		OrderBy("next_check", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list due goals query: %w", err)
	}

	var rows []goalTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list due goals: %w", err)
	}

	out := make([]goal.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, nil
}

func (r *GoalRepository) Save(ctx context.Context, g goal.Goal) error {
	model, err := goalToInsertModel(g)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("goals", model, "")
	if err != nil {
		return fmt.Errorf("build insert goal query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}

	return nil
}

func (r *GoalRepository) Update(ctx context.Context, g goal.Goal) error {
	items, err := encodeGoalItems(g.Items)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("goals").
		Set("status", string(g.Status)).
		Set("progress", g.Progress).
		Set("next_check", g.NextCheck).
		Set("skip_days_left", g.SkipDaysLeft).
		Set("items", items).
		Set("difficulty", string(g.Difficulty)).
		Set("frequency", string(g.Frequency)).
		Set("multiplier", g.Multiplier).
		Set("updated_at", g.UpdatedAt).
		Where(qb.Eq("id", g.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update goal query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %s not found", g.ID)
	}

	return nil
}
