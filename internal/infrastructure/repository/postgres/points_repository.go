package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenloop/recycle-league/internal/domain/points"
	qb "github.com/greenloop/recycle-league/internal/platform/querybuilder"
)

type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) Get(ctx context.Context, userID string) (points.Counters, bool, error) {
	query, args, err := qb.Select("*").From("user_points").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return points.Counters{}, false, fmt.Errorf("build get user points query: %w", err)
	}

	var row pointsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return points.Counters{}, false, nil
		}
		return points.Counters{}, false, fmt.Errorf("get user points: %w", err)
	}

	return points.Counters{
		UserID:    row.UserID,
		Recycle:   row.Recycle,
		Reuse:     row.Reuse,
		Reduce:    row.Reduce,
		Knowledge: row.Knowledge,
		Version:   row.Version,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

// UpsertWithVersion writes the counters guarded by the version the caller
// read. A fresh row inserts at version 1; an existing row updates only
// when the stored version still matches, bumping it by one. Zero affected
// rows means a concurrent writer won and the caller must re-read.
func (r *PointsRepository) UpsertWithVersion(ctx context.Context, c points.Counters) (bool, error) {
	if c.Version == 0 {
		model := pointsInsertModel{
			UserID:    c.UserID,
			Recycle:   c.Recycle,
			Reuse:     c.Reuse,
			Reduce:    c.Reduce,
			Knowledge: c.Knowledge,
			Version:   1,
			UpdatedAt: c.UpdatedAt,
		}

		query, args, err := qb.InsertModel("user_points", model, "ON CONFLICT (user_id) DO NOTHING")
		if err != nil {
			return false, fmt.Errorf("build insert user points query: %w", err)
		}

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return false, fmt.Errorf("insert user points: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("insert user points rows affected: %w", err)
		}
		return affected == 1, nil
	}

	query, args, err := qb.Update("user_points").
		Set("recycle_points", c.Recycle).
		Set("reuse_points", c.Reuse).
		Set("reduce_points", c.Reduce).
		Set("knowledge_points", c.Knowledge).
		SetExpr("version", "version + 1").
		Set("updated_at", c.UpdatedAt).
		Where(
			qb.Eq("user_id", c.UserID),
			qb.Eq("version", c.Version),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update user points query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update user points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update user points rows affected: %w", err)
	}

	return affected == 1, nil
}
