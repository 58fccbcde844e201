package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenloop/recycle-league/internal/domain/league"
	qb "github.com/greenloop/recycle-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("tier").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}

	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("id", leagueID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) GetByTier(ctx context.Context, tier int) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("tier", tier)).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by tier query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by tier: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, l league.League) error {
	model := leagueInsertModel{
		ID:                l.ID,
		Name:              l.Name,
		Tier:              l.Tier,
		MembersCount:      l.MembersCount,
		PromotedCount:     l.PromotedCount,
		RelegatedCount:    l.RelegatedCount,
		PromotionEnabled:  l.PromotionEnabled,
		RelegationEnabled: l.RelegationEnabled,
	}

	query, args, err := qb.InsertModel("leagues", model, `ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		tier = EXCLUDED.tier,
		members_count = EXCLUDED.members_count,
		promoted_count = EXCLUDED.promoted_count,
		relegated_count = EXCLUDED.relegated_count,
		promotion_enabled = EXCLUDED.promotion_enabled,
		relegation_enabled = EXCLUDED.relegation_enabled,
		updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert league query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert league: %w", err)
	}

	return nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:                row.ID,
		Name:              row.Name,
		Tier:              row.Tier,
		MembersCount:      row.MembersCount,
		PromotedCount:     row.PromotedCount,
		RelegatedCount:    row.RelegatedCount,
		PromotionEnabled:  row.PromotionEnabled,
		RelegationEnabled: row.RelegationEnabled,
	}
}
