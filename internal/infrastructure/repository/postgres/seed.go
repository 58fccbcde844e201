package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenloop/recycle-league/internal/domain/league"
)

// SeedLeagues upserts the configured tier ladder. Safe to run on every
// boot: existing leagues are updated in place.
func SeedLeagues(ctx context.Context, db *sqlx.DB, leagues []league.League) error {
	repo := NewLeagueRepository(db)
	for _, l := range leagues {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("validate seed league %s: %w", l.ID, err)
		}
		if err := repo.Upsert(ctx, l); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}
	return nil
}
