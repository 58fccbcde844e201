package usecase

import (
	"context"
	"fmt"

	"github.com/greenloop/recycle-league/internal/domain/league"
	"github.com/greenloop/recycle-league/internal/platform/logging"
)

// LeagueService exposes the administrative league configuration surface.
type LeagueService struct {
	leagueRepo league.Repository
	logger     *logging.Logger
}

func NewLeagueService(leagueRepo league.Repository, logger *logging.Logger) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}

	return &LeagueService{
		leagueRepo: leagueRepo,
		logger:     logger,
	}
}

func (s *LeagueService) List(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.List")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

// Upsert writes a league configuration. A tier can only be held by one
// league, so moving a league onto an occupied tier is rejected.
func (s *LeagueService) Upsert(ctx context.Context, l league.League) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Upsert")
	defer span.End()

	if err := l.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, taken, err := s.leagueRepo.GetByTier(ctx, l.Tier)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by tier: %w", err)
	}
	if taken && existing.ID != l.ID {
		return league.League{}, fmt.Errorf("%w: tier %d already held by league=%s", ErrInvalidState, l.Tier, existing.ID)
	}

	if err := s.leagueRepo.Upsert(ctx, l); err != nil {
		return league.League{}, fmt.Errorf("upsert league: %w", err)
	}
	s.logger.InfoContext(ctx, "league configuration saved", "league_id", l.ID, "tier", l.Tier)

	return l, nil
}
