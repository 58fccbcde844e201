package usecase

import (
	"sort"

	"github.com/greenloop/recycle-league/internal/domain/league"
	"github.com/greenloop/recycle-league/internal/domain/session"
)

type MovementReason string

const (
	MovementPromoted  MovementReason = "promoted"
	MovementRelegated MovementReason = "relegated"
	MovementStayed    MovementReason = "stayed"
)

// Movement assigns one roster member a target tier for the next session.
type Movement struct {
	UserID   string
	FromTier int
	ToTier   int
	Reason   MovementReason
}

// PromotionResult is the full tier-movement decision for a closed session.
// Capped flags that the configured movement counts exceeded the roster and
// were shrunk to keep at least one member in place.
type PromotionResult struct {
	Movements []Movement
	Capped    bool
}

// rankEntries orders a frozen roster for movement decisions: total
// descending, ties broken by earliest join time, then user id. The order
// is fully deterministic so re-running a close yields identical results.
func rankEntries(entries []session.Entry) []session.Entry {
	ranked := make([]session.Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	return ranked
}

// ComputeMovements ranks the roster and decides tier movement per the
// league configuration. worstTier bounds relegation; promotion never moves
// above tier 1.
func ComputeMovements(cfg league.League, entries []session.Entry, worstTier int) PromotionResult {
	if len(entries) == 0 {
		return PromotionResult{}
	}
	if worstTier < cfg.Tier {
		worstTier = cfg.Tier
	}

	promoted := 0
	if cfg.PromotionEnabled {
		promoted = cfg.PromotedCount
	}
	relegated := 0
	if cfg.RelegationEnabled {
		relegated = cfg.RelegatedCount
	}

	// Never move the entire roster: shrink relegation first, then
	// promotion, until one member stays put.
	capped := false
	for promoted+relegated >= len(entries) {
		capped = true
		if relegated > 0 {
			relegated--
			continue
		}
		if promoted > 0 {
			promoted--
			continue
		}
		break
	}

	ranked := rankEntries(entries)
	movements := make([]Movement, 0, len(ranked))
	for idx, entry := range ranked {
		movement := Movement{
			UserID:   entry.UserID,
			FromTier: cfg.Tier,
			ToTier:   cfg.Tier,
			Reason:   MovementStayed,
		}

		switch {
		case idx < promoted && cfg.Tier > 1:
			movement.ToTier = cfg.Tier - 1
			movement.Reason = MovementPromoted
		case idx >= len(ranked)-relegated && cfg.Tier < worstTier:
			movement.ToTier = cfg.Tier + 1
			movement.Reason = MovementRelegated
		}

		movements = append(movements, movement)
	}

	return PromotionResult{Movements: movements, Capped: capped}
}
