package memory

import "github.com/greenloop/recycle-league/internal/domain/league"

// SeedLeagues is the default tier ladder used when the service runs
// without a database. Tier 1 is the top of the ladder.
func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:                "league-gold",
			Name:              "Gold",
			Tier:              1,
			MembersCount:      10,
			PromotedCount:     0,
			RelegatedCount:    2,
			PromotionEnabled:  false,
			RelegationEnabled: true,
		},
		{
			ID:                "league-silver",
			Name:              "Silver",
			Tier:              2,
			MembersCount:      10,
			PromotedCount:     3,
			RelegatedCount:    2,
			PromotionEnabled:  true,
			RelegationEnabled: true,
		},
		{
			ID:                "league-bronze",
			Name:              "Bronze",
			Tier:              3,
			MembersCount:      10,
			PromotedCount:     3,
			RelegatedCount:    0,
			PromotionEnabled:  true,
			RelegationEnabled: false,
		},
	}
}
