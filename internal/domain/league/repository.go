package league

import "context"

// Repository describes league configuration persistence needs.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByTier(ctx context.Context, tier int) (League, bool, error)
	Upsert(ctx context.Context, l League) error
}
