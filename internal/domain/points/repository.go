package points

import "context"

// Repository describes counter persistence needs from use cases.
type Repository interface {
	// Get returns the user's live counters. A missing row is reported via
	// the bool, never as a zero-valued record.
	Get(ctx context.Context, userID string) (Counters, bool, error)
	// UpsertWithVersion writes the counters when the stored version still
	// matches c.Version, bumping the version on success. A false return
	// means another writer got there first and the caller must re-read.
	UpsertWithVersion(ctx context.Context, c Counters) (bool, error)
}
