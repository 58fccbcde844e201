package goal

import (
	"context"
	"time"
)

// Repository describes goal persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, goalID string) (Goal, bool, error)
	// GetByUserStatus returns the user's goal of the given kind and status.
	// The singleton invariants (one ACTUAL, one NEXT per user and kind) are
	// enforced by the use case layer; the repository only reports what is
	// stored.
	GetByUserStatus(ctx context.Context, userID string, kind Kind, status Status) (Goal, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Goal, error)
	// ListDue returns ACTUAL goals whose next check elapsed at or before now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]Goal, error)
	Save(ctx context.Context, g Goal) error
	Update(ctx context.Context, g Goal) error
}
