package memory

import (
	"context"
	"sync"

	"github.com/greenloop/recycle-league/internal/domain/points"
)

type PointsRepository struct {
	mu    sync.RWMutex
	items map[string]points.Counters
}

func NewPointsRepository() *PointsRepository {
	return &PointsRepository{
		items: make(map[string]points.Counters),
	}
}

func (r *PointsRepository) Get(_ context.Context, userID string) (points.Counters, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[userID]
	if !ok {
		return points.Counters{}, false, nil
	}

	return c, true, nil
}

// UpsertWithVersion mimics the compare-and-swap the SQL store does with a
// conditional UPDATE: the write lands only when c.Version matches what is
// stored (zero for a fresh row).
func (r *PointsRepository) UpsertWithVersion(_ context.Context, c points.Counters) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[c.UserID]
	if !ok {
		if c.Version != 0 {
			return false, nil
		}
		c.Version = 1
		r.items[c.UserID] = c
		return true, nil
	}

	if current.Version != c.Version {
		return false, nil
	}

	c.Version = current.Version + 1
	r.items[c.UserID] = c

	return true, nil
}
