package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/goal"
)

type GoalRepository struct {
	mu    sync.RWMutex
	items map[string]goal.Goal
}

func NewGoalRepository() *GoalRepository {
	return &GoalRepository{
		items: make(map[string]goal.Goal),
	}
}

func (r *GoalRepository) GetByID(_ context.Context, goalID string) (goal.Goal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[goalID]
	if !ok {
		return goal.Goal{}, false, nil
	}

	return cloneGoal(g), true, nil
}

func (r *GoalRepository) GetByUserStatus(_ context.Context, userID string, kind goal.Kind, status goal.Status) (goal.Goal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.items {
		if g.UserID == userID && g.Kind == kind && g.Status == status {
			return cloneGoal(g), true, nil
		}
	}

	return goal.Goal{}, false, nil
}

func (r *GoalRepository) ListByUser(_ context.Context, userID string) ([]goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]goal.Goal, 0)
	for _, g := range r.items {
		if g.UserID == userID {
			out = append(out, cloneGoal(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *GoalRepository) ListDue(_ context.Context, now time.Time, limit int) ([]goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]goal.Goal, 0)
	for _, g := range r.items {
		if g.Status != goal.StatusActual || g.NextCheck.After(now) {
			continue
		}
		out = append(out, cloneGoal(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextCheck.Equal(out[j].NextCheck) {
			return out[i].NextCheck.Before(out[j].NextCheck)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *GoalRepository) Save(_ context.Context, g goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[g.ID]; ok {
		return fmt.Errorf("goal %s already exists", g.ID)
	}
	r.items[g.ID] = cloneGoal(g)

	return nil
}

func (r *GoalRepository) Update(_ context.Context, g goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[g.ID]; !ok {
		return fmt.Errorf("goal %s not found", g.ID)
	}
	r.items[g.ID] = cloneGoal(g)

	return nil
}

// cloneGoal copies the items slice so callers never mutate stored state
// through a shared backing array.
func cloneGoal(g goal.Goal) goal.Goal {
	if len(g.Items) > 0 {
		g.Items = append([]goal.Item(nil), g.Items...)
	}
	return g
}
