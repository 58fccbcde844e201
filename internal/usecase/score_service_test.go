package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/points"
	"github.com/greenloop/recycle-league/internal/infrastructure/repository/memory"
	"github.com/greenloop/recycle-league/internal/platform/logging"
)

// stubIDGen hands out sequential ids for deterministic assertions.
type stubIDGen struct {
	prefix string
	next   int
}

func (g *stubIDGen) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next), nil
}

// conflictingPointsRepo never accepts a write, simulating a permanently
// contended counter row.
type conflictingPointsRepo struct{}

func (conflictingPointsRepo) Get(context.Context, string) (points.Counters, bool, error) {
	return points.Counters{}, false, nil
}

func (conflictingPointsRepo) UpsertWithVersion(context.Context, points.Counters) (bool, error) {
	return false, nil
}

func TestScoreService_TotalForUnknownUserIsZero(t *testing.T) {
	t.Parallel()

	svc := NewScoreService(memory.NewPointsRepository(), nil, 3, logging.NewNop())

	total, err := svc.Total(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected zero total for unknown user, got %d", total)
	}
}

func TestScoreService_ApplyDeltaComputesWeightedTotal(t *testing.T) {
	t.Parallel()

	svc := NewScoreService(memory.NewPointsRepository(), nil, 3, logging.NewNop())
	ctx := context.Background()
	when := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	counters, total, err := svc.ApplyDelta(ctx, "user-1", points.Delta{
		Recycle:   10,
		Reuse:     5,
		Knowledge: 2,
	}, when)
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}

	// 10 + 5 + 2*0.85 = 16.7, rounded to 17.
	if total != 17 {
		t.Fatalf("unexpected total: got=%d want=17", total)
	}
	if counters.Recycle != 10 || counters.Reuse != 5 || counters.Knowledge != 2 {
		t.Fatalf("unexpected counters: %+v", counters)
	}
	if counters.Version != 1 {
		t.Fatalf("unexpected version: %d", counters.Version)
	}

	got, err := svc.Total(ctx, "user-1")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if got != 17 {
		t.Fatalf("stored total diverged: got=%d want=17", got)
	}
}

func TestScoreService_ApplyDeltaIsDeterministic(t *testing.T) {
	t.Parallel()

	when := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	delta := points.Delta{Recycle: 7, Reduce: 10, Knowledge: 3}

	first := NewScoreService(memory.NewPointsRepository(), nil, 3, logging.NewNop())
	second := NewScoreService(memory.NewPointsRepository(), nil, 3, logging.NewNop())

	_, totalA, err := first.ApplyDelta(context.Background(), "user-1", delta, when)
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	_, totalB, err := second.ApplyDelta(context.Background(), "user-1", delta, when)
	if err != nil {
		t.Fatalf("apply delta: %v", err)
	}
	if totalA != totalB {
		t.Fatalf("same counters produced different totals: %d vs %d", totalA, totalB)
	}
}

func TestScoreService_ApplyDeltaFloorsAtZero(t *testing.T) {
	t.Parallel()

	svc := NewScoreService(memory.NewPointsRepository(), nil, 3, logging.NewNop())
	ctx := context.Background()
	when := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	if _, _, err := svc.ApplyDelta(ctx, "user-1", points.Delta{Recycle: 3}, when); err != nil {
		t.Fatalf("apply delta: %v", err)
	}

	counters, total, err := svc.ApplyDelta(ctx, "user-1", points.Delta{Recycle: -10}, when)
	if err != nil {
		t.Fatalf("apply negative delta: %v", err)
	}
	if counters.Recycle != 0 {
		t.Fatalf("expected recycle floored at zero, got %d", counters.Recycle)
	}
	if total != 0 {
		t.Fatalf("unexpected total: %d", total)
	}
}

// rejectingRoster refuses every refresh, standing in for a session that
// stopped accepting scoring events mid-close.
type rejectingRoster struct {
	err   error
	calls int
}

func (r *rejectingRoster) RefreshEntry(context.Context, string, points.Counters, int, time.Time) error {
	r.calls++
	return r.err
}

func TestScoreService_ApplyDeltaSucceedsWhenRosterRejectsEvent(t *testing.T) {
	t.Parallel()

	roster := &rejectingRoster{err: fmt.Errorf("%w: session no longer accepts scoring events", ErrInvalidState)}
	svc := NewScoreService(memory.NewPointsRepository(), roster, 3, logging.NewNop())
	ctx := context.Background()
	when := time.Date(2026, time.March, 16, 9, 0, 0, 0, time.UTC)

	counters, total, err := svc.ApplyDelta(ctx, "user-1", points.Delta{Recycle: 5}, when)
	if err != nil {
		t.Fatalf("apply delta with rejected roster refresh: %v", err)
	}
	if roster.calls != 1 {
		t.Fatalf("expected one refresh attempt, got %d", roster.calls)
	}
	if counters.Recycle != 5 || total != 5 {
		t.Fatalf("committed counters not returned: counters=%+v total=%d", counters, total)
	}

	// The write landed exactly once: a follow-up read sees 5, not 10.
	stored, err := svc.Total(ctx, "user-1")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if stored != 5 {
		t.Fatalf("stored total diverged: got=%d want=5", stored)
	}
}

func TestScoreService_ApplyDeltaSucceedsWhenRosterRefreshFails(t *testing.T) {
	t.Parallel()

	roster := &rejectingRoster{err: errors.New("entry store unavailable")}
	svc := NewScoreService(memory.NewPointsRepository(), roster, 3, logging.NewNop())

	counters, _, err := svc.ApplyDelta(context.Background(), "user-1", points.Delta{Reuse: 4}, time.Time{})
	if err != nil {
		t.Fatalf("apply delta with failing roster refresh: %v", err)
	}
	if counters.Reuse != 4 {
		t.Fatalf("committed counters not returned: %+v", counters)
	}
}

func TestScoreService_ApplyDeltaGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	svc := NewScoreService(conflictingPointsRepo{}, nil, 2, logging.NewNop())

	_, _, err := svc.ApplyDelta(context.Background(), "user-1", points.Delta{Recycle: 1}, time.Time{})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestScoreService_RejectsEmptyUserID(t *testing.T) {
	t.Parallel()

	svc := NewScoreService(memory.NewPointsRepository(), nil, 3, logging.NewNop())

	if _, err := svc.Total(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.ApplyDelta(context.Background(), "", points.Delta{Recycle: 1}, time.Time{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
