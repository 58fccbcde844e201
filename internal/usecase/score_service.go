package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/points"
	"github.com/greenloop/recycle-league/internal/platform/logging"
)

const defaultScoreMaxRetries = 3

// RosterUpdater propagates a user's recomputed total into the roster entry
// of their active session, if one exists.
type RosterUpdater interface {
	RefreshEntry(ctx context.Context, userID string, counters points.Counters, total int, when time.Time) error
}

// ScoreService folds point deltas into a user's counters and keeps the
// weighted total in sync with the active session roster.
type ScoreService struct {
	pointsRepo points.Repository
	roster     RosterUpdater
	logger     *logging.Logger
	maxRetries int
	now        func() time.Time
}

func NewScoreService(pointsRepo points.Repository, roster RosterUpdater, maxRetries int, logger *logging.Logger) *ScoreService {
	if maxRetries < 1 {
		maxRetries = defaultScoreMaxRetries
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoreService{
		pointsRepo: pointsRepo,
		roster:     roster,
		logger:     logger,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Total returns the user's current weighted total. A user with no counter
// row yet scores zero.
func (s *ScoreService) Total(ctx context.Context, userID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.Total")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	counters, exists, err := s.pointsRepo.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get counters: %w", err)
	}
	if !exists {
		return 0, nil
	}

	return points.CalculateTotal(counters), nil
}

// Counters returns the raw category counters for presentation callers.
func (s *ScoreService) Counters(ctx context.Context, userID string) (points.Counters, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.Counters")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return points.Counters{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	counters, exists, err := s.pointsRepo.Get(ctx, userID)
	if err != nil {
		return points.Counters{}, fmt.Errorf("get counters: %w", err)
	}
	if !exists {
		return points.Counters{UserID: userID}, nil
	}

	return counters, nil
}

// ApplyDelta applies a point delta as an atomic read-modify-write on the
// user's counter row, retrying a bounded number of times on version
// conflicts before surfacing ErrConflict. After a successful write the
// recomputed total is pushed into the user's active session roster; a user
// between seasons, or one whose session stopped accepting events, keeps
// the counters only — once the counter write lands the call succeeds.
func (s *ScoreService) ApplyDelta(ctx context.Context, userID string, delta points.Delta, when time.Time) (points.Counters, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.ApplyDelta")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return points.Counters{}, 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if when.IsZero() {
		when = s.now().UTC()
	}

	var updated points.Counters
	applied := false
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		current, exists, err := s.pointsRepo.Get(ctx, userID)
		if err != nil {
			return points.Counters{}, 0, fmt.Errorf("get counters: %w", err)
		}
		if !exists {
			current = points.Counters{UserID: userID}
		}

		updated = current.Apply(delta)
		updated.UpdatedAt = when

		ok, err := s.pointsRepo.UpsertWithVersion(ctx, updated)
		if err != nil {
			return points.Counters{}, 0, fmt.Errorf("upsert counters: %w", err)
		}
		if ok {
			updated.Version = current.Version + 1
			applied = true
			break
		}
		s.logger.DebugContext(ctx, "counter version conflict, retrying",
			"user_id", userID,
			"attempt", attempt+1,
		)
	}
	if !applied {
		return points.Counters{}, 0, fmt.Errorf("%w: counters for user=%s after %d attempts", ErrConflict, userID, s.maxRetries)
	}

	total := points.CalculateTotal(updated)
	if s.roster != nil {
		// The counter write is committed at this point. A failed roster
		// refresh must not fail the caller: a retry would apply the delta
		// twice. Counters are the source of truth and the roster is
		// rebuilt from them at the next session start.
		if err := s.roster.RefreshEntry(ctx, userID, updated, total, when); err != nil {
			if errors.Is(err, ErrInvalidState) {
				s.logger.WarnContext(ctx, "scoring event outside open session window, roster not updated",
					"user_id", userID,
					"error", err,
				)
			} else {
				s.logger.ErrorContext(ctx, "roster refresh failed after counter update",
					"user_id", userID,
					"error", err,
				)
			}
		}
	}

	return updated, total, nil
}
