package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/greenloop/recycle-league/internal/domain/goal"
	"github.com/greenloop/recycle-league/internal/domain/points"
	"github.com/greenloop/recycle-league/internal/platform/id"
	"github.com/greenloop/recycle-league/internal/platform/logging"
)

const (
	// Base fractional progress a completed project adds to a recycle goal
	// before the goal multiplier is applied.
	projectProgressIncrement = 0.1

	// Knowledge points granted for a finished article when the article
	// carries no explicit award.
	defaultArticleKnowledgePoints = 2

	defaultRolloverBatchSize = 200
	defaultJobMaxWorkers     = 8
)

// ProjectCompletion is the inbound event emitted when a user finishes a
// recycling project. Materials maps material type to consumed quantity.
type ProjectCompletion struct {
	ProjectID string
	Materials map[string]int
}

// ArticleFinish is the inbound event emitted when a user finishes reading
// an article. Points, when positive, overrides the default knowledge award.
type ArticleFinish struct {
	ArticleID string
	Points    int
}

// CompletionResult bundles what a processed project completion produced.
type CompletionResult struct {
	RecycleProgress float64
	ReusePoints     int
	TotalPoints     int
	OccurredAt      time.Time
}

// RolloverResult reports a bulk goal-rollover job run.
type RolloverResult struct {
	Processed int
	Promoted  int
	Failed    int
}

// GoalStatus is the presentation view of a user's goal slate.
type GoalStatus struct {
	Active []goal.Goal
	Queued []goal.Goal
}

// GoalService owns per-user goal state and converts behavioral events into
// point deltas. It is the only producer of deltas consumed by ScoreService.
type GoalService struct {
	goalRepo          goal.Repository
	scores            *ScoreService
	idGen             id.Generator
	logger            *logging.Logger
	projectBasePoints int
	maxWorkers        int
	now               func() time.Time
}

func NewGoalService(
	goalRepo goal.Repository,
	scores *ScoreService,
	idGen id.Generator,
	projectBasePoints int,
	maxWorkers int,
	logger *logging.Logger,
) *GoalService {
	if maxWorkers < 1 {
		maxWorkers = defaultJobMaxWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &GoalService{
		goalRepo:          goalRepo,
		scores:            scores,
		idGen:             idGen,
		logger:            logger,
		projectBasePoints: projectBasePoints,
		maxWorkers:        maxWorkers,
		now:               time.Now,
	}
}

// CreateRecycleGoal creates or queues a recycling goal for the user. The
// goal starts at zero progress; recycling events drive it from there.
func (s *GoalService) CreateRecycleGoal(ctx context.Context, userID, difficultyRaw, frequencyRaw string) (goal.Goal, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.CreateRecycleGoal")
	defer span.End()

	return s.createGoal(ctx, userID, goal.KindRecycle, difficultyRaw, frequencyRaw, nil)
}

// CreateReduceGoal creates or queues a reduction goal with its material
// sub-targets for the user.
func (s *GoalService) CreateReduceGoal(ctx context.Context, userID, difficultyRaw, frequencyRaw string, items []goal.Item) (goal.Goal, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.CreateReduceGoal")
	defer span.End()

	return s.createGoal(ctx, userID, goal.KindReduce, difficultyRaw, frequencyRaw, items)
}

// createGoal runs the shared slate logic for both kinds: with no ACTUAL
// goal of the kind the new goal activates immediately; otherwise it is
// queued as the single NEXT goal, overwriting an already-queued one in
// place so the user never holds two NEXT rows. The bool reports the
// "activated" case.
func (s *GoalService) createGoal(ctx context.Context, userID string, kind goal.Kind, difficultyRaw, frequencyRaw string, items []goal.Item) (goal.Goal, bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return goal.Goal{}, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	difficulty, err := goal.ParseDifficulty(difficultyRaw)
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	frequency, err := goal.ParseFrequency(frequencyRaw)
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	next := goal.Goal{
		UserID:     userID,
		Kind:       kind,
		Difficulty: difficulty,
		Frequency:  frequency,
		Progress:   0,
		Multiplier: goal.MultiplierFor(difficulty, frequency),
		NextCheck:  goal.NextCheckFrom(now, frequency),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if kind == goal.KindReduce {
		next.SkipDaysLeft = goal.SkipDaysFor(frequency)
		next.Items = normalizeItems(items)
	}

	_, hasActual, err := s.goalRepo.GetByUserStatus(ctx, userID, kind, goal.StatusActual)
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("get actual %s goal: %w", kind, err)
	}

	if !hasActual {
		next.Status = goal.StatusActual
		if err := next.Validate(); err != nil {
			return goal.Goal{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		goalID, err := s.idGen.NewID()
		if err != nil {
			return goal.Goal{}, false, fmt.Errorf("generate goal id: %w", err)
		}
		next.ID = goalID
		if err := s.goalRepo.Save(ctx, next); err != nil {
			return goal.Goal{}, false, fmt.Errorf("save %s goal: %w", kind, err)
		}
		return next, true, nil
	}

	next.Status = goal.StatusNext
	if err := next.Validate(); err != nil {
		return goal.Goal{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	queued, hasQueued, err := s.goalRepo.GetByUserStatus(ctx, userID, kind, goal.StatusNext)
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("get queued %s goal: %w", kind, err)
	}
	if hasQueued {
		// Overwrite the existing NEXT row rather than adding a second one.
		next.ID = queued.ID
		next.CreatedAt = queued.CreatedAt
		if err := s.goalRepo.Update(ctx, next); err != nil {
			return goal.Goal{}, false, fmt.Errorf("overwrite queued %s goal: %w", kind, err)
		}
		return next, false, nil
	}

	goalID, err := s.idGen.NewID()
	if err != nil {
		return goal.Goal{}, false, fmt.Errorf("generate goal id: %w", err)
	}
	next.ID = goalID
	if err := s.goalRepo.Save(ctx, next); err != nil {
		return goal.Goal{}, false, fmt.Errorf("save queued %s goal: %w", kind, err)
	}

	return next, false, nil
}

// ProcessProjectCompletion advances the user's active goals for a finished
// project and produces the resulting point delta: the configured baseline
// award plus reuse points for reduce items that newly met their target.
func (s *GoalService) ProcessProjectCompletion(ctx context.Context, userID string, event ProjectCompletion) (CompletionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.ProcessProjectCompletion")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CompletionResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(event.ProjectID) == "" {
		return CompletionResult{}, fmt.Errorf("%w: project id is required", ErrInvalidInput)
	}

	now := s.now().UTC()

	recycleGoal, exists, err := s.goalRepo.GetByUserStatus(ctx, userID, goal.KindRecycle, goal.StatusActual)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("get active recycle goal: %w", err)
	}
	if !exists {
		return CompletionResult{}, fmt.Errorf("%w: active recycle goal for user=%s", ErrNotFound, userID)
	}

	recycleGoal.Progress = advanceProgress(recycleGoal.Progress, recycleGoal.Multiplier)
	recycleGoal.UpdatedAt = now
	if err := s.goalRepo.Update(ctx, recycleGoal); err != nil {
		return CompletionResult{}, fmt.Errorf("update recycle goal: %w", err)
	}

	reusePoints := 0
	reduceGoal, hasReduce, err := s.goalRepo.GetByUserStatus(ctx, userID, goal.KindReduce, goal.StatusActual)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("get active reduce goal: %w", err)
	}
	if hasReduce {
		reusePoints = advanceReduceItems(&reduceGoal, event.Materials)
		reduceGoal.UpdatedAt = now
		if err := s.goalRepo.Update(ctx, reduceGoal); err != nil {
			return CompletionResult{}, fmt.Errorf("update reduce goal: %w", err)
		}
	}

	delta := points.Delta{
		Recycle: s.projectBasePoints,
		Reuse:   reusePoints,
	}
	if _, _, err := s.scores.ApplyDelta(ctx, userID, delta, now); err != nil {
		return CompletionResult{}, err
	}

	return CompletionResult{
		RecycleProgress: recycleGoal.Progress,
		ReusePoints:     reusePoints,
		TotalPoints:     s.projectBasePoints + reusePoints,
		OccurredAt:      now,
	}, nil
}

// ProcessArticleFinish converts a finished article into knowledge points.
func (s *GoalService) ProcessArticleFinish(ctx context.Context, userID string, event ArticleFinish) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.ProcessArticleFinish")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(event.ArticleID) == "" {
		return 0, fmt.Errorf("%w: article id is required", ErrInvalidInput)
	}

	award := event.Points
	if award <= 0 {
		award = defaultArticleKnowledgePoints
	}

	now := s.now().UTC()
	if _, _, err := s.scores.ApplyDelta(ctx, userID, points.Delta{Knowledge: award}, now); err != nil {
		return 0, err
	}

	return award, nil
}

// RolloverDueGoals retires ACTUAL goals whose check date elapsed and
// promotes each user's queued NEXT goal in its place. Invoked by the cron
// collaborator; the work fans out over a bounded worker pool.
func (s *GoalService) RolloverDueGoals(ctx context.Context, now time.Time) (RolloverResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.RolloverDueGoals")
	defer span.End()

	if now.IsZero() {
		now = s.now().UTC()
	}

	due, err := s.goalRepo.ListDue(ctx, now, defaultRolloverBatchSize)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("list due goals: %w", err)
	}
	if len(due) == 0 {
		return RolloverResult{}, nil
	}

	var processed, promoted, failed atomic.Int64

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return RolloverResult{}, fmt.Errorf("create rollover worker pool: %w", err)
	}
	defer pool.Release()

	done := make(chan struct{}, len(due))
	for _, g := range due {
		g := g
		submitErr := pool.Submit(func() {
			defer func() { done <- struct{}{} }()

			didPromote, rollErr := s.rolloverOne(ctx, g, now)
			if rollErr != nil {
				failed.Add(1)
				s.logger.ErrorContext(ctx, "goal rollover failed",
					"goal_id", g.ID,
					"user_id", g.UserID,
					"error", rollErr,
				)
				return
			}
			processed.Add(1)
			if didPromote {
				promoted.Add(1)
			}
		})
		if submitErr != nil {
			failed.Add(1)
			done <- struct{}{}
		}
	}
	for range due {
		<-done
	}

	return RolloverResult{
		Processed: int(processed.Load()),
		Promoted:  int(promoted.Load()),
		Failed:    int(failed.Load()),
	}, nil
}

func (s *GoalService) rolloverOne(ctx context.Context, g goal.Goal, now time.Time) (bool, error) {
	g.Status = goal.StatusInactive
	g.UpdatedAt = now
	if err := s.goalRepo.Update(ctx, g); err != nil {
		return false, fmt.Errorf("retire goal: %w", err)
	}

	queued, hasQueued, err := s.goalRepo.GetByUserStatus(ctx, g.UserID, g.Kind, goal.StatusNext)
	if err != nil {
		return false, fmt.Errorf("get queued goal: %w", err)
	}
	if !hasQueued {
		return false, nil
	}

	queued.Status = goal.StatusActual
	queued.Progress = 0
	queued.NextCheck = goal.NextCheckFrom(now, queued.Frequency)
	queued.UpdatedAt = now
	if err := s.goalRepo.Update(ctx, queued); err != nil {
		return false, fmt.Errorf("promote queued goal: %w", err)
	}

	return true, nil
}

// ConsumeSkipDay spends one skip day on the user's active reduce goal and
// returns the remaining allowance. Spending past zero is an invalid state.
func (s *GoalService) ConsumeSkipDay(ctx context.Context, userID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.ConsumeSkipDay")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	g, exists, err := s.goalRepo.GetByUserStatus(ctx, userID, goal.KindReduce, goal.StatusActual)
	if err != nil {
		return 0, fmt.Errorf("get active reduce goal: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: active reduce goal for user=%s", ErrNotFound, userID)
	}
	if g.SkipDaysLeft <= 0 {
		return 0, fmt.Errorf("%w: no skip days left on goal=%s", ErrInvalidState, g.ID)
	}

	g.SkipDaysLeft--
	g.UpdatedAt = s.now().UTC()
	if err := s.goalRepo.Update(ctx, g); err != nil {
		return 0, fmt.Errorf("update reduce goal: %w", err)
	}

	return g.SkipDaysLeft, nil
}

// GetGoalStatus returns the user's active and queued goals for display.
func (s *GoalService) GetGoalStatus(ctx context.Context, userID string) (GoalStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalService.GetGoalStatus")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return GoalStatus{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	goals, err := s.goalRepo.ListByUser(ctx, userID)
	if err != nil {
		return GoalStatus{}, fmt.Errorf("list goals: %w", err)
	}

	out := GoalStatus{}
	for _, g := range goals {
		switch g.Status {
		case goal.StatusActual:
			out.Active = append(out.Active, g)
		case goal.StatusNext:
			out.Queued = append(out.Queued, g)
		}
	}
	if len(out.Active) == 0 && len(out.Queued) == 0 {
		return GoalStatus{}, fmt.Errorf("%w: goals for user=%s", ErrNotFound, userID)
	}

	return out, nil
}

func advanceProgress(current, multiplier float64) float64 {
	next := current + projectProgressIncrement*multiplier
	if next < 0 {
		return 0
	}
	if next > goal.CompletionThreshold {
		return goal.CompletionThreshold
	}
	return next
}

// advanceReduceItems increments item quantities per consumed material and
// returns the reuse award for items that newly met their target.
func advanceReduceItems(g *goal.Goal, materials map[string]int) int {
	if len(materials) == 0 {
		return 0
	}

	award := 0.0
	for idx := range g.Items {
		item := &g.Items[idx]
		amount, ok := materials[item.Material]
		if !ok || amount <= 0 {
			continue
		}

		wasMet := item.Met()
		item.Increment(amount)
		if !wasMet && item.Met() {
			award += float64(item.TargetQuantity)
		}
	}

	return int(math.Round(award * g.Multiplier))
}

func normalizeItems(items []goal.Item) []goal.Item {
	out := make([]goal.Item, 0, len(items))
	for _, item := range items {
		item.Material = strings.ToLower(strings.TrimSpace(item.Material))
		item.ActualQuantity = 0
		if item.Material == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
