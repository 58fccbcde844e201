package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/league"
	"github.com/greenloop/recycle-league/internal/domain/points"
	"github.com/greenloop/recycle-league/internal/domain/session"
	"github.com/greenloop/recycle-league/internal/platform/cache"
	"github.com/greenloop/recycle-league/internal/platform/id"
	"github.com/greenloop/recycle-league/internal/platform/logging"
)

// SessionClosedEvent is published to the outbound collaborator when a
// session finishes and its tier movement is decided.
type SessionClosedEvent struct {
	SessionID string     `json:"session_id"`
	LeagueID  string     `json:"league_id"`
	Tier      int        `json:"tier"`
	ClosedAt  time.Time  `json:"closed_at"`
	Capped    bool       `json:"capped"`
	Movements []Movement `json:"movements"`
}

// EventPublisher delivers session lifecycle events to external consumers.
type EventPublisher interface {
	PublishSessionClosed(ctx context.Context, event SessionClosedEvent) error
}

// RosterRow is one ranked line of a session roster for display.
type RosterRow struct {
	Rank     int
	UserID   string
	Total    int
	JoinedAt time.Time
}

// RosterSeed places one user into a freshly started session.
type RosterSeed struct {
	UserID string
}

// CloseResult reports a finished session close.
type CloseResult struct {
	SessionID string
	Movements []Movement
	Capped    bool
}

// SessionService resolves the session a user competes in, maintains its
// roster, and drives the OPEN -> CLOSING -> CLOSED lifecycle. A single
// roster mutex serializes scoring writes against session close so ranking
// never observes a half-applied event.
type SessionService struct {
	leagueRepo  league.Repository
	sessionRepo session.Repository
	pointsRepo  points.Repository
	rosterCache *cache.Store
	publisher   EventPublisher
	idGen       id.Generator
	logger      *logging.Logger
	now         func() time.Time
	rosterMu    sync.Mutex
}

func NewSessionService(
	leagueRepo league.Repository,
	sessionRepo session.Repository,
	pointsRepo points.Repository,
	rosterCache *cache.Store,
	publisher EventPublisher,
	idGen id.Generator,
	logger *logging.Logger,
) *SessionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SessionService{
		leagueRepo:  leagueRepo,
		sessionRepo: sessionRepo,
		pointsRepo:  pointsRepo,
		rosterCache: rosterCache,
		publisher:   publisher,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// GetActiveSession resolves the one session active for the user on the
// given day. Zero matches is a not-found condition; multiple matches mean
// overlapping sessions and are surfaced loudly, never silently picked from.
func (s *SessionService) GetActiveSession(ctx context.Context, userID string, day time.Time) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.GetActiveSession")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return session.Session{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if day.IsZero() {
		day = s.now().UTC()
	}

	matches, err := s.sessionRepo.ListActiveByUser(ctx, userID, day)
	if err != nil {
		return session.Session{}, fmt.Errorf("list active sessions: %w", err)
	}

	switch len(matches) {
	case 0:
		return session.Session{}, fmt.Errorf("%w: active session for user=%s", ErrNotFound, userID)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		s.logger.ErrorContext(ctx, "user has overlapping active sessions",
			"user_id", userID,
			"session_ids", ids,
		)
		return session.Session{}, fmt.Errorf("%w: user=%s matches %d active sessions", ErrIntegrityViolation, userID, len(matches))
	}
}

// StartSession opens a new session for a league and seeds its roster,
// either from promotion output or from an initial population. A league can
// hold only one open session at a time.
func (s *SessionService) StartSession(ctx context.Context, leagueID string, startDate, endDate time.Time, seeds []RosterSeed) (session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.StartSession")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return session.Session{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return session.Session{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return session.Session{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	if _, open, err := s.sessionRepo.GetOpenByLeague(ctx, leagueID); err != nil {
		return session.Session{}, fmt.Errorf("get open session: %w", err)
	} else if open {
		return session.Session{}, fmt.Errorf("%w: league=%s already has an open session", ErrInvalidState, leagueID)
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return session.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now().UTC()
	next := session.Session{
		ID:        sessionID,
		LeagueID:  leagueID,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
	}
	if err := next.Validate(); err != nil {
		return session.Session{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.sessionRepo.Save(ctx, next); err != nil {
		return session.Session{}, fmt.Errorf("save session: %w", err)
	}

	for _, seed := range seeds {
		userID := strings.TrimSpace(seed.UserID)
		if userID == "" {
			continue
		}

		counters, hasCounters, err := s.pointsRepo.Get(ctx, userID)
		if err != nil {
			return session.Session{}, fmt.Errorf("get counters for seed user=%s: %w", userID, err)
		}
		if !hasCounters {
			counters = points.Counters{UserID: userID}
		}

		entry := session.Entry{
			SessionID: sessionID,
			UserID:    userID,
			Counters:  counters,
			Total:     points.CalculateTotal(counters),
			JoinedAt:  now,
		}
		if err := s.sessionRepo.UpsertEntry(ctx, entry); err != nil {
			return session.Session{}, fmt.Errorf("seed roster entry user=%s: %w", userID, err)
		}
	}

	s.invalidateRoster(ctx, sessionID)
	return next, nil
}

// EndSession freezes the roster, marks the session finished and computes
// tier movement. Closing twice is reported, not recomputed.
func (s *SessionService) EndSession(ctx context.Context, sessionID string) (CloseResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.EndSession")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CloseResult{}, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	current, exists, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return CloseResult{}, fmt.Errorf("get session: %w", err)
	}
	if !exists {
		return CloseResult{}, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}
	if current.Finished {
		return CloseResult{}, fmt.Errorf("%w: session=%s already closed", ErrInvalidState, sessionID)
	}

	cfg, exists, err := s.leagueRepo.GetByID(ctx, current.LeagueID)
	if err != nil {
		return CloseResult{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return CloseResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, current.LeagueID)
	}

	entries, err := s.sessionRepo.ListEntries(ctx, sessionID)
	if err != nil {
		return CloseResult{}, fmt.Errorf("list roster entries: %w", err)
	}

	// Freeze totals from the stored counters before ranking.
	for idx := range entries {
		entries[idx].Total = points.CalculateTotal(entries[idx].Counters)
		if err := s.sessionRepo.UpsertEntry(ctx, entries[idx]); err != nil {
			return CloseResult{}, fmt.Errorf("freeze roster entry user=%s: %w", entries[idx].UserID, err)
		}
	}

	if err := s.sessionRepo.MarkFinished(ctx, sessionID); err != nil {
		return CloseResult{}, fmt.Errorf("mark session finished: %w", err)
	}

	worstTier, err := s.worstConfiguredTier(ctx)
	if err != nil {
		return CloseResult{}, err
	}

	result := ComputeMovements(cfg, entries, worstTier)
	if result.Capped {
		s.logger.WarnContext(ctx, "movement counts exceeded roster, capped",
			"session_id", sessionID,
			"league_id", cfg.ID,
			"roster_size", len(entries),
		)
	}

	s.invalidateRoster(ctx, sessionID)
	s.publishClosed(ctx, SessionClosedEvent{
		SessionID: sessionID,
		LeagueID:  cfg.ID,
		Tier:      cfg.Tier,
		ClosedAt:  s.now().UTC(),
		Capped:    result.Capped,
		Movements: result.Movements,
	})

	return CloseResult{
		SessionID: sessionID,
		Movements: result.Movements,
		Capped:    result.Capped,
	}, nil
}

// CloseDueSessions ends every unfinished session whose window elapsed.
// Invoked by the cron collaborator.
func (s *SessionService) CloseDueSessions(ctx context.Context, now time.Time) ([]CloseResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.CloseDueSessions")
	defer span.End()

	if now.IsZero() {
		now = s.now().UTC()
	}

	due, err := s.sessionRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due sessions: %w", err)
	}

	out := make([]CloseResult, 0, len(due))
	for _, item := range due {
		result, err := s.EndSession(ctx, item.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "close due session failed",
				"session_id", item.ID,
				"error", err,
			)
			continue
		}
		out = append(out, result)
	}

	return out, nil
}

// StartFromMovements opens the next season's sessions, grouping a closed
// session's movement output by target tier and seeding each tier's league.
func (s *SessionService) StartFromMovements(ctx context.Context, movements []Movement, startDate, endDate time.Time) ([]session.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.StartFromMovements")
	defer span.End()

	byTier := make(map[int][]RosterSeed)
	tiers := make([]int, 0)
	for _, movement := range movements {
		if _, seen := byTier[movement.ToTier]; !seen {
			tiers = append(tiers, movement.ToTier)
		}
		byTier[movement.ToTier] = append(byTier[movement.ToTier], RosterSeed{UserID: movement.UserID})
	}

	out := make([]session.Session, 0, len(tiers))
	for _, tier := range tiers {
		cfg, exists, err := s.leagueRepo.GetByTier(ctx, tier)
		if err != nil {
			return nil, fmt.Errorf("get league by tier=%d: %w", tier, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: league for tier=%d", ErrNotFound, tier)
		}

		started, err := s.StartSession(ctx, cfg.ID, startDate, endDate, byTier[tier])
		if err != nil {
			return nil, err
		}
		out = append(out, started)
	}

	return out, nil
}

// Roster returns the ranked roster for display, cached briefly since it is
// read far more often than it changes.
func (s *SessionService) Roster(ctx context.Context, sessionID string) ([]RosterRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Roster")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		_, exists, err := s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("get session: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
		}

		entries, err := s.sessionRepo.ListEntries(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("list roster entries: %w", err)
		}

		ranked := rankEntries(entries)
		rows := make([]RosterRow, 0, len(ranked))
		for idx, entry := range ranked {
			rows = append(rows, RosterRow{
				Rank:     idx + 1,
				UserID:   entry.UserID,
				Total:    entry.Total,
				JoinedAt: entry.JoinedAt,
			})
		}
		return rows, nil
	}

	if s.rosterCache == nil {
		rows, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return rows.([]RosterRow), nil
	}

	value, err := s.rosterCache.GetOrLoad(ctx, rosterCacheKey(sessionID), load)
	if err != nil {
		return nil, err
	}
	rows, ok := value.([]RosterRow)
	if !ok {
		return nil, fmt.Errorf("unexpected roster cache value for session=%s", sessionID)
	}
	return rows, nil
}

// RefreshEntry applies a scoring event to the user's active session roster
// entry. No active session is not an error: the points stay in the
// counters and surface when the user re-enters a session. Events for a
// session past its window are rejected so close never races a write.
func (s *SessionService) RefreshEntry(ctx context.Context, userID string, counters points.Counters, total int, when time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.RefreshEntry")
	defer span.End()

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	matches, err := s.sessionRepo.ListActiveByUser(ctx, userID, when)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 1 {
		s.logger.ErrorContext(ctx, "user has overlapping active sessions",
			"user_id", userID,
			"count", len(matches),
		)
		return fmt.Errorf("%w: user=%s matches %d active sessions", ErrIntegrityViolation, userID, len(matches))
	}

	active := matches[0]
	if active.StateAt(when) != session.StateOpen {
		return fmt.Errorf("%w: session=%s no longer accepts scoring events", ErrInvalidState, active.ID)
	}

	entry, exists, err := s.sessionRepo.GetEntry(ctx, active.ID, userID)
	if err != nil {
		return fmt.Errorf("get roster entry: %w", err)
	}
	if !exists {
		entry = session.Entry{
			SessionID: active.ID,
			UserID:    userID,
			JoinedAt:  when,
		}
	}

	entry.Counters = counters
	entry.Total = total
	if err := s.sessionRepo.UpsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("upsert roster entry: %w", err)
	}

	s.invalidateRoster(ctx, active.ID)
	return nil
}

func (s *SessionService) worstConfiguredTier(ctx context.Context) (int, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leagues: %w", err)
	}

	worst := 1
	for _, item := range leagues {
		if item.Tier > worst {
			worst = item.Tier
		}
	}
	return worst, nil
}

func (s *SessionService) publishClosed(ctx context.Context, event SessionClosedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionClosed(ctx, event); err != nil {
		// The close already committed; delivery failures are logged, not
		// unwound.
		s.logger.ErrorContext(ctx, "publish session closed event failed",
			"session_id", event.SessionID,
			"error", err,
		)
	}
}

func (s *SessionService) invalidateRoster(ctx context.Context, sessionID string) {
	if s.rosterCache == nil {
		return
	}
	s.rosterCache.Delete(ctx, rosterCacheKey(sessionID))
}

func rosterCacheKey(sessionID string) string {
	return "roster:" + sessionID
}
