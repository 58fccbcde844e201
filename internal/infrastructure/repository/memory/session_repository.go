package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/session"
)

type entryKey struct {
	sessionID string
	userID    string
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	entries  map[entryKey]session.Entry
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]session.Session),
		entries:  make(map[entryKey]session.Entry),
	}
}

func (r *SessionRepository) GetByID(_ context.Context, sessionID string) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return session.Session{}, false, nil
	}

	return s, true, nil
}

func (r *SessionRepository) ListActiveByUser(_ context.Context, userID string, day time.Time) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Session, 0, 1)
	for _, s := range r.sessions {
		if !s.ActiveOn(day) {
			continue
		}
		if _, ok := r.entries[entryKey{sessionID: s.ID, userID: userID}]; !ok {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *SessionRepository) GetOpenByLeague(_ context.Context, leagueID string) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.LeagueID == leagueID && !s.Finished {
			return s, true, nil
		}
	}

	return session.Session{}, false, nil
}

func (r *SessionRepository) ListDue(_ context.Context, now time.Time) ([]session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Session, 0)
	for _, s := range r.sessions {
		if s.Finished {
			continue
		}
		if s.StateAt(now) != session.StateClosing {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *SessionRepository) Save(_ context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	r.sessions[s.ID] = s

	return nil
}

func (r *SessionRepository) MarkFinished(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	s.Finished = true
	r.sessions[sessionID] = s

	return nil
}

func (r *SessionRepository) GetEntry(_ context.Context, sessionID, userID string) (session.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entryKey{sessionID: sessionID, userID: userID}]
	if !ok {
		return session.Entry{}, false, nil
	}

	return e, true, nil
}

func (r *SessionRepository) ListEntries(_ context.Context, sessionID string) ([]session.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]session.Entry, 0)
	for key, e := range r.entries {
		if key.sessionID == sessionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })

	return out, nil
}

func (r *SessionRepository) UpsertEntry(_ context.Context, e session.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entryKey{sessionID: e.SessionID, userID: e.UserID}] = e

	return nil
}
