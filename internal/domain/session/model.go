package session

import (
	"fmt"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/points"
)

// State is the derived lifecycle position of a session.
type State string

const (
	StateOpen    State = "OPEN"
	StateClosing State = "CLOSING"
	StateClosed  State = "CLOSED"
)

// Session is one time-boxed instance of a league's competition. The window
// is inclusive on both dates; scores freeze once Finished is set.
type Session struct {
	ID        string
	LeagueID  string
	StartDate time.Time
	EndDate   time.Time
	Finished  bool
	CreatedAt time.Time
}

// Entry is one user's scoring record inside a session roster. Counters are
// that user's category points as of the last scoring event; Total caches
// the weighted score so roster reads never recompute per row.
type Entry struct {
	SessionID string
	UserID    string
	Counters  points.Counters
	Total     int
	JoinedAt  time.Time
}

// ActiveOn reports whether the session window covers day and the session
// is still accepting scores.
func (s Session) ActiveOn(day time.Time) bool {
	if s.Finished {
		return false
	}
	d := truncateToDay(day)
	return !d.Before(truncateToDay(s.StartDate)) && !d.After(truncateToDay(s.EndDate))
}

// StateAt derives the lifecycle state at the given instant.
func (s Session) StateAt(now time.Time) State {
	if s.Finished {
		return StateClosed
	}
	if truncateToDay(now).After(truncateToDay(s.EndDate)) {
		return StateClosing
	}
	return StateOpen
}

func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.LeagueID == "" {
		return fmt.Errorf("session league id is required")
	}
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("session end date precedes start date")
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
