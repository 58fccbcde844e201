package session

import (
	"context"
	"time"
)

// Repository describes session and roster persistence needs.
type Repository interface {
	GetByID(ctx context.Context, sessionID string) (Session, bool, error)
	// ListActiveByUser returns every unfinished session whose window covers
	// day and whose roster contains the user. More than one match is a
	// data-integrity violation detected by the caller, so the repository
	// must not collapse the result.
	ListActiveByUser(ctx context.Context, userID string, day time.Time) ([]Session, error)
	GetOpenByLeague(ctx context.Context, leagueID string) (Session, bool, error)
	// ListDue returns unfinished sessions whose end date elapsed before now.
	ListDue(ctx context.Context, now time.Time) ([]Session, error)
	Save(ctx context.Context, s Session) error
	MarkFinished(ctx context.Context, sessionID string) error

	GetEntry(ctx context.Context, sessionID, userID string) (Entry, bool, error)
	ListEntries(ctx context.Context, sessionID string) ([]Entry, error)
	UpsertEntry(ctx context.Context, e Entry) error
}
