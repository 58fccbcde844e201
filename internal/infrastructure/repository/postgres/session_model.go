package postgres

import (
	"time"

	"github.com/greenloop/recycle-league/internal/domain/points"
	"github.com/greenloop/recycle-league/internal/domain/session"
)

type sessionTableModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Finished  bool      `db:"finished"`
	CreatedAt time.Time `db:"created_at"`
}

type sessionInsertModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Finished  bool      `db:"finished"`
	CreatedAt time.Time `db:"created_at"`
}

type sessionEntryTableModel struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	Recycle   int       `db:"recycle_points"`
	Reuse     int       `db:"reuse_points"`
	Reduce    int       `db:"reduce_points"`
	Knowledge int       `db:"knowledge_points"`
	Total     int       `db:"total_points"`
	JoinedAt  time.Time `db:"joined_at"`
}

func sessionFromRow(row sessionTableModel) session.Session {
	return session.Session{
		ID:        row.ID,
		LeagueID:  row.LeagueID,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		Finished:  row.Finished,
		CreatedAt: row.CreatedAt,
	}
}

func entryFromRow(row sessionEntryTableModel) session.Entry {
	return session.Entry{
		SessionID: row.SessionID,
		UserID:    row.UserID,
		Counters: points.Counters{
			UserID:    row.UserID,
			Recycle:   row.Recycle,
			Reuse:     row.Reuse,
			Reduce:    row.Reduce,
			Knowledge: row.Knowledge,
		},
		Total:    row.Total,
		JoinedAt: row.JoinedAt,
	}
}
