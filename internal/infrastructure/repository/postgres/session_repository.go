package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greenloop/recycle-league/internal/domain/session"
	qb "github.com/greenloop/recycle-league/internal/platform/querybuilder"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (session.Session, bool, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(qb.Eq("id", sessionID)).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build get session by id query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get session by id: %w", err)
	}

	return sessionFromRow(row), true, nil
}

func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string, day time.Time) ([]session.Session, error) {
	day = truncateToDay(day)

	query, args, err := qb.Select("s.*").
		From("sessions s JOIN session_entries e ON e.session_id = s.id").
		Where(
			qb.Eq("e.user_id", userID),
			qb.Eq("s.finished", false),
			qb.Lte("s.start_date", day),
			qb.Gte("s.end_date", day),
		).
		OrderBy("s.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active sessions query: %w", err)
	}

	var rows []sessionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, sessionFromRow(row))
	}

	return out, nil
}

func (r *SessionRepository) GetOpenByLeague(ctx context.Context, leagueID string) (session.Session, bool, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("finished", false),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return session.Session{}, false, fmt.Errorf("build get open session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, fmt.Errorf("get open session: %w", err)
	}

	return sessionFromRow(row), true, nil
}

func (r *SessionRepository) ListDue(ctx context.Context, now time.Time) ([]session.Session, error) {
	query, args, err := qb.Select("*").From("sessions").
		Where(
			qb.Eq("finished", false),
			qb.Lt("end_date", truncateToDay(now)),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list due sessions query: %w", err)
	}

	var rows []sessionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list due sessions: %w", err)
	}

	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, sessionFromRow(row))
	}

	return out, nil
}

func (r *SessionRepository) Save(ctx context.Context, s session.Session) error {
	model := sessionInsertModel{
		ID:        s.ID,
		LeagueID:  s.LeagueID,
		StartDate: truncateToDay(s.StartDate),
		EndDate:   truncateToDay(s.EndDate),
		Finished:  s.Finished,
		CreatedAt: s.CreatedAt,
	}

	query, args, err := qb.InsertModel("sessions", model, "")
	if err != nil {
		return fmt.Errorf("build insert session query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

func (r *SessionRepository) MarkFinished(ctx context.Context, sessionID string) error {
	query, args, err := qb.Update("sessions").
		Set("finished", true).
		Where(qb.Eq("id", sessionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark session finished query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark session finished: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark session finished rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}

	return nil
}

func (r *SessionRepository) GetEntry(ctx context.Context, sessionID, userID string) (session.Entry, bool, error) {
	query, args, err := qb.Select("*").From("session_entries").
		Where(
			qb.Eq("session_id", sessionID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return session.Entry{}, false, fmt.Errorf("build get session entry query: %w", err)
	}

	var row sessionEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return session.Entry{}, false, nil
		}
		return session.Entry{}, false, fmt.Errorf("get session entry: %w", err)
	}

	return entryFromRow(row), true, nil
}

func (r *SessionRepository) ListEntries(ctx context.Context, sessionID string) ([]session.Entry, error) {
	query, args, err := qb.Select("*").From("session_entries").
		Where(qb.Eq("session_id", sessionID)).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list session entries query: %w", err)
	}

	var rows []sessionEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list session entries: %w", err)
	}

	out := make([]session.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}

	return out, nil
}

func (r *SessionRepository) UpsertEntry(ctx context.Context, e session.Entry) error {
	model := sessionEntryTableModel{
		SessionID: e.SessionID,
		UserID:    e.UserID,
		Recycle:   e.Counters.Recycle,
		Reuse:     e.Counters.Reuse,
		Reduce:    e.Counters.Reduce,
		Knowledge: e.Counters.Knowledge,
		Total:     e.Total,
		JoinedAt:  e.JoinedAt,
	}

	query, args, err := qb.InsertModel("session_entries", model, `ON CONFLICT (session_id, user_id) DO UPDATE SET
		recycle_points = EXCLUDED.recycle_points,
		reuse_points = EXCLUDED.reuse_points,
		reduce_points = EXCLUDED.reduce_points,
		knowledge_points = EXCLUDED.knowledge_points,
		total_points = EXCLUDED.total_points`)
	if err != nil {
		return fmt.Errorf("build upsert session entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session entry: %w", err)
	}

	return nil
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
