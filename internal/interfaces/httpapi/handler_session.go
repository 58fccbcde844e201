package httpapi

import (
	"net/http"
	"time"

	"github.com/greenloop/recycle-league/internal/usecase"
)

type sessionDTO struct {
	ID        string    `json:"id"`
	LeagueID  string    `json:"league_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	State     string    `json:"state"`
}

type rosterRowDTO struct {
	Rank     int       `json:"rank"`
	UserID   string    `json:"user_id"`
	Total    int       `json:"total"`
	JoinedAt time.Time `json:"joined_at"`
}

type activeSessionResponse struct {
	Session sessionDTO     `json:"session"`
	Roster  []rosterRowDTO `json:"roster"`
}

func (h *Handler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetActiveSession")
	defer span.End()

	userID, err := pathValue(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	active, err := h.sessionService.GetActiveSession(ctx, userID, now)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	roster, err := h.sessionService.Roster(ctx, active.ID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activeSessionResponse{
		Session: sessionDTO{
			ID:        active.ID,
			LeagueID:  active.LeagueID,
			StartDate: active.StartDate,
			EndDate:   active.EndDate,
			State:     string(active.StateAt(now)),
		},
		Roster: rosterRowsToDTOs(roster),
	})
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	sessionID, err := pathValue(r, "sessionID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	roster, err := h.sessionService.Roster(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterRowsToDTOs(roster))
}

func rosterRowsToDTOs(rows []usecase.RosterRow) []rosterRowDTO {
	out := make([]rosterRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, rosterRowDTO{
			Rank:     row.Rank,
			UserID:   row.UserID,
			Total:    row.Total,
			JoinedAt: row.JoinedAt,
		})
	}
	return out
}
