package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/greenloop/recycle-league/internal/usecase"
)

const jobDateLayout = "2006-01-02"

type rolloverJobResponse struct {
	Processed int `json:"processed"`
	Promoted  int `json:"promoted"`
	Failed    int `json:"failed"`
}

type movementDTO struct {
	UserID   string `json:"user_id"`
	FromTier int    `json:"from_tier"`
	ToTier   int    `json:"to_tier"`
	Reason   string `json:"reason"`
}

type closeResultDTO struct {
	SessionID string        `json:"session_id"`
	Capped    bool          `json:"capped"`
	Movements []movementDTO `json:"movements"`
}

type startSessionsRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	// Either a movement map from a closed session or a direct league
	// seeding, never both.
	Movements []movementDTO `json:"movements" validate:"omitempty,dive"`
	LeagueID  string        `json:"league_id" validate:"omitempty"`
	UserIDs   []string      `json:"user_ids" validate:"omitempty,dive,required"`
}

type skipDayJobRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type skipDayJobResponse struct {
	UserID       string `json:"user_id"`
	SkipDaysLeft int    `json:"skip_days_left"`
}

func (h *Handler) RunGoalRolloverJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGoalRolloverJob")
	defer span.End()

	result, err := h.goalService.RolloverDueGoals(ctx, time.Now().UTC())
	if err != nil {
		h.logger.ErrorContext(ctx, "goal rollover job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rolloverJobResponse{
		Processed: result.Processed,
		Promoted:  result.Promoted,
		Failed:    result.Failed,
	})
}

func (h *Handler) RunCloseSessionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCloseSessionsJob")
	defer span.End()

	results, err := h.sessionService.CloseDueSessions(ctx, time.Now().UTC())
	if err != nil {
		h.logger.ErrorContext(ctx, "close sessions job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]closeResultDTO, 0, len(results))
	for _, result := range results {
		out = append(out, closeResultDTO{
			SessionID: result.SessionID,
			Capped:    result.Capped,
			Movements: movementsToDTOs(result.Movements),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) RunStartSessionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunStartSessionsJob")
	defer span.End()

	var req startSessionsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startDate, err := time.Parse(jobDateLayout, req.StartDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: parse start_date: %v", usecase.ErrInvalidInput, err))
		return
	}
	endDate, err := time.Parse(jobDateLayout, req.EndDate)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: parse end_date: %v", usecase.ErrInvalidInput, err))
		return
	}

	if len(req.Movements) > 0 {
		movements := make([]usecase.Movement, 0, len(req.Movements))
		for _, m := range req.Movements {
			movements = append(movements, usecase.Movement{
				UserID:   m.UserID,
				FromTier: m.FromTier,
				ToTier:   m.ToTier,
				Reason:   usecase.MovementReason(m.Reason),
			})
		}

		started, err := h.sessionService.StartFromMovements(ctx, movements, startDate, endDate)
		if err != nil {
			h.logger.ErrorContext(ctx, "start sessions from movements failed", "error", err)
			writeError(ctx, w, err)
			return
		}

		ids := make([]string, 0, len(started))
		for _, s := range started {
			ids = append(ids, s.ID)
		}
		writeSuccess(ctx, w, http.StatusOK, map[string]any{"session_ids": ids})
		return
	}

	seeds := make([]usecase.RosterSeed, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		seeds = append(seeds, usecase.RosterSeed{UserID: userID})
	}

	started, err := h.sessionService.StartSession(ctx, req.LeagueID, startDate, endDate, seeds)
	if err != nil {
		h.logger.ErrorContext(ctx, "start session failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"session_ids": []string{started.ID}})
}

func (h *Handler) RunSkipDayJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSkipDayJob")
	defer span.End()

	var req skipDayJobRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	remaining, err := h.goalService.ConsumeSkipDay(ctx, req.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "skip day job failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, skipDayJobResponse{
		UserID:       req.UserID,
		SkipDaysLeft: remaining,
	})
}

func movementsToDTOs(movements []usecase.Movement) []movementDTO {
	out := make([]movementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementDTO{
			UserID:   m.UserID,
			FromTier: m.FromTier,
			ToTier:   m.ToTier,
			Reason:   string(m.Reason),
		})
	}
	return out
}
