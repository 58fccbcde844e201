package httpapi

import (
	"net/http"
	"time"

	"github.com/greenloop/recycle-league/internal/domain/goal"
)

type reduceGoalItemRequest struct {
	Material       string `json:"material" validate:"required,max=64"`
	TargetQuantity int    `json:"target_quantity" validate:"required,gt=0"`
}

type createReduceGoalRequest struct {
	UserID     string                  `json:"user_id" validate:"required"`
	Difficulty string                  `json:"difficulty" validate:"required"`
	Frequency  string                  `json:"frequency" validate:"required"`
	Items      []reduceGoalItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createRecycleGoalRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
	Frequency  string `json:"frequency" validate:"required"`
}

type goalItemDTO struct {
	Material       string `json:"material"`
	TargetQuantity int    `json:"target_quantity"`
	ActualQuantity int    `json:"actual_quantity"`
	Met            bool   `json:"met"`
}

type goalDTO struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Kind         string        `json:"kind"`
	Difficulty   string        `json:"difficulty"`
	Frequency    string        `json:"frequency"`
	Status       string        `json:"status"`
	Progress     float64       `json:"progress"`
	Multiplier   float64       `json:"multiplier"`
	NextCheck    time.Time     `json:"next_check"`
	SkipDaysLeft int           `json:"skip_days_left"`
	Items        []goalItemDTO `json:"items,omitempty"`
}

type createGoalResponse struct {
	Goal      goalDTO `json:"goal"`
	Activated bool    `json:"activated"`
}

type goalStatusResponse struct {
	Active []goalDTO `json:"active"`
	Queued []goalDTO `json:"queued"`
}

func (h *Handler) CreateReduceGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateReduceGoal")
	defer span.End()

	var req createReduceGoalRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]goal.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, goal.Item{
			Material:       item.Material,
			TargetQuantity: item.TargetQuantity,
		})
	}

	created, activated, err := h.goalService.CreateReduceGoal(ctx, req.UserID, req.Difficulty, req.Frequency, items)
	if err != nil {
		h.logger.ErrorContext(ctx, "create reduce goal failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, createGoalResponse{
		Goal:      goalToDTO(created),
		Activated: activated,
	})
}

func (h *Handler) CreateRecycleGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateRecycleGoal")
	defer span.End()

	var req createRecycleGoalRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, activated, err := h.goalService.CreateRecycleGoal(ctx, req.UserID, req.Difficulty, req.Frequency)
	if err != nil {
		h.logger.ErrorContext(ctx, "create recycle goal failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, createGoalResponse{
		Goal:      goalToDTO(created),
		Activated: activated,
	})
}

func (h *Handler) GetGoalStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGoalStatus")
	defer span.End()

	userID, err := pathValue(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.goalService.GetGoalStatus(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, goalStatusResponse{
		Active: goalsToDTOs(status.Active),
		Queued: goalsToDTOs(status.Queued),
	})
}

func goalToDTO(g goal.Goal) goalDTO {
	items := make([]goalItemDTO, 0, len(g.Items))
	for _, item := range g.Items {
		items = append(items, goalItemDTO{
			Material:       item.Material,
			TargetQuantity: item.TargetQuantity,
			ActualQuantity: item.ActualQuantity,
			Met:            item.Met(),
		})
	}

	return goalDTO{
		ID:           g.ID,
		UserID:       g.UserID,
		Kind:         string(g.Kind),
		Difficulty:   string(g.Difficulty),
		Frequency:    string(g.Frequency),
		Status:       string(g.Status),
		Progress:     g.Progress,
		Multiplier:   g.Multiplier,
		NextCheck:    g.NextCheck,
		SkipDaysLeft: g.SkipDaysLeft,
		Items:        items,
	}
}

func goalsToDTOs(goals []goal.Goal) []goalDTO {
	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalToDTO(g))
	}
	return out
}
