package httpapi

import (
	"net/http"
	"time"

	"github.com/greenloop/recycle-league/internal/usecase"
)

type projectCompletedRequest struct {
	UserID    string         `json:"user_id" validate:"required"`
	ProjectID string         `json:"project_id" validate:"required"`
	Materials map[string]int `json:"materials" validate:"omitempty,dive,gte=0"`
}

type projectCompletedResponse struct {
	RecycleProgress float64   `json:"recycle_progress"`
	ReusePoints     int       `json:"reuse_points"`
	TotalPoints     int       `json:"total_points"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type articleFinishedRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	ArticleID string `json:"article_id" validate:"required"`
	Points    int    `json:"points" validate:"gte=0"`
}

type articleFinishedResponse struct {
	KnowledgePoints int `json:"knowledge_points"`
}

func (h *Handler) ProjectCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProjectCompleted")
	defer span.End()

	var req projectCompletedRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.goalService.ProcessProjectCompletion(ctx, req.UserID, usecase.ProjectCompletion{
		ProjectID: req.ProjectID,
		Materials: req.Materials,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "process project completion failed",
			"user_id", req.UserID,
			"project_id", req.ProjectID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, projectCompletedResponse{
		RecycleProgress: result.RecycleProgress,
		ReusePoints:     result.ReusePoints,
		TotalPoints:     result.TotalPoints,
		OccurredAt:      result.OccurredAt,
	})
}

func (h *Handler) ArticleFinished(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ArticleFinished")
	defer span.End()

	var req articleFinishedRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	awarded, err := h.goalService.ProcessArticleFinish(ctx, req.UserID, usecase.ArticleFinish{
		ArticleID: req.ArticleID,
		Points:    req.Points,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "process article finish failed",
			"user_id", req.UserID,
			"article_id", req.ArticleID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, articleFinishedResponse{KnowledgePoints: awarded})
}
