package httpapi

import "net/http"

type scoreResponse struct {
	UserID          string `json:"user_id"`
	RecyclePoints   int    `json:"recycle_points"`
	ReusePoints     int    `json:"reuse_points"`
	ReducePoints    int    `json:"reduce_points"`
	KnowledgePoints int    `json:"knowledge_points"`
	Total           int    `json:"total"`
}

func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScore")
	defer span.End()

	userID, err := pathValue(r, "userID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	counters, err := h.scoreService.Counters(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	total, err := h.scoreService.Total(ctx, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreResponse{
		UserID:          userID,
		RecyclePoints:   counters.Recycle,
		ReusePoints:     counters.Reuse,
		ReducePoints:    counters.Reduce,
		KnowledgePoints: counters.Knowledge,
		Total:           total,
	})
}
