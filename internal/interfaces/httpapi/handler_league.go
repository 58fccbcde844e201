package httpapi

import (
	"net/http"

	"github.com/greenloop/recycle-league/internal/domain/league"
)

type leagueDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Tier              int    `json:"tier"`
	MembersCount      int    `json:"members_count"`
	PromotedCount     int    `json:"promoted_count"`
	RelegatedCount    int    `json:"relegated_count"`
	PromotionEnabled  bool   `json:"promotion_enabled"`
	RelegationEnabled bool   `json:"relegation_enabled"`
}

type upsertLeagueRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Tier              int    `json:"tier" validate:"required,gte=1"`
	MembersCount      int    `json:"members_count" validate:"required,gte=1"`
	PromotedCount     int    `json:"promoted_count" validate:"gte=0"`
	RelegatedCount    int    `json:"relegated_count" validate:"gte=0"`
	PromotionEnabled  bool   `json:"promotion_enabled"`
	RelegationEnabled bool   `json:"relegation_enabled"`
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) UpsertLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertLeague")
	defer span.End()

	leagueID, err := pathValue(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upsertLeagueRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.leagueService.Upsert(ctx, league.League{
		ID:                leagueID,
		Name:              req.Name,
		Tier:              req.Tier,
		MembersCount:      req.MembersCount,
		PromotedCount:     req.PromotedCount,
		RelegatedCount:    req.RelegatedCount,
		PromotionEnabled:  req.PromotionEnabled,
		RelegationEnabled: req.RelegationEnabled,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "upsert league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(saved))
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:                l.ID,
		Name:              l.Name,
		Tier:              l.Tier,
		MembersCount:      l.MembersCount,
		PromotedCount:     l.PromotedCount,
		RelegatedCount:    l.RelegatedCount,
		PromotionEnabled:  l.PromotionEnabled,
		RelegationEnabled: l.RelegationEnabled,
	}
}
