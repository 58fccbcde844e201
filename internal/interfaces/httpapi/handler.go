package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/greenloop/recycle-league/internal/platform/logging"
	"github.com/greenloop/recycle-league/internal/usecase"
)

type Handler struct {
	goalService    *usecase.GoalService
	scoreService   *usecase.ScoreService
	sessionService *usecase.SessionService
	leagueService  *usecase.LeagueService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	goalService *usecase.GoalService,
	scoreService *usecase.ScoreService,
	sessionService *usecase.SessionService,
	leagueService *usecase.LeagueService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		goalService:    goalService,
		scoreService:   scoreService,
		sessionService: sessionService,
		leagueService:  leagueService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, payload any) error {
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(payload); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathValue(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(r.PathValue(key))
	if value == "" {
		return "", fmt.Errorf("%w: path parameter %s is required", usecase.ErrInvalidInput, key)
	}
	return value, nil
}
