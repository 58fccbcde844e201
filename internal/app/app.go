package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/greenloop/recycle-league/external/webhook"
	"github.com/greenloop/recycle-league/internal/config"
	"github.com/greenloop/recycle-league/internal/domain/goal"
	"github.com/greenloop/recycle-league/internal/domain/league"
	"github.com/greenloop/recycle-league/internal/domain/points"
	"github.com/greenloop/recycle-league/internal/domain/session"
	"github.com/greenloop/recycle-league/internal/infrastructure/repository/memory"
	"github.com/greenloop/recycle-league/internal/infrastructure/repository/postgres"
	"github.com/greenloop/recycle-league/internal/interfaces/httpapi"
	"github.com/greenloop/recycle-league/internal/platform/cache"
	idgen "github.com/greenloop/recycle-league/internal/platform/id"
	"github.com/greenloop/recycle-league/internal/platform/logging"
	"github.com/greenloop/recycle-league/internal/usecase"
)

type repositories struct {
	leagues  league.Repository
	sessions session.Repository
	points   points.Repository
	goals    goal.Repository
}

// NewHTTPServer wires the full service. The returned cleanup releases
// backing resources and must run after the server shuts down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var rosterCache *cache.Store
	if cfg.CacheEnabled {
		rosterCache = cache.NewStore(cfg.CacheTTL)
	}

	var publisher usecase.EventPublisher
	if cfg.WebhookEnabled {
		publisher = webhook.NewSessionEventSink(webhook.NewPublisher(webhook.Config{
			Endpoint:       cfg.WebhookConfig.Endpoint,
			Token:          cfg.WebhookConfig.Token,
			Timeout:        cfg.WebhookConfig.Timeout,
			Retries:        cfg.WebhookConfig.Retries,
			CircuitBreaker: cfg.WebhookConfig.CircuitBreaker,
		}, logger))
	}

	generator := idgen.NewUUIDGenerator()

	sessionSvc := usecase.NewSessionService(
		repos.leagues,
		repos.sessions,
		repos.points,
		rosterCache,
		publisher,
		generator,
		logger,
	)
	scoreSvc := usecase.NewScoreService(repos.points, sessionSvc, cfg.ScoreMaxRetries, logger)
	goalSvc := usecase.NewGoalService(
		repos.goals,
		scoreSvc,
		generator,
		cfg.ProjectBasePoints,
		cfg.JobMaxWorkers,
		logger,
	)
	leagueSvc := usecase.NewLeagueService(repos.leagues, logger)

	handler := httpapi.NewHandler(goalSvc, scoreSvc, sessionSvc, leagueSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, func() error {
		cleanup()
		return nil
	}, nil
}

// buildRepositories picks the storage backend: postgres when DB_URL is
// set, in-memory maps otherwise.
func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func(), error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("storage backend selected", "backend", "memory")
		return repositories{
			leagues:  memory.NewLeagueRepository(memory.SeedLeagues()),
			sessions: memory.NewSessionRepository(),
			points:   memory.NewPointsRepository(),
			goals:    memory.NewGoalRepository(),
		}, func() {}, nil
	}

	db, err := sqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary))
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return repositories{}, nil, fmt.Errorf("ping postgres db=%s: %w", dbNameFromURL(cfg.DBURL), err)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSeed()
	if err := postgres.SeedLeagues(seedCtx, db, memory.SeedLeagues()); err != nil {
		_ = db.Close()
		return repositories{}, nil, err
	}

	logger.Info("storage backend selected", "backend", "postgres", "db", dbNameFromURL(cfg.DBURL))

	cleanup := func() {
		_ = db.Close()
	}

	return repositories{
		leagues:  postgres.NewLeagueRepository(db),
		sessions: postgres.NewSessionRepository(db),
		points:   postgres.NewPointsRepository(db),
		goals:    postgres.NewGoalRepository(db),
	}, cleanup, nil
}
