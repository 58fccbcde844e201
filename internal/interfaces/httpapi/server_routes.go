package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/goals/recycle", handler.CreateRecycleGoal)
	mux.HandleFunc("POST /v1/goals/reduce", handler.CreateReduceGoal)
	mux.HandleFunc("GET /v1/users/{userID}/goals", handler.GetGoalStatus)

	mux.HandleFunc("POST /v1/events/project-completed", handler.ProjectCompleted)
	mux.HandleFunc("POST /v1/events/article-finished", handler.ArticleFinished)

	mux.HandleFunc("GET /v1/users/{userID}/score", handler.GetScore)
	mux.HandleFunc("GET /v1/users/{userID}/session", handler.GetActiveSession)

	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("PUT /v1/leagues/{leagueID}", handler.UpsertLeague)
	mux.HandleFunc("GET /v1/sessions/{sessionID}/roster", handler.GetRoster)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /internal/jobs/goal-rollover", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunGoalRolloverJob)))
	mux.Handle("POST /internal/jobs/close-sessions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCloseSessionsJob)))
	mux.Handle("POST /internal/jobs/start-sessions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunStartSessionsJob)))
	mux.Handle("POST /internal/jobs/skip-day", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSkipDayJob)))
}
