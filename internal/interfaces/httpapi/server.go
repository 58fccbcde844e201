package httpapi

import (
	"net/http"

	"github.com/greenloop/recycle-league/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerDomainRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

// recoverPanic converts handler panics into a 500 response. Sits
// innermost so the logging middleware still records the request.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.ErrorContext(ctx, "panic recovered", "panic", rec)
			writeInternalError(ctx, w)
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
