package middleware

import (
	"log/slog"
	"net/http"

	"github.com/yahyahetari/electronics-admin/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context, pre-enriched with
// correlation_id, user_id, trace_id, and span_id. Handlers pick it up via
// logger.FromContext. Mount it after RequestLogging and Tracing so those
// fields are already in the context.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The user ID comes from Auth when it ran, or from the
			// X-User-ID header set by an upstream gateway.
			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
