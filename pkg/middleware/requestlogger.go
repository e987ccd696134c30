package middleware

import (
	"log/slog"
	"net/http"

	"github.com/r4nb1r/ProfilePulse/pkg/logger"
)

// RequestLogger stores a request-scoped logger, enriched with whatever
// correlation and trace fields are already in context, for retrieval with
// logger.FromContext. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
