package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Ngumi22/bds-sub000/pkg/logger"
)

// RequestLogger builds a request-scoped logger enriched with the
// correlation id and stores it in context via logger.NewContext. Handlers
// retrieve it with logger.FromContext. Mount after RequestLogging, which
// sets the correlation id.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			enriched := logger.WithContext(ctx, base)
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, enriched)))
		})
	}
}
