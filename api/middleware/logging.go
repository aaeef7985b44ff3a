package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/stallpos/pkg/logger"
)

// Logging writes request.start and request.complete lines. Polling clients
// hit the read routes every second or so, so successful GETs log at debug.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			logAt(ctx, logg, r.Method, 0, "request.start")

			next.ServeHTTP(rec, r.WithContext(ctx))

			fields := map[string]any{
				"status":      rec.Status(),
				"bytes":       rec.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if id := chi.URLParam(r, "orderId"); id != "" {
				fields["order_id"] = id
			}
			logAt(logg.WithFields(ctx, fields), logg, r.Method, rec.Status(), "request.complete")
		})
	}
}

func logAt(ctx context.Context, logg *logger.Logger, method string, status int, msg string) {
	if method == http.MethodGet && status < http.StatusBadRequest {
		logg.Debug(ctx, msg)
		return
	}
	logg.Info(ctx, msg)
}
