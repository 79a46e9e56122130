package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs every HTTP request with method, path, status,
// authenticated address, and duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Milliseconds()
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"address", GetAddress(r.Context()),
			"duration_ms", duration,
		}
		if rec.status >= 500 {
			slog.Error("request failed", attrs...)
		} else if rec.status >= 400 {
			slog.Warn("request error", attrs...)
		} else {
			slog.Info("request ok", attrs...)
		}
	})
}
