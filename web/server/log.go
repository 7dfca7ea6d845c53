package server

import (
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// requestLogger returns a middleware that logs one line per completed
// request.
func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info("handled request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", m.Code,
				"duration", m.Duration,
				"bytes", m.Written,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
