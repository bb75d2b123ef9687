package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

// requestContext copies chi's request ID into the logger context so every
// log line for a request carries request_id.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logger.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request. Probe traffic is logged at debug.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_ip", r.RemoteAddr,
		}
		if r.URL.Path == "/health" || r.URL.Path == "/health/live" || r.URL.Path == "/metrics" {
			logger.Debug("request", fields...)
			return
		}
		logger.InfoCtx(r.Context(), "request", fields...)
	})
}
