// file: internal/server/middleware.go
package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/dkoosis/instapaper-mcp/internal/metrics"
)

// MetricsPath is where the Prometheus scrape endpoint is mounted.
const MetricsPath = "/metrics"

// NewMetricsHTTPServer returns an HTTP server exposing MetricsPath on addr.
// Stdout carries MCP traffic, so metrics are only ever served over HTTP.
func NewMetricsHTTPServer(addr string, logger logging.Logger) *http.Server {
	if logger == nil {
		logger = logging.GetLogger("metrics_http")
	}
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, metrics.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           recoveryMiddleware(logMiddleware(mux, logger), logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// logMiddleware logs each request at debug level.
func logMiddleware(next http.Handler, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wi := &responseInterceptor{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wi, r)

		logger.Debug("Metrics request served.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wi.statusCode,
			"duration", time.Since(start))
	})
}

// recoveryMiddleware turns a handler panic into a 500.
func recoveryMiddleware(next http.Handler, logger logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Panic while serving metrics.",
					"panic", rec,
					"stack", string(debug.Stack()))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseInterceptor wraps an http.ResponseWriter to capture the status code.
type responseInterceptor struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before passing it to the wrapped ResponseWriter.
func (wi *responseInterceptor) WriteHeader(statusCode int) {
	wi.statusCode = statusCode
	wi.ResponseWriter.WriteHeader(statusCode)
}
