package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/metrics"
)

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Metrics records request counts and latencies. The path label uses
// the mux route template so dynamic segments don't blow up cardinality.
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncrementInFlight()
			defer m.DecrementInFlight()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}
			m.RecordHTTPRequest(r.Method, path, strconv.Itoa(sw.status), time.Since(start))
		})
	}
}

// Tracing assigns a trace ID to every request, exposes it in the
// X-Trace-ID response header and logs the request on completion.
func Tracing(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = logging.NewTraceID()
			}
			ctx := logging.WithTraceID(r.Context(), traceID)
			w.Header().Set("X-Trace-ID", traceID)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r.WithContext(ctx))
			logger.LogRequest(ctx, r.Method, r.URL.Path, sw.status, time.Since(start))
		})
	}
}
