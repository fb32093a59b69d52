package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/telemetry"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware records request metrics and writes one access log line
// per request. metrics may be nil when telemetry is disabled.
func MetricsMiddleware(metrics *telemetry.Metrics, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if template, err := current.GetPathTemplate(); err == nil {
					route = template
				}
			}
			durationMs := float64(time.Since(start).Milliseconds())

			if metrics != nil {
				metrics.RecordHTTPRequest(r.Context(), r.Method, route, recorder.status, durationMs)
			}
			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", recorder.status),
				zap.Float64("duration_ms", durationMs))
		})
	}
}
