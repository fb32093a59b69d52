package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/config"
	"github.com/WailSalutem-Health-Care/intake-service/internal/intake"
	"github.com/WailSalutem-Health-Care/intake-service/internal/telemetry"
)

// SetupRouter initializes all routes for the application
func SetupRouter(handler *intake.Handler, cfg config.ServerConfig, metrics *telemetry.Metrics, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("intake-service"))
	r.Use(MetricsMiddleware(metrics, logger))

	// Public health endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"intake-service"}`))
	}).Methods("GET")

	// Workflow routes
	r.HandleFunc("/start", handler.Start).Methods("POST")
	r.HandleFunc("/antecedents", handler.ConfirmAntecedents).Methods("POST")
	r.HandleFunc("/allergies/suggest", handler.SuggestAllergies).Methods("POST")
	r.HandleFunc("/allergies", handler.ConfirmAllergies).Methods("POST")
	r.HandleFunc("/drugs/suggest", handler.SuggestDrugs).Methods("POST")
	r.HandleFunc("/drugs", handler.ConfirmDrugs).Methods("POST")
	r.HandleFunc("/sections/{section}", handler.SaveSection).Methods("POST")

	// Record listing
	r.HandleFunc("/records", handler.ListRecords).Methods("GET")

	// CORS wraps the whole router so preflight requests are answered even
	// when no POST route matches.
	return CORSMiddleware(cfg.AllowedOrigins)(r)
}
