package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	SuggestionsGeneratedTotal metric.Int64Counter
	SectionsSavedTotal        metric.Int64Counter
	IntakeCompletedTotal      metric.Int64Counter

	// GenAI metrics
	GenAIRequestDurationMs metric.Float64Histogram
}

// InitMetrics initializes all custom metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/WailSalutem-Health-Care/intake-service")

	// HTTP request counter
	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	// HTTP duration histogram
	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	// Suggestion counter
	suggestionsGeneratedTotal, err := meter.Int64Counter(
		"intake_suggestions_generated_total",
		metric.WithDescription("Total number of model-generated suggestions, by kind"),
		metric.WithUnit("{suggestion}"),
	)
	if err != nil {
		return nil, err
	}

	// Section save counter
	sectionsSavedTotal, err := meter.Int64Counter(
		"intake_sections_saved_total",
		metric.WithDescription("Total number of questionnaire section saves, by section"),
		metric.WithUnit("{save}"),
	)
	if err != nil {
		return nil, err
	}

	// Completed intake counter
	intakeCompletedTotal, err := meter.Int64Counter(
		"intake_completed_total",
		metric.WithDescription("Total number of completed intake runs"),
		metric.WithUnit("{intake}"),
	)
	if err != nil {
		return nil, err
	}

	// GenAI request duration histogram
	genAIRequestDurationMs, err := meter.Float64Histogram(
		"genai_request_duration_ms",
		metric.WithDescription("Generative model request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	log.Println("✓ Custom metrics initialized")

	return &Metrics{
		HTTPRequestsTotal:         httpRequestsTotal,
		HTTPDurationMs:            httpDurationMs,
		SuggestionsGeneratedTotal: suggestionsGeneratedTotal,
		SectionsSavedTotal:        sectionsSavedTotal,
		IntakeCompletedTotal:      intakeCompletedTotal,
		GenAIRequestDurationMs:    genAIRequestDurationMs,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordSuggestions records how many suggestions one model call produced
func (m *Metrics) RecordSuggestions(ctx context.Context, kind string, count int) {
	m.SuggestionsGeneratedTotal.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordSectionSaved records a questionnaire section save
func (m *Metrics) RecordSectionSaved(ctx context.Context, section string) {
	m.SectionsSavedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("section", section),
	))
}

// RecordIntakeCompleted records a completed intake run
func (m *Metrics) RecordIntakeCompleted(ctx context.Context) {
	m.IntakeCompletedTotal.Add(ctx, 1)
}

// RecordGenAIRequest records a generative model request duration
func (m *Metrics) RecordGenAIRequest(ctx context.Context, model string, durationMs float64, success bool) {
	m.GenAIRequestDurationMs.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("model", model),
		attribute.Bool("success", success),
	))
}
