package e2e

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/config"
	httpserver "github.com/WailSalutem-Health-Care/intake-service/internal/http"
	"github.com/WailSalutem-Health-Care/intake-service/internal/intake"
	"github.com/WailSalutem-Health-Care/intake-service/internal/messaging"
)

// TestServer is a complete in-process intake service: real router, real
// service, in-memory store, scripted generative model, and a recording
// publisher. No external dependencies.
type TestServer struct {
	Server    *httptest.Server
	Store     *intake.MemoryStore
	Generator *ScriptedGenerator
	Publisher *RecordingPublisher
}

// SetupE2ETest builds the full HTTP stack the way cmd/api wires it, minus
// the process-level pieces (config file, signals, telemetry exporters).
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()

	store := intake.NewMemoryStore()
	generator := NewScriptedGenerator()
	publisher := &RecordingPublisher{}
	logger := zap.NewNop()

	service := intake.NewService(store, generator, publisher, nil, logger, config.SuggestionsConfig{
		MaxOptions: 24,
		MaxPerCall: 8,
		MaxExclude: 32,
	})
	handler := intake.NewHandler(service)
	router := httpserver.SetupRouter(handler, config.ServerConfig{}, nil, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:    server,
		Store:     store,
		Generator: generator,
		Publisher: publisher,
	}
}

// ScriptedGenerator answers prompts from fixed per-category scripts, consuming
// one answer per call and repeating the last one when a script runs out.
type ScriptedGenerator struct {
	Antecedents []string
	Allergies   []string
	Drugs       []string

	antecedentCalls int
	allergyCalls    int
	drugCalls       int
}

func NewScriptedGenerator() *ScriptedGenerator {
	return &ScriptedGenerator{
		Antecedents: []string{`["Hypertension", "Migraine history", "Asthma"]`},
		Allergies:   []string{`["Penicillin", "Latex"]`},
		Drugs:       []string{`["Lisinopril", "Ibuprofen"]`},
	}
}

func (g *ScriptedGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	switch {
	case strings.Contains(prompt, "may plausibly be taking"):
		return pick(g.Drugs, &g.drugCalls), nil
	case strings.Contains(prompt, "allergies (medications, foods, environmental)"):
		return pick(g.Allergies, &g.allergyCalls), nil
	default:
		return pick(g.Antecedents, &g.antecedentCalls), nil
	}
}

func (g *ScriptedGenerator) DefaultModel() string { return "scripted-model" }

func pick(script []string, calls *int) string {
	if len(script) == 0 {
		return "[]"
	}
	i := *calls
	if i >= len(script) {
		i = len(script) - 1
	}
	*calls++
	return script[i]
}

// RecordingPublisher captures routing keys of published events.
type RecordingPublisher struct {
	RoutingKeys []string
}

var _ messaging.PublisherInterface = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	p.RoutingKeys = append(p.RoutingKeys, routingKey)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }
