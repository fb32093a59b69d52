package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/config"
	"github.com/WailSalutem-Health-Care/intake-service/internal/genai"
	"github.com/WailSalutem-Health-Care/intake-service/internal/pagination"
)

func testLimits() config.SuggestionsConfig {
	return config.SuggestionsConfig{MaxOptions: 24, MaxPerCall: 8, MaxExclude: 32}
}

func newTestService(generator genai.Generator) (*Service, *MemoryStore, *mockPublisher) {
	store := NewMemoryStore()
	publisher := &mockPublisher{}
	service := NewService(store, generator, publisher, nil, zap.NewNop(), testLimits())
	return service, store, publisher
}

// TestStart_ReturnsRawAnswer tests that the raw model answer passes through
// unparsed
func TestStart_ReturnsRawAnswer(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			return `["Migraine history","Hypertension"]`, nil
		},
	}
	service, _, publisher := newTestService(generator)

	resp, err := service.Start(context.Background(), StartRequest{PatientProfile: testProfile()})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.Answer != `["Migraine history","Hypertension"]` {
		t.Errorf("Expected raw answer passthrough, got '%s'", resp.Answer)
	}
	if resp.Model != "test-model" {
		t.Errorf("Expected model 'test-model', got '%s'", resp.Model)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "intake.started" {
		t.Errorf("Expected one intake.started event, got %v", publisher.published)
	}
}

// TestStart_ExclusionInPrompt tests that excluded antecedents reach the prompt
// and suppress the started event
func TestStart_ExclusionInPrompt(t *testing.T) {
	var captured string
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			captured = prompt
			return `[]`, nil
		},
	}
	service, _, publisher := newTestService(generator)

	_, err := service.Start(context.Background(), StartRequest{
		PatientProfile:     testProfile(),
		ExcludeAntecedents: []string{"Migraine history"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(captured, "Migraine history") {
		t.Errorf("Expected exclusion in prompt, got: %s", captured)
	}
	if len(publisher.published) != 0 {
		t.Errorf("Expected no started event on a follow-up fetch, got %v", publisher.published)
	}
}

// TestStart_NotConfigured tests that the unconfigured-backend error passes
// through for the handler to map
func TestStart_NotConfigured(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			return "", genai.ErrNotConfigured
		},
	}
	service, _, _ := newTestService(generator)

	_, err := service.Start(context.Background(), StartRequest{PatientProfile: testProfile()})
	if !errors.Is(err, genai.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

// TestStart_GenerationFailure tests that backend failures wrap as a
// gateway-class error
func TestStart_GenerationFailure(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			return "", errors.New("upstream timeout")
		},
	}
	service, _, _ := newTestService(generator)

	_, err := service.Start(context.Background(), StartRequest{PatientProfile: testProfile()})
	if !errors.Is(err, ErrSuggestionFailed) {
		t.Errorf("Expected ErrSuggestionFailed, got %v", err)
	}
}

// TestConfirmAntecedents_SeedsAllergiesAndDrugs tests the one-round-trip
// seeding of both downstream groups
func TestConfirmAntecedents_SeedsAllergiesAndDrugs(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			if strings.Contains(prompt, "allergies") {
				return `["Penicillin","Pollen"]`, nil
			}
			return `["Ibuprofen"]`, nil
		},
	}
	service, store, _ := newTestService(generator)

	resp, err := service.ConfirmAntecedents(context.Background(), ConfirmAntecedentsRequest{
		PatientProfile:      testProfile(),
		SelectedAntecedents: []string{"Hypertension"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(resp.SuggestedAllergies) != 2 || resp.SuggestedAllergies[0] != "Penicillin" {
		t.Errorf("Expected allergy suggestions [Penicillin Pollen], got %v", resp.SuggestedAllergies)
	}
	if len(resp.SuggestedDrugs) != 1 || resp.SuggestedDrugs[0] != "Ibuprofen" {
		t.Errorf("Expected drug suggestions [Ibuprofen], got %v", resp.SuggestedDrugs)
	}

	record, err := store.Get(context.Background(), testProfile().Key())
	if err != nil {
		t.Fatalf("Expected record persisted, got: %v", err)
	}
	if len(record.SelectedAntecedents) != 1 || record.SelectedAntecedents[0] != "Hypertension" {
		t.Errorf("Expected antecedents persisted, got %v", record.SelectedAntecedents)
	}
	if len(record.SuggestedAllergies) != 2 || len(record.SuggestedDrugs) != 1 {
		t.Errorf("Expected suggestions persisted, got %v / %v", record.SuggestedAllergies, record.SuggestedDrugs)
	}
}

// TestConfirmAntecedents_SelectionsSavedBeforeGenerationFails tests the
// save-first policy: a backend failure after the save leaves the record intact
func TestConfirmAntecedents_SelectionsSavedBeforeGenerationFails(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			return "", errors.New("backend down")
		},
	}
	service, store, _ := newTestService(generator)

	_, err := service.ConfirmAntecedents(context.Background(), ConfirmAntecedentsRequest{
		PatientProfile:      testProfile(),
		SelectedAntecedents: []string{"Hypertension"},
	})
	if !errors.Is(err, ErrSuggestionFailed) {
		t.Fatalf("Expected ErrSuggestionFailed, got %v", err)
	}

	record, err := store.Get(context.Background(), testProfile().Key())
	if err != nil {
		t.Fatalf("Expected record persisted despite failure, got: %v", err)
	}
	if len(record.SelectedAntecedents) != 1 {
		t.Errorf("Expected antecedents saved before the failure, got %v", record.SelectedAntecedents)
	}
}

// TestSuggestAllergies_AccumulatesAndCaps tests union with the record's
// suggestion history and the option cap
func TestSuggestAllergies_AccumulatesAndCaps(t *testing.T) {
	answers := []string{`["A1","A2"]`, `["A2","A3"]`}
	call := 0
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			answer := answers[call]
			call++
			return answer, nil
		},
	}
	service, _, _ := newTestService(generator)
	ctx := context.Background()

	first, err := service.SuggestAllergies(ctx, SuggestAllergiesRequest{PatientProfile: testProfile()})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(first.SuggestedAllergies) != 2 {
		t.Fatalf("Expected 2 suggestions, got %v", first.SuggestedAllergies)
	}
	if first.Message != "Allergy suggestions updated." {
		t.Errorf("Unexpected message: %s", first.Message)
	}

	second, err := service.SuggestAllergies(ctx, SuggestAllergiesRequest{PatientProfile: testProfile()})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(second.SuggestedAllergies) != 3 {
		t.Errorf("Expected accumulated [A1 A2 A3], got %v", second.SuggestedAllergies)
	}
}

// TestSuggestAllergies_NoNewSuggestions tests the informational zero-new
// message
func TestSuggestAllergies_NoNewSuggestions(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			return "I cannot provide this information.", nil
		},
	}
	service, _, _ := newTestService(generator)

	resp, err := service.SuggestAllergies(context.Background(), SuggestAllergiesRequest{PatientProfile: testProfile()})
	if err != nil {
		t.Fatalf("Expected no error for unparseable answer, got: %v", err)
	}
	if resp.Message != "No new allergies suggested." {
		t.Errorf("Expected zero-new message, got '%s'", resp.Message)
	}
	if len(resp.SuggestedAllergies) != 0 {
		t.Errorf("Expected no suggestions, got %v", resp.SuggestedAllergies)
	}
}

// TestSuggestDrugs_ExclusionForwarded tests that the accumulated history and
// request exclusions both reach the prompt
func TestSuggestDrugs_ExclusionForwarded(t *testing.T) {
	var captured string
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			captured = prompt
			return `[]`, nil
		},
	}
	service, _, _ := newTestService(generator)

	_, err := service.SuggestDrugs(context.Background(), SuggestDrugsRequest{
		PatientProfile: testProfile(),
		ExcludeDrugs:   []string{"Ibuprofen"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(captured, "Ibuprofen") {
		t.Errorf("Expected exclusion in prompt, got: %s", captured)
	}
}

// TestConfirmAllergies_SeedsDrugs tests drug suggestions generated when
// allergies are confirmed
func TestConfirmAllergies_SeedsDrugs(t *testing.T) {
	generator := &mockGenerator{
		generateFunc: func(ctx context.Context, prompt, model string) (string, error) {
			return `["Paracetamol"]`, nil
		},
	}
	service, _, _ := newTestService(generator)

	resp, err := service.ConfirmAllergies(context.Background(), ConfirmAllergiesRequest{
		PatientProfile:    testProfile(),
		SelectedAllergies: []string{"Penicillin"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.Message != "Allergies saved." {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
	if len(resp.SuggestedDrugs) != 1 || resp.SuggestedDrugs[0] != "Paracetamol" {
		t.Errorf("Expected drug suggestions [Paracetamol], got %v", resp.SuggestedDrugs)
	}
	if len(resp.Record.SelectedAllergies) != 1 {
		t.Errorf("Expected allergies persisted, got %v", resp.Record.SelectedAllergies)
	}
}

// TestConfirmDrugs_SeedsFirstSection tests first-section seeding, once only
func TestConfirmDrugs_SeedsFirstSection(t *testing.T) {
	service, store, _ := newTestService(&mockGenerator{})
	ctx := context.Background()

	resp, err := service.ConfirmDrugs(ctx, ConfirmDrugsRequest{
		PatientProfile: testProfile(),
		SelectedDrugs:  []string{"Ibuprofen"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(resp.SymptomOnsetQuestions) == 0 {
		t.Fatal("Expected symptom onset questions seeded")
	}

	// Answer a question, then confirm drugs again: the seeded section must
	// not be reset.
	answered := resp.SymptomOnsetQuestions
	answered[0].Answer = "two days ago"
	if _, err := store.Upsert(ctx, RecordUpdate{
		Profile:   testProfile(),
		Questions: map[SectionID][]Question{SectionSymptomOnset: answered},
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	resp, err = service.ConfirmDrugs(ctx, ConfirmDrugsRequest{
		PatientProfile: testProfile(),
		SelectedDrugs:  []string{"Ibuprofen", "Omeprazole"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.SymptomOnsetQuestions[0].Answer != "two days ago" {
		t.Errorf("Expected existing answers preserved, got '%s'", resp.SymptomOnsetQuestions[0].Answer)
	}
}

// TestSaveSection_FirstSectionDefaults tests that the first section falls
// back to defaults when empty and answers apply by id
func TestSaveSection_FirstSectionDefaults(t *testing.T) {
	service, _, _ := newTestService(&mockGenerator{})

	resp, err := service.SaveSection(context.Background(), SectionSymptomOnset, SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers: []Answer{
			{ID: "onset-when", Answer: "  two days ago  "},
			{ID: "not-a-real-id", Answer: "ignored"},
		},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(resp.CurrentQuestions) != 3 {
		t.Fatalf("Expected 3 default questions, got %d", len(resp.CurrentQuestions))
	}
	if resp.CurrentQuestions[0].Answer != "two days ago" {
		t.Errorf("Expected trimmed answer applied, got '%s'", resp.CurrentQuestions[0].Answer)
	}
	if resp.NextSection != SectionEvaluation {
		t.Errorf("Expected next section seeded, got '%s'", resp.NextSection)
	}
	if len(resp.NextQuestions) == 0 {
		t.Error("Expected next section defaults in response")
	}
	for _, q := range resp.NextQuestions {
		if q.Answer != "" {
			t.Errorf("Expected blank answers in seeded section, got '%s'", q.Answer)
		}
	}
}

// TestSaveSection_SeedsNextOnlyOnce tests that re-saving a section does not
// re-seed the following one
func TestSaveSection_SeedsNextOnlyOnce(t *testing.T) {
	service, store, _ := newTestService(&mockGenerator{})
	ctx := context.Background()

	if _, err := service.SaveSection(ctx, SectionSymptomOnset, SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers:        []Answer{{ID: "onset-when", Answer: "yesterday"}},
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Answer something in the seeded evaluation section.
	record, _ := store.Get(ctx, testProfile().Key())
	evaluation := record.EvaluationQuestions
	evaluation[0].Answer = "8"
	if _, err := store.Upsert(ctx, RecordUpdate{
		Profile:   testProfile(),
		Questions: map[SectionID][]Question{SectionEvaluation: evaluation},
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	resp, err := service.SaveSection(ctx, SectionSymptomOnset, SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers:        []Answer{{ID: "onset-mode", Answer: "suddenly"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.NextQuestions != nil {
		t.Error("Expected no re-seed of an already populated next section")
	}
	if resp.Record.EvaluationQuestions[0].Answer != "8" {
		t.Errorf("Expected evaluation answer preserved, got '%s'", resp.Record.EvaluationQuestions[0].Answer)
	}
}

// TestSaveSection_UnknownSection tests the unknown-section error
func TestSaveSection_UnknownSection(t *testing.T) {
	service, _, _ := newTestService(&mockGenerator{})

	_, err := service.SaveSection(context.Background(), SectionID("nonsense"), SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers:        []Answer{{ID: "x"}},
	})
	if !errors.Is(err, ErrUnknownSection) {
		t.Errorf("Expected ErrUnknownSection, got %v", err)
	}
}

// TestSaveSection_RedFlagsBuildsSummary tests the final-section review
// summary and completion event
func TestSaveSection_RedFlagsBuildsSummary(t *testing.T) {
	service, store, publisher := newTestService(&mockGenerator{})
	ctx := context.Background()

	selected := []string{"Hypertension"}
	if _, err := store.Upsert(ctx, RecordUpdate{
		Profile:             testProfile(),
		SelectedAntecedents: &selected,
		Questions: map[SectionID][]Question{
			SectionRedFlags: DefaultQuestions(SectionRedFlags),
		},
	}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	resp, err := service.SaveSection(ctx, SectionRedFlags, SaveSectionRequest{
		PatientProfile: testProfile(),
		Answers:        []Answer{{ID: "redflag-breathing", Answer: "no"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.ReviewSummary == "" {
		t.Fatal("Expected review summary on the final section")
	}
	if !strings.Contains(resp.ReviewSummary, "Chief complaint: headache") {
		t.Errorf("Expected profile in summary, got:\n%s", resp.ReviewSummary)
	}
	if !strings.Contains(resp.ReviewSummary, "Hypertension") {
		t.Errorf("Expected confirmed antecedents in summary, got:\n%s", resp.ReviewSummary)
	}
	if !strings.Contains(resp.ReviewSummary, "A: no") {
		t.Errorf("Expected answers in summary, got:\n%s", resp.ReviewSummary)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "intake.completed" {
		t.Errorf("Expected intake.completed event, got %v", publisher.published)
	}
	if resp.NextQuestions != nil {
		t.Error("Expected no next section after the final one")
	}
}

// TestListRecords_Paginates tests the paginated listing
func TestListRecords_Paginates(t *testing.T) {
	service, store, _ := newTestService(&mockGenerator{})
	ctx := context.Background()

	for _, complaint := range []string{"headache", "cough", "back pain"} {
		profile := PatientProfile{Age: 40, Gender: GenderMale, ChiefComplaint: complaint}
		if _, err := store.Upsert(ctx, RecordUpdate{Profile: profile}); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	resp, err := service.ListRecords(ctx, pagination.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success true")
	}
	if len(resp.Records) != 2 {
		t.Errorf("Expected 2 records on page 1, got %d", len(resp.Records))
	}
	if resp.Meta.TotalRecords != 3 || resp.Meta.TotalPages != 2 {
		t.Errorf("Unexpected meta: %+v", resp.Meta)
	}
}

// mockGenerator is a scripted stand-in for the generative backend
type mockGenerator struct {
	generateFunc func(ctx context.Context, prompt, model string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt, model)
	}
	return `[]`, nil
}

func (m *mockGenerator) DefaultModel() string { return "test-model" }

// mockPublisher records published routing keys
type mockPublisher struct {
	published  []string
	publishErr error
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, routingKey)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
