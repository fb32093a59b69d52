package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/intake-service/internal/config"
	"github.com/WailSalutem-Health-Care/intake-service/internal/genai"
	"github.com/WailSalutem-Health-Care/intake-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/intake-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/intake-service/internal/telemetry"
	"github.com/WailSalutem-Health-Care/intake-service/pkg/modeltext"
)

// Service implements the intake workflow: suggestion generation, list
// accumulation, and the per-patient record merge policy for every step.
type Service struct {
	store     StoreInterface
	generator genai.Generator
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	limits    config.SuggestionsConfig
}

func NewService(
	store StoreInterface,
	generator genai.Generator,
	publisher messaging.PublisherInterface,
	metrics *telemetry.Metrics,
	logger *zap.Logger,
	limits config.SuggestionsConfig,
) *Service {
	return &Service{
		store:     store,
		generator: generator,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		limits:    limits,
	}
}

// Start validates nothing beyond what the handler already did: it builds the
// antecedent prompt and returns the model's raw answer for the client to
// parse.
func (s *Service) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	exclude := capList(NormalizeList(req.ExcludeAntecedents), s.limits.MaxExclude)

	answer, err := s.generate(ctx, AntecedentPrompt(req.PatientProfile, exclude, s.limits.MaxPerCall))
	if err != nil {
		return nil, err
	}

	if len(exclude) == 0 {
		s.publish(ctx, messaging.EventIntakeStarted, messaging.NewIntakeStartedEvent(
			req.PatientProfile.Key(), req.PatientProfile.Age, string(req.PatientProfile.Gender)))
	}
	s.recordSuggestions(ctx, "antecedents", len(modeltext.ParseStringList(answer)))

	s.logger.Info("antecedent suggestions generated",
		zap.String("patient_key", req.PatientProfile.Key()),
		zap.Int("excluded", len(exclude)))

	return &StartResponse{Answer: answer, Model: s.generator.DefaultModel()}, nil
}

// ConfirmAntecedents saves the confirmed antecedents, then generates the
// first allergy and drug suggestions in the same round trip.
func (s *Service) ConfirmAntecedents(ctx context.Context, req ConfirmAntecedentsRequest) (*ConfirmAntecedentsResponse, error) {
	selected := capList(NormalizeList(req.SelectedAntecedents), s.limits.MaxOptions)

	record, err := s.store.Upsert(ctx, RecordUpdate{
		Profile:             req.PatientProfile,
		SelectedAntecedents: &selected,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save antecedents: %w", err)
	}

	allergySuggestions, err := s.suggestList(ctx, "allergies", AllergyPrompt(
		req.PatientProfile, record.SelectedAntecedents, record.SuggestedAllergies, s.limits.MaxPerCall))
	if err != nil {
		return nil, err
	}
	drugSuggestions, err := s.suggestList(ctx, "drugs", DrugPrompt(
		req.PatientProfile, record.SelectedAntecedents, record.SelectedAllergies,
		record.SuggestedDrugs, s.limits.MaxPerCall))
	if err != nil {
		return nil, err
	}

	mergedAllergies := UnionCap(record.SuggestedAllergies, allergySuggestions, s.limits.MaxOptions)
	mergedDrugs := UnionCap(record.SuggestedDrugs, drugSuggestions, s.limits.MaxOptions)

	record, err = s.store.Upsert(ctx, RecordUpdate{
		Profile:            req.PatientProfile,
		SuggestedAllergies: &mergedAllergies,
		SuggestedDrugs:     &mergedDrugs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save suggestions: %w", err)
	}

	s.logger.Info("antecedents confirmed",
		zap.String("patient_key", record.PatientKey),
		zap.Int("selected", len(selected)),
		zap.Int("suggested_allergies", len(record.SuggestedAllergies)),
		zap.Int("suggested_drugs", len(record.SuggestedDrugs)))

	return &ConfirmAntecedentsResponse{
		Message:            "Antecedents saved.",
		Record:             record,
		SuggestedAllergies: record.SuggestedAllergies,
		SuggestedDrugs:     record.SuggestedDrugs,
		Model:              s.generator.DefaultModel(),
	}, nil
}

// SuggestAllergies generates more allergy suggestions and folds them into the
// record's accumulated suggestion list.
func (s *Service) SuggestAllergies(ctx context.Context, req SuggestAllergiesRequest) (*SuggestAllergiesResponse, error) {
	record := s.currentRecord(ctx, req.PatientProfile)

	exclude := capList(UnionCap(record.SuggestedAllergies, req.ExcludeAllergies, 0), s.limits.MaxExclude)
	suggestions, err := s.suggestList(ctx, "allergies", AllergyPrompt(
		req.PatientProfile, record.SelectedAntecedents, exclude, s.limits.MaxPerCall))
	if err != nil {
		return nil, err
	}

	merged := UnionCap(record.SuggestedAllergies, suggestions, s.limits.MaxOptions)
	newCount := len(merged) - len(NormalizeList(record.SuggestedAllergies))

	update := RecordUpdate{Profile: req.PatientProfile, SuggestedAllergies: &merged}
	if len(req.SelectedAllergies) > 0 {
		selected := NormalizeList(req.SelectedAllergies)
		update.SelectedAllergies = &selected
	}
	record, err = s.store.Upsert(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save allergy suggestions: %w", err)
	}

	message := "Allergy suggestions updated."
	if newCount <= 0 {
		message = "No new allergies suggested."
	}
	return &SuggestAllergiesResponse{
		Message:            message,
		SuggestedAllergies: record.SuggestedAllergies,
		Model:              s.generator.DefaultModel(),
		Record:             record,
	}, nil
}

// ConfirmAllergies saves the confirmed allergies and generates the first drug
// suggestions in the same round trip.
func (s *Service) ConfirmAllergies(ctx context.Context, req ConfirmAllergiesRequest) (*ConfirmAllergiesResponse, error) {
	selected := NormalizeList(req.SelectedAllergies)

	record, err := s.store.Upsert(ctx, RecordUpdate{
		Profile:           req.PatientProfile,
		SelectedAllergies: &selected,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save allergies: %w", err)
	}

	drugSuggestions, err := s.suggestList(ctx, "drugs", DrugPrompt(
		req.PatientProfile, record.SelectedAntecedents, record.SelectedAllergies,
		record.SuggestedDrugs, s.limits.MaxPerCall))
	if err != nil {
		return nil, err
	}

	mergedDrugs := UnionCap(record.SuggestedDrugs, drugSuggestions, s.limits.MaxOptions)
	record, err = s.store.Upsert(ctx, RecordUpdate{
		Profile:        req.PatientProfile,
		SuggestedDrugs: &mergedDrugs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save drug suggestions: %w", err)
	}

	s.logger.Info("allergies confirmed",
		zap.String("patient_key", record.PatientKey),
		zap.Int("selected", len(selected)))

	return &ConfirmAllergiesResponse{
		Message:        "Allergies saved.",
		Record:         record,
		SuggestedDrugs: record.SuggestedDrugs,
		Model:          s.generator.DefaultModel(),
	}, nil
}

// SuggestDrugs generates more drug suggestions and folds them into the
// record's accumulated suggestion list.
func (s *Service) SuggestDrugs(ctx context.Context, req SuggestDrugsRequest) (*SuggestDrugsResponse, error) {
	record := s.currentRecord(ctx, req.PatientProfile)

	exclude := capList(UnionCap(record.SuggestedDrugs, req.ExcludeDrugs, 0), s.limits.MaxExclude)
	suggestions, err := s.suggestList(ctx, "drugs", DrugPrompt(
		req.PatientProfile, record.SelectedAntecedents, record.SelectedAllergies,
		exclude, s.limits.MaxPerCall))
	if err != nil {
		return nil, err
	}

	merged := UnionCap(record.SuggestedDrugs, suggestions, s.limits.MaxOptions)
	newCount := len(merged) - len(NormalizeList(record.SuggestedDrugs))

	update := RecordUpdate{Profile: req.PatientProfile, SuggestedDrugs: &merged}
	if len(req.SelectedDrugs) > 0 {
		selected := NormalizeList(req.SelectedDrugs)
		update.SelectedDrugs = &selected
	}
	record, err = s.store.Upsert(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save drug suggestions: %w", err)
	}

	message := "Drug suggestions updated."
	if newCount <= 0 {
		message = "No new drugs suggested."
	}
	return &SuggestDrugsResponse{
		Message:        message,
		SuggestedDrugs: record.SuggestedDrugs,
		Model:          s.generator.DefaultModel(),
		Record:         record,
	}, nil
}

// ConfirmDrugs saves the confirmed drugs and seeds the first questionnaire
// section if it has not been reached before.
func (s *Service) ConfirmDrugs(ctx context.Context, req ConfirmDrugsRequest) (*ConfirmDrugsResponse, error) {
	selected := NormalizeList(req.SelectedDrugs)

	update := RecordUpdate{
		Profile:       req.PatientProfile,
		SelectedDrugs: &selected,
	}
	existing := s.currentRecord(ctx, req.PatientProfile)
	if len(existing.SymptomOnsetQuestions) == 0 {
		update.Questions = map[SectionID][]Question{
			SectionSymptomOnset: DefaultQuestions(SectionSymptomOnset),
		}
	}

	record, err := s.store.Upsert(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save drugs: %w", err)
	}

	s.logger.Info("drugs confirmed",
		zap.String("patient_key", record.PatientKey),
		zap.Int("selected", len(selected)))

	return &ConfirmDrugsResponse{
		Message:               "Drugs saved.",
		Record:                record,
		SymptomOnsetQuestions: record.SymptomOnsetQuestions,
	}, nil
}

// SaveSection applies the submitted answers to one questionnaire section and
// seeds the next section's defaults the first time it is reached. Saving the
// final section also builds the review summary.
func (s *Service) SaveSection(ctx context.Context, section SectionID, req SaveSectionRequest) (*SaveSectionResponse, error) {
	def, ok := SectionByID(section)
	if !ok {
		return nil, ErrUnknownSection
	}

	record := s.currentRecord(ctx, req.PatientProfile)

	base := record.Questions(section)
	if len(base) == 0 && section == Sections[0].ID {
		base = DefaultQuestions(section)
	}
	current := applyAnswers(base, req.Answers)

	update := RecordUpdate{
		Profile:   req.PatientProfile,
		Questions: map[SectionID][]Question{section: current},
	}

	var seededNext []Question
	if def.Next != "" && len(record.Questions(def.Next)) == 0 {
		seededNext = DefaultQuestions(def.Next)
		update.Questions[def.Next] = seededNext
	}

	record, err := s.store.Upsert(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save section %s: %w", section, err)
	}

	resp := &SaveSectionResponse{
		Message:          def.SaveMessage,
		Record:           record,
		CurrentQuestions: record.Questions(section),
	}
	if seededNext != nil {
		resp.NextSection = def.Next
		resp.NextQuestions = seededNext
	}

	if s.metrics != nil {
		s.metrics.RecordSectionSaved(ctx, string(section))
	}
	s.logger.Info("section saved",
		zap.String("patient_key", record.PatientKey),
		zap.String("section", string(section)),
		zap.Int("answers", len(req.Answers)))

	if section == SectionRedFlags {
		resp.ReviewSummary = BuildReviewSummary(record)
		if s.metrics != nil {
			s.metrics.RecordIntakeCompleted(ctx)
		}
		s.publish(ctx, messaging.EventIntakeCompleted,
			messaging.NewIntakeCompletedEvent(record.PatientKey, len(Sections)))
	}

	return resp, nil
}

// ListRecords returns a page of intake records ordered by most recent update.
func (s *Service) ListRecords(ctx context.Context, params pagination.Params) (*RecordListResponse, error) {
	params.Validate()

	records, total, err := s.store.List(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, fmt.Errorf("failed to list intake records: %w", err)
	}

	return &RecordListResponse{
		Success: true,
		Records: records,
		Meta:    params.CalculateMeta(total),
	}, nil
}

// currentRecord returns the stored record for the profile, or a zero record
// when the patient has not been seen yet.
func (s *Service) currentRecord(ctx context.Context, profile PatientProfile) *Record {
	record, err := s.store.Get(ctx, profile.Key())
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			s.logger.Warn("failed to read intake record",
				zap.String("patient_key", profile.Key()), zap.Error(err))
		}
		return &Record{PatientKey: profile.Key(), Profile: profile}
	}
	return record
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	answer, err := s.generator.Generate(ctx, prompt, "")
	if s.metrics != nil {
		s.metrics.RecordGenAIRequest(ctx, s.generator.DefaultModel(),
			float64(time.Since(start).Milliseconds()), err == nil)
	}
	if err != nil {
		if errors.Is(err, genai.ErrNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrSuggestionFailed, err)
	}
	return answer, nil
}

// suggestList generates and parses one suggestion list. An answer that parses
// to nothing is a valid empty result, not an error.
func (s *Service) suggestList(ctx context.Context, kind, prompt string) ([]string, error) {
	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	items := NormalizeList(modeltext.ParseStringList(answer))
	s.recordSuggestions(ctx, kind, len(items))
	return items, nil
}

func (s *Service) recordSuggestions(ctx context.Context, kind string, count int) {
	if s.metrics != nil {
		s.metrics.RecordSuggestions(ctx, kind, count)
	}
}

func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// applyAnswers sets the trimmed answer on the matching question id; unknown
// ids are ignored.
func applyAnswers(questions []Question, answers []Answer) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	for _, answer := range answers {
		for i := range out {
			if out[i].ID == answer.ID {
				out[i].Answer = strings.TrimSpace(answer.Answer)
				break
			}
		}
	}
	return out
}

func capList(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
