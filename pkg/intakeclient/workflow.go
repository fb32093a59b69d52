package intakeclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/WailSalutem-Health-Care/intake-service/pkg/modeltext"
)

// Stage is the wizard step the workflow is currently on.
type Stage string

const (
	StageForm          Stage = "form"
	StageAntecedents   Stage = "antecedents"
	StageAllergies     Stage = "allergies"
	StageDrugs         Stage = "drugs"
	StageQuestionnaire Stage = "questionnaire"
	StageReviewed      Stage = "reviewed"
)

// ErrInvalidForm is returned by Submit when the profile form fails
// validation. The per-field messages are available through the form
// snapshot; no network call is made.
var ErrInvalidForm = errors.New("intake form is invalid")

// Workflow drives the guided intake end to end: profile form, the three
// selection groups, and the ten questionnaire sections. It owns the stage
// progression and all calls against the service.
type Workflow struct {
	api API

	form        *IntakeForm
	antecedents *SelectionGroup
	allergies   *SelectionGroup
	drugs       *SelectionGroup
	sections    map[SectionID]*QuestionSection

	mu             sync.Mutex
	stage          Stage
	hasSubmitted   bool
	profile        PatientProfile
	currentSection SectionID
	reviewSummary  string
}

// NewWorkflow creates a workflow bound to the given service API.
func NewWorkflow(api API) *Workflow {
	w := &Workflow{
		api:         api,
		form:        NewIntakeForm(),
		antecedents: newSelectionGroup("Please select or add at least one antecedent."),
		allergies:   newSelectionGroup("Please select or add at least one allergy."),
		drugs:       newSelectionGroup("Please select or add at least one medication."),
		sections:    make(map[SectionID]*QuestionSection, len(SectionOrder)),
		stage:       StageForm,
	}
	for _, id := range SectionOrder {
		w.sections[id] = newQuestionSection(id)
	}

	w.antecedents.fetch = w.fetchAntecedents
	w.antecedents.save = w.saveAntecedents
	w.allergies.fetch = w.fetchAllergies
	w.allergies.save = w.saveAllergies
	w.drugs.fetch = w.fetchDrugs
	w.drugs.save = w.saveDrugs
	return w
}

// Form returns the profile form.
func (w *Workflow) Form() *IntakeForm { return w.form }

// Antecedents returns the antecedent selection group.
func (w *Workflow) Antecedents() *SelectionGroup { return w.antecedents }

// Allergies returns the allergy selection group.
func (w *Workflow) Allergies() *SelectionGroup { return w.allergies }

// Drugs returns the medication selection group.
func (w *Workflow) Drugs() *SelectionGroup { return w.drugs }

// Section returns the questionnaire section with the given id, or nil.
func (w *Workflow) Section(id SectionID) *QuestionSection { return w.sections[id] }

// Stage returns the current wizard stage.
func (w *Workflow) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// CurrentSection returns the questionnaire section the wizard is on, empty
// before the questionnaire starts.
func (w *Workflow) CurrentSection() SectionID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentSection
}

// ReviewSummary returns the final intake summary, set once the red flags
// section has been saved.
func (w *Workflow) ReviewSummary() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reviewSummary
}

// Submit validates the form and starts a fresh intake run: all downstream
// state is reset and the first batch of antecedent suggestions is fetched.
// Validation failures surface through the form snapshot and make no network
// call.
func (w *Workflow) Submit(ctx context.Context) error {
	if errs := w.form.Validate(); len(errs) > 0 {
		return ErrInvalidForm
	}
	profile := w.form.Profile()

	w.resetDownstream()

	w.mu.Lock()
	w.profile = profile
	w.hasSubmitted = true
	w.mu.Unlock()

	if err := w.antecedents.InitialFetch(ctx); err != nil {
		return err
	}

	w.mu.Lock()
	w.stage = StageAntecedents
	w.mu.Unlock()
	return nil
}

// RequestMoreAntecedents fetches another batch of antecedent suggestions.
// Before the first submission it behaves like Submit's initial fetch and
// consumes no budget.
func (w *Workflow) RequestMoreAntecedents(ctx context.Context) {
	w.mu.Lock()
	submitted := w.hasSubmitted
	w.mu.Unlock()

	if !submitted {
		if err := w.Submit(ctx); err != nil && !errors.Is(err, ErrInvalidForm) {
			return
		}
		return
	}
	w.antecedents.RequestMore(ctx)
}

// RequestMoreAllergies fetches another batch of allergy suggestions.
func (w *Workflow) RequestMoreAllergies(ctx context.Context) {
	w.allergies.RequestMore(ctx)
}

// RequestMoreDrugs fetches another batch of medication suggestions.
func (w *Workflow) RequestMoreDrugs(ctx context.Context) {
	w.drugs.RequestMore(ctx)
}

// SaveConfirmedAntecedents persists the confirmed antecedents. On success
// the allergy and medication groups are seeded from the suggestions the
// service generated alongside the save.
func (w *Workflow) SaveConfirmedAntecedents(ctx context.Context) error {
	return w.antecedents.SaveConfirmation(ctx)
}

// SaveConfirmedAllergies persists the confirmed allergies, reseeds the
// medication suggestions, and restarts the questionnaire chain.
func (w *Workflow) SaveConfirmedAllergies(ctx context.Context) error {
	return w.allergies.SaveConfirmation(ctx)
}

// SaveConfirmedDrugs persists the confirmed medications and opens the
// questionnaire on the symptom onset section.
func (w *Workflow) SaveConfirmedDrugs(ctx context.Context) error {
	return w.drugs.SaveConfirmation(ctx)
}

// UpdateAnswer records an answer for a question in the given section.
func (w *Workflow) UpdateAnswer(section SectionID, questionID, answer string) {
	if s := w.sections[section]; s != nil {
		s.UpdateAnswer(questionID, answer)
	}
}

// SaveSection persists the given section's answers. On success the section's
// questions are refreshed from the server response, keeping local answers,
// and the next section is seeded when the service opens one. Saving the red
// flags section completes the intake and stores the review summary.
func (w *Workflow) SaveSection(ctx context.Context, sectionID SectionID) error {
	section := w.sections[sectionID]
	if section == nil {
		return fmt.Errorf("unknown section %q", sectionID)
	}
	ok, _ := section.beginSave()
	if !ok {
		return nil
	}

	resp, err := w.api.SaveSection(ctx, sectionID, SaveSectionRequest{
		PatientProfile: w.currentProfile(),
		Answers:        section.Answers(),
	})
	if err != nil {
		section.finishSave("", errorMessage(err))
		return err
	}

	section.MergeCurrent(resp.CurrentQuestions)
	if resp.NextSection != "" {
		if next := w.sections[resp.NextSection]; next != nil {
			next.Seed(resp.NextQuestions)
		}
		w.mu.Lock()
		w.currentSection = resp.NextSection
		w.mu.Unlock()
	}
	if resp.ReviewSummary != "" {
		w.mu.Lock()
		w.reviewSummary = resp.ReviewSummary
		w.stage = StageReviewed
		w.mu.Unlock()
	}
	section.finishSave(resp.Message, "")
	return nil
}

// ResetForm abandons the current run and returns the wizard to the profile
// form with default values. In-flight requests are discarded when they land.
func (w *Workflow) ResetForm() {
	w.form.Reset()
	w.resetDownstream()
	w.mu.Lock()
	w.hasSubmitted = false
	w.profile = PatientProfile{}
	w.mu.Unlock()
}

func (w *Workflow) resetDownstream() {
	w.antecedents.Reset()
	w.allergies.Reset()
	w.drugs.Reset()
	w.resetQuestionnaire()
	w.mu.Lock()
	w.stage = StageForm
	w.currentSection = ""
	w.reviewSummary = ""
	w.mu.Unlock()
}

func (w *Workflow) resetQuestionnaire() {
	for _, id := range SectionOrder {
		w.sections[id].Reset()
	}
	w.mu.Lock()
	w.currentSection = ""
	w.reviewSummary = ""
	w.mu.Unlock()
}

func (w *Workflow) currentProfile() PatientProfile {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.hasSubmitted {
		return w.profile
	}
	return w.form.Profile()
}

// fetchAntecedents asks the service to start (or extend) the antecedent
// suggestions. The service returns the raw model answer; the structured list
// is extracted client-side.
func (w *Workflow) fetchAntecedents(ctx context.Context, _ []string, exclude []string) (*fetchResult, error) {
	resp, err := w.api.Start(ctx, StartRequest{
		PatientProfile:     w.currentProfile(),
		ExcludeAntecedents: exclude,
	})
	if err != nil {
		return nil, err
	}
	return &fetchResult{suggestions: modeltext.ParseStringList(resp.Answer)}, nil
}

func (w *Workflow) saveAntecedents(ctx context.Context, confirmed []string) (string, []string, []string, error) {
	resp, err := w.api.ConfirmAntecedents(ctx, ConfirmAntecedentsRequest{
		PatientProfile:      w.currentProfile(),
		SelectedAntecedents: confirmed,
	})
	if err != nil {
		return "", nil, nil, err
	}

	record := resp.Record
	if record == nil {
		record = &Record{}
	}
	w.allergies.Sync(resp.SuggestedAllergies, record.SelectedAllergies)
	w.drugs.Sync(resp.SuggestedDrugs, record.SelectedDrugs)

	w.mu.Lock()
	w.stage = StageAllergies
	w.mu.Unlock()

	message := resp.Message
	if n := len(resp.SuggestedAllergies); n > 0 {
		message += fmt.Sprintf(" Suggested %d possible allergies.", n)
	}
	if n := len(resp.SuggestedDrugs); n > 0 {
		message += fmt.Sprintf(" Suggested %d possible medications.", n)
	}
	return message, nil, record.SelectedAntecedents, nil
}

func (w *Workflow) fetchAllergies(ctx context.Context, selected, exclude []string) (*fetchResult, error) {
	resp, err := w.api.SuggestAllergies(ctx, SuggestAllergiesRequest{
		PatientProfile:    w.currentProfile(),
		SelectedAllergies: selected,
		ExcludeAllergies:  exclude,
	})
	if err != nil {
		return nil, err
	}
	result := &fetchResult{suggestions: resp.SuggestedAllergies}
	if resp.Record != nil {
		result.recordSuggested = resp.Record.SuggestedAllergies
		result.recordSelected = resp.Record.SelectedAllergies
	}
	return result, nil
}

func (w *Workflow) saveAllergies(ctx context.Context, confirmed []string) (string, []string, []string, error) {
	resp, err := w.api.ConfirmAllergies(ctx, ConfirmAllergiesRequest{
		PatientProfile:    w.currentProfile(),
		SelectedAllergies: confirmed,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message == GenericSubmissionError {
			apiErr.Message = "Unable to save the allergies. Please try again."
		}
		return "", nil, nil, err
	}

	record := resp.Record
	if record == nil {
		record = &Record{}
	}
	w.drugs.Sync(resp.SuggestedDrugs, record.SelectedDrugs)
	w.resetQuestionnaire()

	w.mu.Lock()
	w.stage = StageDrugs
	w.mu.Unlock()

	return resp.Message, record.SuggestedAllergies, record.SelectedAllergies, nil
}

func (w *Workflow) fetchDrugs(ctx context.Context, selected, exclude []string) (*fetchResult, error) {
	resp, err := w.api.SuggestDrugs(ctx, SuggestDrugsRequest{
		PatientProfile: w.currentProfile(),
		SelectedDrugs:  selected,
		ExcludeDrugs:   exclude,
	})
	if err != nil {
		return nil, err
	}
	result := &fetchResult{suggestions: resp.SuggestedDrugs}
	if resp.Record != nil {
		result.recordSuggested = resp.Record.SuggestedDrugs
		result.recordSelected = resp.Record.SelectedDrugs
	}
	return result, nil
}

func (w *Workflow) saveDrugs(ctx context.Context, confirmed []string) (string, []string, []string, error) {
	resp, err := w.api.ConfirmDrugs(ctx, ConfirmDrugsRequest{
		PatientProfile: w.currentProfile(),
		SelectedDrugs:  confirmed,
	})
	if err != nil {
		return "", nil, nil, err
	}

	record := resp.Record
	if record == nil {
		record = &Record{}
	}
	w.sections[SectionSymptomOnset].Seed(resp.SymptomOnsetQuestions)

	w.mu.Lock()
	w.stage = StageQuestionnaire
	w.currentSection = SectionSymptomOnset
	w.mu.Unlock()

	return resp.Message, record.SuggestedDrugs, record.SelectedDrugs, nil
}
