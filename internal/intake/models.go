package intake

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the patient's reported gender.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// PatientProfile identifies one intake run. The same (age, gender, chief
// complaint) triple always maps to the same record.
type PatientProfile struct {
	Age            int    `json:"age" validate:"min=0,max=140"`
	Gender         Gender `json:"gender" validate:"required,oneof=Male Female"`
	ChiefComplaint string `json:"chiefComplaint" validate:"required,max=1000"`
}

// Key derives the record lookup key from the profile fields.
func (p PatientProfile) Key() string {
	return fmt.Sprintf("%d|%s|%s", p.Age, p.Gender, strings.TrimSpace(p.ChiefComplaint))
}

// Question is one prompt/answer pair inside a questionnaire section.
type Question struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Answer carries a user-supplied answer for a question id.
type Answer struct {
	ID     string `json:"id" validate:"required"`
	Answer string `json:"answer"`
}

// Record is the authoritative accumulation of one intake run, keyed by the
// patient key.
type Record struct {
	PatientKey string         `json:"patientKey"`
	Profile    PatientProfile `json:"profile"`

	SelectedAntecedents []string `json:"selectedAntecedents"`
	SelectedAllergies   []string `json:"selectedAllergies"`
	SelectedDrugs       []string `json:"selectedDrugs"`
	SuggestedAllergies  []string `json:"suggestedAllergies"`
	SuggestedDrugs      []string `json:"suggestedDrugs"`

	SymptomOnsetQuestions         []Question `json:"symptomOnsetQuestions"`
	EvaluationQuestions           []Question `json:"evaluationQuestions"`
	LocationQuestions             []Question `json:"locationQuestions"`
	CharacteristicsQuestions      []Question `json:"characteristicsQuestions"`
	AssociatedSymptomsQuestions   []Question `json:"associatedSymptomsQuestions"`
	PrecipitatingFactorsQuestions []Question `json:"precipitatingFactorsQuestions"`
	RecentExposuresQuestions      []Question `json:"recentExposuresQuestions"`
	FunctionalImpactQuestions     []Question `json:"functionalImpactQuestions"`
	PriorTherapiesQuestions       []Question `json:"priorTherapiesQuestions"`
	RedFlagsQuestions             []Question `json:"redFlagsQuestions"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Questions returns the question list held for the given section.
func (r *Record) Questions(section SectionID) []Question {
	switch section {
	case SectionSymptomOnset:
		return r.SymptomOnsetQuestions
	case SectionEvaluation:
		return r.EvaluationQuestions
	case SectionLocation:
		return r.LocationQuestions
	case SectionCharacteristics:
		return r.CharacteristicsQuestions
	case SectionAssociatedSymptoms:
		return r.AssociatedSymptomsQuestions
	case SectionPrecipitatingFactors:
		return r.PrecipitatingFactorsQuestions
	case SectionRecentExposures:
		return r.RecentExposuresQuestions
	case SectionFunctionalImpact:
		return r.FunctionalImpactQuestions
	case SectionPriorTherapies:
		return r.PriorTherapiesQuestions
	case SectionRedFlags:
		return r.RedFlagsQuestions
	}
	return nil
}

// SetQuestions replaces the question list held for the given section.
func (r *Record) SetQuestions(section SectionID, questions []Question) {
	switch section {
	case SectionSymptomOnset:
		r.SymptomOnsetQuestions = questions
	case SectionEvaluation:
		r.EvaluationQuestions = questions
	case SectionLocation:
		r.LocationQuestions = questions
	case SectionCharacteristics:
		r.CharacteristicsQuestions = questions
	case SectionAssociatedSymptoms:
		r.AssociatedSymptomsQuestions = questions
	case SectionPrecipitatingFactors:
		r.PrecipitatingFactorsQuestions = questions
	case SectionRecentExposures:
		r.RecentExposuresQuestions = questions
	case SectionFunctionalImpact:
		r.FunctionalImpactQuestions = questions
	case SectionPriorTherapies:
		r.PriorTherapiesQuestions = questions
	case SectionRedFlags:
		r.RedFlagsQuestions = questions
	}
}

// NormalizeList trims every entry, drops empties, and de-duplicates preserving
// first occurrence.
func NormalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// UnionCap appends the normalized items of extra that are not already in base,
// preserving order, and caps the result at limit entries.
func UnionCap(base, extra []string, limit int) []string {
	out := NormalizeList(base)
	seen := make(map[string]struct{}, len(out))
	for _, item := range out {
		seen[item] = struct{}{}
	}
	for _, item := range NormalizeList(extra) {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
