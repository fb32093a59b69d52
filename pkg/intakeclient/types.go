// Package intakeclient is the client-side engine for the guided intake
// wizard. It owns the workflow state (form, selection groups, question
// sections) and drives the calls against the intake service; rendering is the
// caller's concern.
package intakeclient

import "time"

// Gender is the patient's reported gender.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// PatientProfile identifies one intake run.
type PatientProfile struct {
	Age            int    `json:"age"`
	Gender         Gender `json:"gender"`
	ChiefComplaint string `json:"chiefComplaint"`
}

// Question is one prompt/answer pair inside a questionnaire section.
type Question struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// Answer carries a user-supplied answer for a question id.
type Answer struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// SectionID names one step of the ten-part symptom questionnaire.
type SectionID string

const (
	SectionSymptomOnset         SectionID = "symptom-onset"
	SectionEvaluation           SectionID = "evaluation"
	SectionLocation             SectionID = "location"
	SectionCharacteristics      SectionID = "characteristics"
	SectionAssociatedSymptoms   SectionID = "associated-symptoms"
	SectionPrecipitatingFactors SectionID = "precipitating-factors"
	SectionRecentExposures      SectionID = "recent-exposures"
	SectionFunctionalImpact     SectionID = "functional-impact"
	SectionPriorTherapies       SectionID = "prior-therapies"
	SectionRedFlags             SectionID = "red-flags"
)

// SectionOrder lists the questionnaire sections in chain order.
var SectionOrder = []SectionID{
	SectionSymptomOnset,
	SectionEvaluation,
	SectionLocation,
	SectionCharacteristics,
	SectionAssociatedSymptoms,
	SectionPrecipitatingFactors,
	SectionRecentExposures,
	SectionFunctionalImpact,
	SectionPriorTherapies,
	SectionRedFlags,
}

// Record mirrors the server's per-patient intake record. The client reads
// only the list fields; question lists arrive through the section responses.
type Record struct {
	PatientKey          string         `json:"patientKey"`
	Profile             PatientProfile `json:"profile"`
	SelectedAntecedents []string       `json:"selectedAntecedents"`
	SelectedAllergies   []string       `json:"selectedAllergies"`
	SelectedDrugs       []string       `json:"selectedDrugs"`
	SuggestedAllergies  []string       `json:"suggestedAllergies"`
	SuggestedDrugs      []string       `json:"suggestedDrugs"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

type StartRequest struct {
	PatientProfile     PatientProfile `json:"patientProfile"`
	ExcludeAntecedents []string       `json:"excludeAntecedents,omitempty"`
}

type StartResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

type ConfirmAntecedentsRequest struct {
	PatientProfile      PatientProfile `json:"patientProfile"`
	SelectedAntecedents []string       `json:"selectedAntecedents"`
}

type ConfirmAntecedentsResponse struct {
	Message            string   `json:"message"`
	Record             *Record  `json:"record"`
	SuggestedAllergies []string `json:"suggestedAllergies"`
	SuggestedDrugs     []string `json:"suggestedDrugs"`
	Model              string   `json:"model"`
}

type SuggestAllergiesRequest struct {
	PatientProfile    PatientProfile `json:"patientProfile"`
	SelectedAllergies []string       `json:"selectedAllergies,omitempty"`
	ExcludeAllergies  []string       `json:"excludeAllergies,omitempty"`
}

type SuggestAllergiesResponse struct {
	Message            string   `json:"message"`
	SuggestedAllergies []string `json:"suggestedAllergies"`
	Model              string   `json:"model"`
	Record             *Record  `json:"record"`
}

type ConfirmAllergiesRequest struct {
	PatientProfile    PatientProfile `json:"patientProfile"`
	SelectedAllergies []string       `json:"selectedAllergies"`
}

type ConfirmAllergiesResponse struct {
	Message        string   `json:"message"`
	Record         *Record  `json:"record"`
	SuggestedDrugs []string `json:"suggestedDrugs"`
	Model          string   `json:"model"`
}

type SuggestDrugsRequest struct {
	PatientProfile PatientProfile `json:"patientProfile"`
	SelectedDrugs  []string       `json:"selectedDrugs,omitempty"`
	ExcludeDrugs   []string       `json:"excludeDrugs,omitempty"`
}

type SuggestDrugsResponse struct {
	Message        string   `json:"message"`
	SuggestedDrugs []string `json:"suggestedDrugs"`
	Model          string   `json:"model"`
	Record         *Record  `json:"record"`
}

type ConfirmDrugsRequest struct {
	PatientProfile PatientProfile `json:"patientProfile"`
	SelectedDrugs  []string       `json:"selectedDrugs"`
}

type ConfirmDrugsResponse struct {
	Message               string     `json:"message"`
	Record                *Record    `json:"record"`
	SymptomOnsetQuestions []Question `json:"symptomOnsetQuestions"`
}

type SaveSectionRequest struct {
	PatientProfile PatientProfile `json:"patientProfile"`
	Answers        []Answer       `json:"answers"`
}

type SaveSectionResponse struct {
	Message          string     `json:"message"`
	Record           *Record    `json:"record"`
	CurrentQuestions []Question `json:"currentQuestions"`
	NextSection      SectionID  `json:"nextSection,omitempty"`
	NextQuestions    []Question `json:"nextQuestions,omitempty"`
	ReviewSummary    string     `json:"reviewSummary,omitempty"`
}
