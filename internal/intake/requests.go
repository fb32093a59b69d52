package intake

import "github.com/WailSalutem-Health-Care/intake-service/internal/pagination"

// StartRequest opens an intake run and asks for the first antecedent
// suggestions.
type StartRequest struct {
	PatientProfile     PatientProfile `json:"patientProfile" validate:"required"`
	ExcludeAntecedents []string       `json:"excludeAntecedents" validate:"max=32"`
}

// StartResponse carries the model's raw answer; the caller parses it into a
// suggestion list.
type StartResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

// ConfirmAntecedentsRequest persists the confirmed antecedents.
type ConfirmAntecedentsRequest struct {
	PatientProfile      PatientProfile `json:"patientProfile" validate:"required"`
	SelectedAntecedents []string       `json:"selectedAntecedents" validate:"required,min=1,max=24"`
}

// ConfirmAntecedentsResponse returns the saved record plus the first allergy
// and drug suggestions, generated in the same round trip.
type ConfirmAntecedentsResponse struct {
	Message            string   `json:"message"`
	Record             *Record  `json:"record"`
	SuggestedAllergies []string `json:"suggestedAllergies"`
	SuggestedDrugs     []string `json:"suggestedDrugs"`
	Model              string   `json:"model"`
}

// SuggestAllergiesRequest asks for more allergy suggestions.
type SuggestAllergiesRequest struct {
	PatientProfile    PatientProfile `json:"patientProfile" validate:"required"`
	SelectedAllergies []string       `json:"selectedAllergies" validate:"max=48"`
	ExcludeAllergies  []string       `json:"excludeAllergies" validate:"max=32"`
}

type SuggestAllergiesResponse struct {
	Message            string   `json:"message"`
	SuggestedAllergies []string `json:"suggestedAllergies"`
	Model              string   `json:"model"`
	Record             *Record  `json:"record"`
}

// ConfirmAllergiesRequest persists the confirmed allergies.
type ConfirmAllergiesRequest struct {
	PatientProfile    PatientProfile `json:"patientProfile" validate:"required"`
	SelectedAllergies []string       `json:"selectedAllergies" validate:"required,min=1,max=48"`
}

// ConfirmAllergiesResponse returns the saved record plus the first drug
// suggestions.
type ConfirmAllergiesResponse struct {
	Message        string   `json:"message"`
	Record         *Record  `json:"record"`
	SuggestedDrugs []string `json:"suggestedDrugs"`
	Model          string   `json:"model"`
}

// SuggestDrugsRequest asks for more drug suggestions.
type SuggestDrugsRequest struct {
	PatientProfile PatientProfile `json:"patientProfile" validate:"required"`
	SelectedDrugs  []string       `json:"selectedDrugs" validate:"max=48"`
	ExcludeDrugs   []string       `json:"excludeDrugs" validate:"max=32"`
}

type SuggestDrugsResponse struct {
	Message        string   `json:"message"`
	SuggestedDrugs []string `json:"suggestedDrugs"`
	Model          string   `json:"model"`
	Record         *Record  `json:"record"`
}

// ConfirmDrugsRequest persists the confirmed drugs.
type ConfirmDrugsRequest struct {
	PatientProfile PatientProfile `json:"patientProfile" validate:"required"`
	SelectedDrugs  []string       `json:"selectedDrugs" validate:"required,min=1,max=48"`
}

// ConfirmDrugsResponse returns the saved record plus the first questionnaire
// section, seeded with its default questions.
type ConfirmDrugsResponse struct {
	Message               string     `json:"message"`
	Record                *Record    `json:"record"`
	SymptomOnsetQuestions []Question `json:"symptomOnsetQuestions"`
}

// SaveSectionRequest persists the answers for one questionnaire section.
type SaveSectionRequest struct {
	PatientProfile PatientProfile `json:"patientProfile" validate:"required"`
	Answers        []Answer       `json:"answers" validate:"required,min=1,max=32,dive"`
}

// SaveSectionResponse echoes the saved section and, the first time the next
// section is reached, its default questions. The final section also carries
// the full review summary.
type SaveSectionResponse struct {
	Message          string     `json:"message"`
	Record           *Record    `json:"record"`
	CurrentQuestions []Question `json:"currentQuestions"`
	NextSection      SectionID  `json:"nextSection,omitempty"`
	NextQuestions    []Question `json:"nextQuestions,omitempty"`
	ReviewSummary    string     `json:"reviewSummary,omitempty"`
}

// RecordListResponse is a page of intake records.
type RecordListResponse struct {
	Success bool            `json:"success"`
	Records []Record        `json:"records"`
	Meta    pagination.Meta `json:"meta"`
}
