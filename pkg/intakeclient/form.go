package intakeclient

import (
	"strings"
	"sync"
)

// Form field names used for touched tracking and validation errors.
const (
	FieldAge            = "age"
	FieldGender         = "gender"
	FieldChiefComplaint = "chiefComplaint"
)

// IntakeForm holds the patient profile inputs of the wizard's first step.
// Validation errors are only surfaced for fields the user has touched or
// after a submission attempt.
type IntakeForm struct {
	mu sync.Mutex

	age            int
	gender         Gender
	chiefComplaint string
	touched        map[string]bool
}

// FormSnapshot is a copy of the form state for rendering, including the
// per-field validation errors visible right now.
type FormSnapshot struct {
	Age            int
	Gender         Gender
	ChiefComplaint string
	Errors         map[string]string
}

// NewIntakeForm returns a form with the default profile: a 30 year old
// female with no chief complaint.
func NewIntakeForm() *IntakeForm {
	return &IntakeForm{
		age:     30,
		gender:  GenderFemale,
		touched: make(map[string]bool),
	}
}

// SetAge updates the age field and marks it touched.
func (f *IntakeForm) SetAge(age int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.age = age
	f.touched[FieldAge] = true
}

// SetGender updates the gender field and marks it touched.
func (f *IntakeForm) SetGender(gender Gender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gender = gender
	f.touched[FieldGender] = true
}

// SetChiefComplaint updates the chief complaint and marks it touched.
func (f *IntakeForm) SetChiefComplaint(complaint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chiefComplaint = complaint
	f.touched[FieldChiefComplaint] = true
}

// Profile returns the current profile with the chief complaint trimmed.
func (f *IntakeForm) Profile() PatientProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileLocked()
}

func (f *IntakeForm) profileLocked() PatientProfile {
	return PatientProfile{
		Age:            f.age,
		Gender:         f.gender,
		ChiefComplaint: strings.TrimSpace(f.chiefComplaint),
	}
}

// Validate checks every field, marks all fields touched, and returns the
// validation errors keyed by field name. An empty map means the form is
// submittable.
func (f *IntakeForm) Validate() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.touched[FieldAge] = true
	f.touched[FieldGender] = true
	f.touched[FieldChiefComplaint] = true
	return f.errorsLocked()
}

func (f *IntakeForm) errorsLocked() map[string]string {
	errs := make(map[string]string)
	if f.age < 0 || f.age > 140 {
		errs[FieldAge] = "Age must be between 0 and 140."
	}
	if f.gender != GenderMale && f.gender != GenderFemale {
		errs[FieldGender] = "Please select a gender."
	}
	complaint := strings.TrimSpace(f.chiefComplaint)
	if complaint == "" {
		errs[FieldChiefComplaint] = "Please describe the chief complaint."
	} else if len(complaint) > 1000 {
		errs[FieldChiefComplaint] = "The chief complaint must be 1000 characters or fewer."
	}
	return errs
}

// Snapshot returns the form state with errors filtered to touched fields.
func (f *IntakeForm) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	visible := make(map[string]string)
	for field, message := range f.errorsLocked() {
		if f.touched[field] {
			visible[field] = message
		}
	}
	return FormSnapshot{
		Age:            f.age,
		Gender:         f.gender,
		ChiefComplaint: f.chiefComplaint,
		Errors:         visible,
	}
}

// Reset restores the defaults and clears the touched state.
func (f *IntakeForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.age = 30
	f.gender = GenderFemale
	f.chiefComplaint = ""
	f.touched = make(map[string]bool)
}
