package intake

import "context"

// RecordUpdate is a partial update applied to a patient's record. Nil fields
// keep the stored value; non-nil fields replace it outright. List accumulation
// (union, caps) happens in the service before the store is called.
type RecordUpdate struct {
	Profile PatientProfile

	SelectedAntecedents *[]string
	SelectedAllergies   *[]string
	SelectedDrugs       *[]string
	SuggestedAllergies  *[]string
	SuggestedDrugs      *[]string

	Questions map[SectionID][]Question
}

// StoreInterface defines the contract for intake record persistence
type StoreInterface interface {
	// Get returns the record for the key or ErrRecordNotFound.
	Get(ctx context.Context, key string) (*Record, error)
	// Upsert merges the partial update into the record for the update's
	// patient key, creating it on first write, and returns the full record.
	Upsert(ctx context.Context, update RecordUpdate) (*Record, error)
	// List returns a page of records ordered by most recent update, plus the
	// total count.
	List(ctx context.Context, limit, offset int) ([]Record, int, error)
}

// mergeRecord applies a partial update on top of an existing record (which may
// be a zero value for a first write). Present fields replace, absent fields
// keep.
func mergeRecord(existing Record, update RecordUpdate) Record {
	merged := existing
	merged.PatientKey = update.Profile.Key()
	merged.Profile = update.Profile

	if update.SelectedAntecedents != nil {
		merged.SelectedAntecedents = NormalizeList(*update.SelectedAntecedents)
	}
	if update.SelectedAllergies != nil {
		merged.SelectedAllergies = NormalizeList(*update.SelectedAllergies)
	}
	if update.SelectedDrugs != nil {
		merged.SelectedDrugs = NormalizeList(*update.SelectedDrugs)
	}
	if update.SuggestedAllergies != nil {
		merged.SuggestedAllergies = NormalizeList(*update.SuggestedAllergies)
	}
	if update.SuggestedDrugs != nil {
		merged.SuggestedDrugs = NormalizeList(*update.SuggestedDrugs)
	}
	for section, questions := range update.Questions {
		merged.SetQuestions(section, questions)
	}
	return merged
}
