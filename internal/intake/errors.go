package intake

import "errors"

var (
	// ErrRecordNotFound means no record exists yet for the patient key. A
	// first visit is expected to hit this.
	ErrRecordNotFound = errors.New("intake record not found")

	// ErrUnknownSection means the requested questionnaire section id does not
	// exist.
	ErrUnknownSection = errors.New("unknown questionnaire section")

	// ErrSuggestionFailed wraps a generative-backend failure so handlers can
	// map it to a gateway-class status.
	ErrSuggestionFailed = errors.New("suggestion generation failed")
)
