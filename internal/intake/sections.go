package intake

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

// Section describes one questionnaire step: its default questions, the message
// returned after a successful save, and the next step in the chain.
type Section struct {
	ID          SectionID
	Title       string
	Defaults    []Question
	SaveMessage string
	// Next is empty for the final section.
	Next SectionID
}

// Sections lists every questionnaire step in chain order.
var Sections = []Section{
	{
		ID:    SectionSymptomOnset,
		Title: "Symptom onset",
		Defaults: []Question{
			{ID: "onset-when", Prompt: "When did the symptoms start?"},
			{ID: "onset-mode", Prompt: "Did the symptoms appear suddenly or gradually?"},
			{ID: "onset-course", Prompt: "Since they started, have the symptoms improved, worsened, or stayed the same?"},
		},
		SaveMessage: "Symptom onset answers saved.",
		Next:        SectionEvaluation,
	},
	{
		ID:    SectionEvaluation,
		Title: "Severity evaluation",
		Defaults: []Question{
			{ID: "eval-severity", Prompt: "On a scale from 1 to 10, how intense are the symptoms?"},
			{ID: "eval-frequency", Prompt: "How often do the symptoms occur (constant, intermittent, occasional)?"},
			{ID: "eval-duration", Prompt: "How long does each episode last?"},
		},
		SaveMessage: "Severity evaluation answers saved.",
		Next:        SectionLocation,
	},
	{
		ID:    SectionLocation,
		Title: "Location",
		Defaults: []Question{
			{ID: "loc-where", Prompt: "Where exactly do you feel the symptoms?"},
			{ID: "loc-radiation", Prompt: "Do the symptoms spread or radiate to any other area?"},
			{ID: "loc-side", Prompt: "Are the symptoms on one side of the body or both?"},
		},
		SaveMessage: "Location answers saved.",
		Next:        SectionCharacteristics,
	},
	{
		ID:    SectionCharacteristics,
		Title: "Characteristics",
		Defaults: []Question{
			{ID: "char-quality", Prompt: "How would you describe the sensation (sharp, dull, burning, throbbing, pressure)?"},
			{ID: "char-triggers", Prompt: "Does anything make the symptoms better or worse?"},
			{ID: "char-timing", Prompt: "Is there a time of day when the symptoms are worse?"},
		},
		SaveMessage: "Characteristics answers saved.",
		Next:        SectionAssociatedSymptoms,
	},
	{
		ID:    SectionAssociatedSymptoms,
		Title: "Associated symptoms",
		Defaults: []Question{
			{ID: "assoc-other", Prompt: "Have you noticed any other symptoms alongside the main one?"},
			{ID: "assoc-fever", Prompt: "Have you had fever, chills, or night sweats?"},
			{ID: "assoc-appetite", Prompt: "Have you noticed changes in appetite, weight, or sleep?"},
		},
		SaveMessage: "Associated symptoms answers saved.",
		Next:        SectionPrecipitatingFactors,
	},
	{
		ID:    SectionPrecipitatingFactors,
		Title: "Precipitating factors",
		Defaults: []Question{
			{ID: "precip-activity", Prompt: "Were you doing anything in particular when the symptoms started?"},
			{ID: "precip-stress", Prompt: "Have you been under unusual physical or emotional stress lately?"},
			{ID: "precip-similar", Prompt: "Have you had similar episodes before?"},
		},
		SaveMessage: "Precipitating factors answers saved.",
		Next:        SectionRecentExposures,
	},
	{
		ID:    SectionRecentExposures,
		Title: "Recent exposures",
		Defaults: []Question{
			{ID: "expo-travel", Prompt: "Have you traveled anywhere recently?"},
			{ID: "expo-contact", Prompt: "Have you been in contact with anyone who is sick?"},
			{ID: "expo-environment", Prompt: "Have you been exposed to new foods, animals, or substances?"},
		},
		SaveMessage: "Recent exposures answers saved.",
		Next:        SectionFunctionalImpact,
	},
	{
		ID:    SectionFunctionalImpact,
		Title: "Functional impact",
		Defaults: []Question{
			{ID: "impact-daily", Prompt: "Do the symptoms interfere with your daily activities or work?"},
			{ID: "impact-sleep", Prompt: "Do the symptoms wake you up or keep you from sleeping?"},
			{ID: "impact-mobility", Prompt: "Do the symptoms limit your ability to move or exercise?"},
		},
		SaveMessage: "Functional impact answers saved.",
		Next:        SectionPriorTherapies,
	},
	{
		ID:    SectionPriorTherapies,
		Title: "Prior therapies",
		Defaults: []Question{
			{ID: "therapy-tried", Prompt: "Have you taken any medication or remedy for these symptoms?"},
			{ID: "therapy-effect", Prompt: "Did anything you tried provide relief?"},
			{ID: "therapy-consult", Prompt: "Have you seen another clinician for this problem?"},
		},
		SaveMessage: "Prior therapies answers saved.",
		Next:        SectionRedFlags,
	},
	{
		ID:    SectionRedFlags,
		Title: "Red flags",
		Defaults: []Question{
			{ID: "redflag-breathing", Prompt: "Have you had difficulty breathing, chest pain, or palpitations?"},
			{ID: "redflag-neuro", Prompt: "Have you had fainting, confusion, or sudden weakness or numbness?"},
			{ID: "redflag-bleeding", Prompt: "Have you noticed unexplained bleeding or severe unintentional weight loss?"},
		},
		SaveMessage: "Red flags answers saved. Your intake is complete.",
	},
}

var sectionsByID = func() map[SectionID]Section {
	m := make(map[SectionID]Section, len(Sections))
	for _, s := range Sections {
		m[s.ID] = s
	}
	return m
}()

// SectionByID looks up a section definition; ok is false for unknown ids.
func SectionByID(id SectionID) (Section, bool) {
	s, ok := sectionsByID[id]
	return s, ok
}

// DefaultQuestions returns a fresh copy of the section's default questions
// with blank answers.
func DefaultQuestions(id SectionID) []Question {
	s, ok := sectionsByID[id]
	if !ok {
		return nil
	}
	out := make([]Question, len(s.Defaults))
	copy(out, s.Defaults)
	return out
}
