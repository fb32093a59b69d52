package intakeclient

import "sync"

// QuestionSection holds one step of the questionnaire: its prompt/answer
// pairs and the last save outcome. Network orchestration lives in the
// workflow; the section only owns its local state and merge rules.
type QuestionSection struct {
	mu sync.Mutex

	id          SectionID
	questions   []Question
	isSaving    bool
	saveMessage string
	saveError   string
}

// SectionSnapshot is a copy of the section's state for rendering.
type SectionSnapshot struct {
	ID          SectionID
	Questions   []Question
	IsSaving    bool
	SaveMessage string
	SaveError   string
}

func newQuestionSection(id SectionID) *QuestionSection {
	return &QuestionSection{id: id}
}

// ID returns the section's identifier.
func (s *QuestionSection) ID() SectionID { return s.id }

// UpdateAnswer sets the answer for the question with the given id; unknown
// ids are ignored. Clears the last outcome feedback.
func (s *QuestionSection) UpdateAnswer(questionID, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.questions {
		if s.questions[i].ID == questionID {
			s.questions[i].Answer = answer
			break
		}
	}
	s.saveMessage = ""
	s.saveError = ""
}

// SetQuestions replaces the question list. Incoming answers are kept as-is;
// use Seed to install a list with blank answers.
func (s *QuestionSection) SetQuestions(questions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = copyQuestions(questions)
}

// Seed installs the question list with blank answers, but only when the
// section is still empty. Returns whether seeding happened.
func (s *QuestionSection) Seed(questions []Question) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) > 0 {
		return false
	}
	s.questions = make([]Question, len(questions))
	for i, q := range questions {
		s.questions[i] = Question{ID: q.ID, Prompt: q.Prompt}
	}
	return true
}

// MergeCurrent applies the server-echoed question list, keeping the locally
// held answer for any question id present on both sides, empty answers
// included, so an in-flight echo cannot resurrect a value the user cleared.
// Questions that only the server knows are taken verbatim.
func (s *QuestionSection) MergeCurrent(serverQuestions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := make(map[string]string, len(s.questions))
	for _, q := range s.questions {
		local[q.ID] = q.Answer
	}

	merged := make([]Question, len(serverQuestions))
	for i, q := range serverQuestions {
		if answer, ok := local[q.ID]; ok {
			q.Answer = answer
		}
		merged[i] = q
	}
	s.questions = merged
}

// Questions returns a copy of the current question list.
func (s *QuestionSection) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyQuestions(s.questions)
}

// Answers returns the current answers in wire form, defaulting to empty
// strings.
func (s *QuestionSection) Answers() []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Answer, len(s.questions))
	for i, q := range s.questions {
		out[i] = Answer{ID: q.ID, Answer: q.Answer}
	}
	return out
}

// Reset clears the section to its initial empty state.
func (s *QuestionSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = nil
	s.isSaving = false
	s.saveMessage = ""
	s.saveError = ""
}

// Snapshot returns a copy of the current state.
func (s *QuestionSection) Snapshot() SectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SectionSnapshot{
		ID:          s.id,
		Questions:   copyQuestions(s.questions),
		IsSaving:    s.isSaving,
		SaveMessage: s.saveMessage,
		SaveError:   s.saveError,
	}
}

func (s *QuestionSection) beginSave() (ok bool, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isSaving {
		return false, false
	}
	if len(s.questions) == 0 {
		s.saveError = "No questions to save."
		return false, true
	}
	s.isSaving = true
	s.saveMessage = ""
	s.saveError = ""
	return true, false
}

func (s *QuestionSection) finishSave(message, errMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isSaving = false
	s.saveMessage = message
	s.saveError = errMessage
}

func copyQuestions(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}
