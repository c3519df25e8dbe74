package attempt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Option is a single selectable choice of a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one multiple-choice question with its answer key.
// Immutable once the QuestionSet is built.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"prompt"`
	Options       []Option  `json:"options"`
	CorrectOption string    `json:"correct_option"`
	Explanation   string    `json:"explanation,omitempty"`
}

// QuestionSet is the immutable, ordered question list for one test,
// shared read-only across the attempt core.
type QuestionSet struct {
	TestID    uuid.UUID
	Title     string
	Duration  time.Duration
	questions []Question
	index     map[uuid.UUID]int
}

// NewQuestionSet validates and builds a QuestionSet. Malformed input is
// rejected here, at load time, so scoring can assume the invariants hold:
// non-empty, positive duration, unique question ids, and every question's
// correct option present among its own options.
func NewQuestionSet(testID uuid.UUID, title string, duration time.Duration, questions []Question) (*QuestionSet, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	index := make(map[uuid.UUID]int, len(questions))
	for i, q := range questions {
		if _, dup := index[q.ID]; dup {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrDuplicateQuestion)
		}
		index[q.ID] = i

		found := false
		for _, opt := range q.Options {
			if opt.ID == q.CorrectOption {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrBadAnswerKey)
		}
	}

	qs := make([]Question, len(questions))
	copy(qs, questions)

	return &QuestionSet{
		TestID:    testID,
		Title:     title,
		Duration:  duration,
		questions: qs,
		index:     index,
	}, nil
}

// Len returns the number of questions.
func (s *QuestionSet) Len() int { return len(s.questions) }

// Questions returns the ordered question list. Callers must not mutate it.
func (s *QuestionSet) Questions() []Question { return s.questions }

// Question returns the question at position i.
func (s *QuestionSet) Question(i int) Question { return s.questions[i] }

// Lookup returns the question with the given id, if it belongs to this set.
func (s *QuestionSet) Lookup(id uuid.UUID) (Question, bool) {
	i, ok := s.index[id]
	if !ok {
		return Question{}, false
	}
	return s.questions[i], true
}
