package attempt

import (
	"time"

	"github.com/google/uuid"
)

// ScoreReport is the deterministic output of scoring one attempt. Produced
// once per successful submission, immutable afterwards.
type ScoreReport struct {
	TestID             uuid.UUID     `json:"test_id"`
	UserID             int           `json:"user_id"`
	Score              int           `json:"score"`
	TotalQuestions     int           `json:"total_questions"`
	AttemptedQuestions int           `json:"attempted_questions"`
	CorrectAnswers     int           `json:"correct_answers"`
	IncorrectAnswers   int           `json:"incorrect_answers"`
	TimeTakenSeconds   int           `json:"time_taken_seconds"`
	CompletedAt        time.Time     `json:"completed_at"`
	Answers            []AnswerEntry `json:"answers"`
}

// Score grades a ledger snapshot against a question set. Pure and
// deterministic: identical inputs always produce an identical report.
// Flat one point per correct question, no partial credit. Entries whose
// question id is not in the set are ignored. completedAt is supplied by the
// caller and copied through — the wall clock is never read here.
func Score(set *QuestionSet, entries []AnswerEntry, userID int, startedAt, completedAt time.Time) *ScoreReport {
	answered := make(map[uuid.UUID]string, len(entries))
	for _, e := range entries {
		answered[e.QuestionID] = e.OptionID
	}

	correct, incorrect := 0, 0
	for _, q := range set.Questions() {
		selected, ok := answered[q.ID]
		if !ok {
			continue
		}
		if selected == q.CorrectOption {
			correct++
		} else {
			incorrect++
		}
	}

	taken := int(completedAt.Sub(startedAt) / time.Second)
	if taken < 0 {
		taken = 0
	}

	return &ScoreReport{
		TestID:             set.TestID,
		UserID:             userID,
		Score:              correct,
		TotalQuestions:     set.Len(),
		AttemptedQuestions: correct + incorrect,
		CorrectAnswers:     correct,
		IncorrectAnswers:   incorrect,
		TimeTakenSeconds:   taken,
		CompletedAt:        completedAt,
		Answers:            entries,
	}
}
