package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnswerRequest records one selected option during an attempt.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	OptionID   string `json:"option_id" binding:"required,min=1,max=10"`
}

// GoToRequest moves the current question index. Out-of-range values are
// clamped, not rejected, to match forgiving UI navigation.
type GoToRequest struct {
	Index int `json:"index"`
}

// SubmitRequest finishes an attempt. Trigger is informational; both values
// route through the same guarded submission path.
type SubmitRequest struct {
	Trigger string `json:"trigger" binding:"omitempty,oneof=manual timer_expiry"`
}

// AttemptStateResponse is returned on page reload so the client can restore
// answered questions, position, and the countdown.
type AttemptStateResponse struct {
	TestID           uuid.UUID         `json:"test_id"`
	Status           string            `json:"status"`
	CurrentIndex     int               `json:"current_index"`
	RemainingSeconds int               `json:"remaining_seconds"`
	Answers          map[string]string `json:"answers"`
	StartedAt        time.Time         `json:"started_at"`
}

// Result is a stored score report row.
type Result struct {
	ID               uuid.UUID       `json:"id"`
	TestID           uuid.UUID       `json:"test_id"`
	UserID           int             `json:"user_id"`
	Score            int             `json:"score"`
	TotalQuestions   int             `json:"total_questions"`
	Attempted        int             `json:"attempted_questions"`
	Correct          int             `json:"correct_answers"`
	Incorrect        int             `json:"incorrect_answers"`
	TimeTakenSeconds int             `json:"time_taken_seconds"`
	CompletedAt      time.Time       `json:"completed_at"`
	Answers          json.RawMessage `json:"answers"` // serialized ledger snapshot, verbatim
}
