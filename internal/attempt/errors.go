package attempt

import "errors"

// Core attempt errors.
var (
	// ErrInvalidDuration is returned when a countdown is started with a
	// non-positive duration. Fatal to session start.
	ErrInvalidDuration = errors.New("countdown duration must be positive")

	// ErrDuplicateSubmit signals that Submit was called while the attempt is
	// no longer in progress. Expected under the manual/expiry race and never
	// surfaced to the user as a failure.
	ErrDuplicateSubmit = errors.New("attempt already submitted or submitting")

	// ErrSubmissionFailed wraps a result-sink failure. The attempt reverts to
	// in-progress and the caller may retry Submit.
	ErrSubmissionFailed = errors.New("result submission failed")

	// QuestionSet validation errors.
	ErrEmptyQuestionSet  = errors.New("question set has no questions")
	ErrDuplicateQuestion = errors.New("duplicate question id in question set")
	ErrBadAnswerKey      = errors.New("correct option is not one of the question's options")
)
