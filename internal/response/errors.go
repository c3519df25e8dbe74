package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// Authorization
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrAuthorsOnly   ErrCode = "AUTHOR_ACCESS_ONLY"
	ErrNotTestAuthor ErrCode = "NOT_TEST_AUTHOR"

	// Validation
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// Resources
	ErrNotFound ErrCode = "NOT_FOUND"

	// Attempt lifecycle
	ErrTestNotPublished ErrCode = "TEST_NOT_PUBLISHED"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrInvalidQuestions ErrCode = "INVALID_QUESTION_SET"
	ErrNoActiveAttempt  ErrCode = "NO_ACTIVE_ATTEMPT"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrUnknownQuestion  ErrCode = "UNKNOWN_QUESTION"
	ErrSubmissionFailed ErrCode = "SUBMISSION_FAILED"

	// Rate limiting
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// Server
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAuthorsOnly:
		return "This resource is restricted to test authors."
	case ErrNotTestAuthor:
		return "You are not the author of this test."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrTestNotPublished:
		return "This test is not published."
	case ErrNoQuestions:
		return "This test has no questions."
	case ErrInvalidQuestions:
		return "The question list is malformed: every question needs unique options including its correct answer."
	case ErrNoActiveAttempt:
		return "You have no active attempt for this test."
	case ErrAlreadySubmitted:
		return "This attempt has already been submitted."
	case ErrUnknownQuestion:
		return "The question does not belong to this test."
	case ErrSubmissionFailed:
		return "Could not store your result. Your answers are safe, please submit again."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
