package model

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus enumerates the lifecycle of a test definition.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "DRAFT"
	TestStatusPublished TestStatus = "PUBLISHED"
	TestStatusArchived  TestStatus = "ARCHIVED"
)

// Test represents one mock-test definition.
type Test struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	AuthorID        int        `json:"author_id"`
	DurationSeconds int        `json:"duration_seconds"`
	QuestionCount   int        `json:"question_count"`
	Status          TestStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateTestRequest is the payload for creating a new test.
type CreateTestRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	DurationSeconds int    `json:"duration_seconds" binding:"required,min=30,max=28800"`
}

// QuestionOptionInput is one option of an incoming question.
type QuestionOptionInput struct {
	ID   string `json:"id" binding:"required,min=1,max=10"`
	Text string `json:"text" binding:"required,min=1,max=1000"`
}

// QuestionInput is the payload for one question when replacing a test's
// question list. The correct option must reference one of the options;
// that invariant is enforced when the QuestionSet is built.
type QuestionInput struct {
	Prompt        string                `json:"prompt" binding:"required,min=1,max=2000"`
	Options       []QuestionOptionInput `json:"options" binding:"required,min=2,dive"`
	CorrectOption string                `json:"correct_option" binding:"required,max=10"`
	Explanation   string                `json:"explanation" binding:"max=2000"`
}

// ReplaceQuestionsRequest is the payload for bulk replacing a test's questions.
type ReplaceQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// TestPayload is the Redis-cached paper sent to exam takers (no answer keys).
type TestPayload struct {
	TestID          uuid.UUID            `json:"test_id"`
	Title           string               `json:"title"`
	DurationSeconds int                  `json:"duration_seconds"`
	Questions       []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question with the answer key stripped.
type QuestionForStudent struct {
	ID      uuid.UUID             `json:"id"`
	Prompt  string                `json:"prompt"`
	Options []QuestionOptionInput `json:"options"`
}
