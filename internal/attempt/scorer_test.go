package attempt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// threeQuestionSet builds the canonical 3-question set: correct answers are
// a, b, c in order, 60 second duration.
func threeQuestionSet(t *testing.T) (*QuestionSet, []uuid.UUID) {
	t.Helper()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	correct := []string{"a", "b", "c"}

	questions := make([]Question, 3)
	for i := range questions {
		questions[i] = Question{
			ID:     ids[i],
			Prompt: "question",
			Options: []Option{
				{ID: "a", Text: "first"},
				{ID: "b", Text: "second"},
				{ID: "c", Text: "third"},
				{ID: "x", Text: "fourth"},
			},
			CorrectOption: correct[i],
		}
	}

	set, err := NewQuestionSet(uuid.New(), "sample", 60*time.Second, questions)
	if err != nil {
		t.Fatalf("NewQuestionSet: %v", err)
	}
	return set, ids
}

func TestScorePartialAttempt(t *testing.T) {
	set, ids := threeQuestionSet(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	entries := []AnswerEntry{
		{QuestionID: ids[0], OptionID: "a"}, // correct
		{QuestionID: ids[1], OptionID: "x"}, // wrong
		// ids[2] unanswered
	}

	report := Score(set, entries, 7, start, end)

	if report.Score != 1 || report.CorrectAnswers != 1 {
		t.Fatalf("score = %d/%d, want 1/1", report.Score, report.CorrectAnswers)
	}
	if report.IncorrectAnswers != 1 {
		t.Fatalf("incorrect = %d, want 1", report.IncorrectAnswers)
	}
	if report.AttemptedQuestions != 2 || report.TotalQuestions != 3 {
		t.Fatalf("attempted/total = %d/%d, want 2/3", report.AttemptedQuestions, report.TotalQuestions)
	}
	if report.TimeTakenSeconds != 10 {
		t.Fatalf("time taken = %d, want 10", report.TimeTakenSeconds)
	}
	if !report.CompletedAt.Equal(end) {
		t.Fatalf("completed at = %v, want %v", report.CompletedAt, end)
	}
}

func TestScoreEmptyLedger(t *testing.T) {
	set, _ := threeQuestionSet(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	report := Score(set, nil, 7, start, start.Add(60*time.Second))

	if report.Score != 0 || report.AttemptedQuestions != 0 ||
		report.CorrectAnswers != 0 || report.IncorrectAnswers != 0 {
		t.Fatalf("expected all-zero counters, got %+v", report)
	}
	if report.TimeTakenSeconds != 60 {
		t.Fatalf("time taken = %d, want 60", report.TimeTakenSeconds)
	}
}

func TestScoreDeterministic(t *testing.T) {
	set, ids := threeQuestionSet(t)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Second)
	entries := []AnswerEntry{
		{QuestionID: ids[0], OptionID: "a"},
		{QuestionID: ids[2], OptionID: "b"},
	}

	r1 := Score(set, entries, 7, start, end)
	r2 := Score(set, entries, 7, start, end)

	if r1.Score != r2.Score || r1.CorrectAnswers != r2.CorrectAnswers ||
		r1.IncorrectAnswers != r2.IncorrectAnswers ||
		r1.AttemptedQuestions != r2.AttemptedQuestions ||
		r1.TimeTakenSeconds != r2.TimeTakenSeconds {
		t.Fatalf("reports differ: %+v vs %+v", r1, r2)
	}
}

func TestScoreInvariants(t *testing.T) {
	set, ids := threeQuestionSet(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		entries []AnswerEntry
	}{
		{"none", nil},
		{"all correct", []AnswerEntry{
			{QuestionID: ids[0], OptionID: "a"},
			{QuestionID: ids[1], OptionID: "b"},
			{QuestionID: ids[2], OptionID: "c"},
		}},
		{"all wrong", []AnswerEntry{
			{QuestionID: ids[0], OptionID: "x"},
			{QuestionID: ids[1], OptionID: "x"},
			{QuestionID: ids[2], OptionID: "x"},
		}},
		{"foreign ids ignored", []AnswerEntry{
			{QuestionID: ids[0], OptionID: "a"},
			{QuestionID: uuid.New(), OptionID: "a"},
			{QuestionID: uuid.New(), OptionID: "z"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Score(set, tc.entries, 7, start, start.Add(time.Second))
			if r.Score+r.IncorrectAnswers != r.AttemptedQuestions {
				t.Fatalf("score+incorrect != attempted: %+v", r)
			}
			if r.AttemptedQuestions > r.TotalQuestions {
				t.Fatalf("attempted > total: %+v", r)
			}
		})
	}
}

func TestScoreNegativeElapsedClamped(t *testing.T) {
	set, _ := threeQuestionSet(t)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Clock skew: completion timestamp before start.
	r := Score(set, nil, 7, start, start.Add(-5*time.Second))
	if r.TimeTakenSeconds != 0 {
		t.Fatalf("time taken = %d, want 0", r.TimeTakenSeconds)
	}
}

func TestNewQuestionSetValidation(t *testing.T) {
	dup := uuid.New()

	cases := []struct {
		name      string
		duration  time.Duration
		questions []Question
		wantErr   error
	}{
		{"empty", time.Minute, nil, ErrEmptyQuestionSet},
		{"zero duration", 0, []Question{{ID: uuid.New(), Options: []Option{{ID: "a"}}, CorrectOption: "a"}}, ErrInvalidDuration},
		{"bad answer key", time.Minute, []Question{{ID: uuid.New(), Options: []Option{{ID: "a"}}, CorrectOption: "z"}}, ErrBadAnswerKey},
		{"duplicate ids", time.Minute, []Question{
			{ID: dup, Options: []Option{{ID: "a"}}, CorrectOption: "a"},
			{ID: dup, Options: []Option{{ID: "a"}}, CorrectOption: "a"},
		}, ErrDuplicateQuestion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuestionSet(uuid.New(), "t", tc.duration, tc.questions)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
