package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSink records submissions and can be scripted to fail.
type fakeSink struct {
	mu       sync.Mutex
	calls    int
	failures int // fail this many calls before succeeding
	reports  []*ScoreReport
}

func (s *fakeSink) Submit(_ context.Context, report *ScoreReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failures > 0 {
		s.failures--
		return errors.New("storage unavailable")
	}
	s.reports = append(s.reports, report)
	return nil
}

func (s *fakeSink) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestControllerManualSubmitScenario(t *testing.T) {
	set, ids := threeQuestionSet(t)
	sink := &fakeSink{}

	c, err := NewController(set, 7, sink)
	if err != nil {
		t.Fatal(err)
	}

	// Pin the clock so TimeTakenSeconds is exact.
	start := c.StartedAt()
	c.now = func() time.Time { return start.Add(10 * time.Second) }

	if !c.RecordAnswer(ids[0], "a") {
		t.Fatal("RecordAnswer rejected while in progress")
	}
	c.RecordAnswer(ids[1], "x")

	report, err := c.Submit(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if report.Score != 1 || report.TotalQuestions != 3 ||
		report.AttemptedQuestions != 2 || report.CorrectAnswers != 1 ||
		report.IncorrectAnswers != 1 || report.TimeTakenSeconds != 10 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if c.Status() != StatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", c.Status())
	}
	if sink.callCount() != 1 {
		t.Fatalf("sink calls = %d, want 1", sink.callCount())
	}
}

func TestControllerDuplicateSubmitRace(t *testing.T) {
	set, _ := threeQuestionSet(t)
	sink := &fakeSink{}

	c, err := NewController(set, 7, sink)
	if err != nil {
		t.Fatal(err)
	}

	// Manual click racing timer expiry: fire both paths back to back.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, trig := range []Trigger{TriggerManual, TriggerTimerExpiry} {
		wg.Add(1)
		go func(i int, trig Trigger) {
			defer wg.Done()
			_, results[i] = c.Submit(context.Background(), trig)
		}(i, trig)
	}
	wg.Wait()

	okCount, dupCount := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			okCount++
		case errors.Is(err, ErrDuplicateSubmit):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || dupCount != 1 {
		t.Fatalf("ok=%d dup=%d, want exactly one of each", okCount, dupCount)
	}
	if sink.callCount() != 1 {
		t.Fatalf("sink calls = %d, want 1", sink.callCount())
	}
}

func TestControllerTimerExpirySubmits(t *testing.T) {
	set, _ := threeQuestionSet(t)
	// Shrink the duration so the test runs fast. The validated set already
	// carries 60s; rebuild with a short one.
	short, err := NewQuestionSet(set.TestID, set.Title, 30*time.Millisecond, set.Questions())
	if err != nil {
		t.Fatal(err)
	}

	sink := &fakeSink{}
	c, err := NewController(short, 7, sink)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for c.Status() != StatusSubmitted {
		select {
		case <-deadline:
			t.Fatalf("attempt never submitted, status %s", c.Status())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if sink.callCount() != 1 {
		t.Fatalf("sink calls = %d, want 1", sink.callCount())
	}
	report := c.Report()
	if report == nil || report.Score != 0 || report.AttemptedQuestions != 0 {
		t.Fatalf("unexpected expiry report: %+v", report)
	}

	// Late answers and manual submits after expiry are no-ops.
	if c.RecordAnswer(short.Question(0).ID, "a") {
		t.Fatal("RecordAnswer accepted after submission")
	}
	if _, err := c.Submit(context.Background(), TriggerManual); !errors.Is(err, ErrDuplicateSubmit) {
		t.Fatalf("late Submit err = %v, want ErrDuplicateSubmit", err)
	}
}

func TestControllerSubmitFailureIsRetryable(t *testing.T) {
	set, ids := threeQuestionSet(t)
	sink := &fakeSink{failures: 1}

	c, err := NewController(set, 7, sink)
	if err != nil {
		t.Fatal(err)
	}
	c.RecordAnswer(ids[0], "a")

	if _, err := c.Submit(context.Background(), TriggerManual); !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("first Submit err = %v, want ErrSubmissionFailed", err)
	}
	if c.Status() != StatusInProgress {
		t.Fatalf("status after failure = %s, want IN_PROGRESS", c.Status())
	}

	report, err := c.Submit(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if report.Score != 1 {
		t.Fatalf("retry score = %d, want 1", report.Score)
	}
	if c.Status() != StatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", c.Status())
	}
	if sink.callCount() != 2 {
		t.Fatalf("sink calls = %d, want 2", sink.callCount())
	}
	if len(sink.reports) != 1 {
		t.Fatalf("stored reports = %d, want 1", len(sink.reports))
	}
}

func TestControllerAbortSuppressesExpiry(t *testing.T) {
	set, _ := threeQuestionSet(t)
	short, err := NewQuestionSet(set.TestID, set.Title, 30*time.Millisecond, set.Questions())
	if err != nil {
		t.Fatal(err)
	}

	sink := &fakeSink{}
	c, err := NewController(short, 7, sink)
	if err != nil {
		t.Fatal(err)
	}

	// A controller that loses the registration race is aborted and dropped;
	// its countdown must never reach the sink.
	c.Abort()
	time.Sleep(200 * time.Millisecond)

	if n := sink.callCount(); n != 0 {
		t.Fatalf("sink calls after abort = %d, want 0", n)
	}
	if c.Status() != StatusAborted {
		t.Fatalf("status = %s, want ABORTED", c.Status())
	}
	if c.RecordAnswer(short.Question(0).ID, "a") {
		t.Fatal("RecordAnswer accepted after abort")
	}
	if _, err := c.Submit(context.Background(), TriggerManual); !errors.Is(err, ErrDuplicateSubmit) {
		t.Fatalf("Submit after abort err = %v, want ErrDuplicateSubmit", err)
	}
}

func TestControllerNavigationClamps(t *testing.T) {
	set, _ := threeQuestionSet(t)
	c, err := NewController(set, 7, &fakeSink{})
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct{ in, want int }{
		{1, 1}, {0, 0}, {2, 2}, {-5, 0}, {99, 2},
	}
	for _, tc := range cases {
		if got := c.GoTo(tc.in); got != tc.want {
			t.Fatalf("GoTo(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestControllerSelectAnswerUsesCurrentQuestion(t *testing.T) {
	set, ids := threeQuestionSet(t)
	c, err := NewController(set, 7, &fakeSink{})
	if err != nil {
		t.Fatal(err)
	}

	c.GoTo(1)
	if !c.SelectAnswer("b") {
		t.Fatal("SelectAnswer rejected while in progress")
	}

	answers := c.Answers()
	if len(answers) != 1 || answers[0].QuestionID != ids[1] || answers[0].OptionID != "b" {
		t.Fatalf("unexpected answers: %v", answers)
	}
}
