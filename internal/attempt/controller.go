package attempt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status enumerates attempt lifecycle states.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitting Status = "SUBMITTING"
	StatusSubmitted  Status = "SUBMITTED"
	StatusAborted    Status = "ABORTED"
)

// Trigger is the cause of a submission.
type Trigger string

const (
	TriggerManual      Trigger = "manual"
	TriggerTimerExpiry Trigger = "timer_expiry"
)

// ResultSink receives the ScoreReport of a finished attempt. The controller
// guarantees at most one call per attempt that is allowed to succeed; a
// failed call may be retried with a freshly computed report.
type ResultSink interface {
	Submit(ctx context.Context, report *ScoreReport) error
}

// Controller orchestrates one user's pass through a QuestionSet: navigation,
// answer capture, and the single submission. It owns the attempt's Ledger
// and Clock. The status guard inside Submit makes manual submission and
// timer expiry mutually exclusive — whichever arrives first wins, the other
// becomes a no-op.
type Controller struct {
	mu        sync.Mutex
	set       *QuestionSet
	ledger    *Ledger
	clock     *Clock
	sink      ResultSink
	userID    int
	status    Status
	current   int
	startedAt time.Time
	report    *ScoreReport
	now       func() time.Time
}

// NewController builds the controller and starts the countdown. The expiry
// callback submits with TriggerTimerExpiry through the same guarded path as
// a manual submit. Fails with ErrInvalidDuration before any state is built
// if the set's duration is not positive.
func NewController(set *QuestionSet, userID int, sink ResultSink) (*Controller, error) {
	c := &Controller{
		set:    set,
		ledger: NewLedger(),
		clock:  NewClock(),
		sink:   sink,
		userID: userID,
		status: StatusInProgress,
		now:    time.Now,
	}
	c.startedAt = c.now()

	if err := c.clock.Start(set.Duration, func() {
		// Sink I/O must not run on the timer goroutine's lock; Submit
		// handles its own locking. Failure here leaves the attempt
		// in progress so a later manual submit can still succeed.
		_, _ = c.Submit(context.Background(), TriggerTimerExpiry)
	}); err != nil {
		return nil, err
	}
	return c, nil
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Current returns the current question index.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// StartedAt returns when the attempt began.
func (c *Controller) StartedAt() time.Time { return c.startedAt }

// Set returns the question set under attempt.
func (c *Controller) Set() *QuestionSet { return c.set }

// Remaining returns the countdown time left.
func (c *Controller) Remaining() time.Duration { return c.clock.Remaining() }

// Answers returns the ledger snapshot in first-answered order.
func (c *Controller) Answers() []AnswerEntry { return c.ledger.Snapshot() }

// RecordAnswer upserts the selected option for the given question. Ignored
// once submission has begun, so late writes cannot leak into a computed
// report. Reports whether the answer was accepted.
func (c *Controller) RecordAnswer(questionID uuid.UUID, optionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusInProgress {
		return false
	}
	c.ledger.Record(questionID, optionID)
	return true
}

// SelectAnswer records an answer for the question at the current index.
func (c *Controller) SelectAnswer(optionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusInProgress {
		return false
	}
	c.ledger.Record(c.set.Question(c.current).ID, optionID)
	return true
}

// GoTo moves the current question index, clamping out-of-range values to
// [0, len-1]. Navigation order is unconstrained. Ignored once submission
// has begun. Returns the effective index.
func (c *Controller) GoTo(index int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusInProgress {
		return c.current
	}
	if index < 0 {
		index = 0
	}
	if max := c.set.Len() - 1; index > max {
		index = max
	}
	c.current = index
	return c.current
}

// Abort retires the controller without scoring: the countdown stops and the
// status latches terminal, so a pending expiry can never reach the result
// sink. Used on controllers that lose a registration race and are discarded
// before ever serving an attempt. No-op once submission has begun.
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusInProgress {
		return
	}
	c.status = StatusAborted
	c.clock.Cancel()
}

// Report returns the ScoreReport of a submitted attempt, nil otherwise.
func (c *Controller) Report() *ScoreReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// Submit finishes the attempt: cancels the countdown, scores the ledger
// snapshot, and hands the report to the result sink. Only the first call
// while the attempt is in progress proceeds; later calls — including the
// losing side of a manual/expiry race — get ErrDuplicateSubmit. If the sink
// fails, the attempt reverts to in progress, the report is discarded, and
// Submit may be called again with a freshly computed report.
func (c *Controller) Submit(ctx context.Context, trigger Trigger) (*ScoreReport, error) {
	c.mu.Lock()
	if c.status != StatusInProgress {
		c.mu.Unlock()
		return nil, ErrDuplicateSubmit
	}
	c.status = StatusSubmitting
	c.clock.Cancel()
	snapshot := c.ledger.Snapshot()
	startedAt := c.startedAt
	c.mu.Unlock()

	report := Score(c.set, snapshot, c.userID, startedAt, c.now())

	if err := c.sink.Submit(ctx, report); err != nil {
		c.mu.Lock()
		c.status = StatusInProgress
		c.mu.Unlock()
		return nil, fmt.Errorf("%w (trigger %s): %v", ErrSubmissionFailed, trigger, err)
	}

	c.mu.Lock()
	c.status = StatusSubmitted
	c.report = report
	c.mu.Unlock()
	return report, nil
}
