package attempt

import (
	"sync"
	"time"
)

// Clock is a one-shot countdown for a single attempt. Remaining time is
// recomputed from elapsed wall-clock time since Start on every query, never
// accumulated tick by tick, so a throttled or delayed timer cannot drift the
// deadline. The expiry callback fires at most once; Cancel suppresses it.
type Clock struct {
	mu        sync.Mutex
	duration  time.Duration
	startedAt time.Time
	timer     *time.Timer
	onExpire  func()
	fired     bool
	cancelled bool
	now       func() time.Time
}

// NewClock creates an unstarted Clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Start begins the countdown and registers the expiry callback. Returns
// ErrInvalidDuration if duration is not positive. The callback runs on its
// own goroutine when the countdown reaches zero, unless Cancel was called
// first.
func (c *Clock) Start(duration time.Duration, onExpire func()) error {
	if duration <= 0 {
		return ErrInvalidDuration
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.duration = duration
	c.startedAt = c.now()
	c.onExpire = onExpire
	c.timer = time.AfterFunc(duration, c.expire)
	return nil
}

// Remaining returns the time left, floor-clamped at zero. Safe to poll from
// any goroutine; it never mutates clock state.
func (c *Clock) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.startedAt.IsZero() || c.fired || c.cancelled {
		return 0
	}
	left := c.duration - c.now().Sub(c.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Cancel stops the countdown and suppresses a pending expiry callback.
// Calling Cancel after expiry already fired is a no-op.
func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fired || c.cancelled {
		return
	}
	c.cancelled = true
	if c.timer != nil {
		c.timer.Stop()
	}
}

// expire latches the fired flag before invoking the callback, so duplicate
// timer deliveries cannot double-fire.
func (c *Clock) expire() {
	c.mu.Lock()
	if c.fired || c.cancelled {
		c.mu.Unlock()
		return
	}
	c.fired = true
	cb := c.onExpire
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
}
