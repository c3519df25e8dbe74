package attempt

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestClockStartInvalidDuration(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		c := NewClock()
		if err := c.Start(d, func() {}); err != ErrInvalidDuration {
			t.Fatalf("Start(%v) err = %v, want ErrInvalidDuration", d, err)
		}
	}
}

func TestClockRemainingNeverNegative(t *testing.T) {
	c := NewClock()
	base := time.Now()
	c.now = func() time.Time { return base }

	if err := c.Start(10*time.Second, func() {}); err != nil {
		t.Fatal(err)
	}

	c.now = func() time.Time { return base.Add(4 * time.Second) }
	if got := c.Remaining(); got != 6*time.Second {
		t.Fatalf("Remaining = %v, want 6s", got)
	}

	// Well past the deadline: clamped at zero, never negative.
	c.now = func() time.Time { return base.Add(time.Hour) }
	if got := c.Remaining(); got != 0 {
		t.Fatalf("Remaining = %v, want 0", got)
	}
}

func TestClockFiresExactlyOnce(t *testing.T) {
	c := NewClock()
	var fired int32
	if err := c.Start(time.Hour, func() { atomic.AddInt32(&fired, 1) }); err != nil {
		t.Fatal(err)
	}

	// Simulate the host delivering duplicate timer ticks.
	c.expire()
	c.expire()
	c.expire()

	if n := atomic.LoadInt32(&fired); n != 1 {
		t.Fatalf("expiry fired %d times, want 1", n)
	}
}

func TestClockCancelSuppressesExpiry(t *testing.T) {
	c := NewClock()
	var fired int32
	if err := c.Start(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) }); err != nil {
		t.Fatal(err)
	}

	c.Cancel()
	time.Sleep(60 * time.Millisecond)

	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Fatalf("expiry fired %d times after Cancel, want 0", n)
	}
	if got := c.Remaining(); got != 0 {
		t.Fatalf("Remaining after Cancel = %v, want 0", got)
	}
}

func TestClockCancelAfterExpiryIsNoop(t *testing.T) {
	c := NewClock()
	done := make(chan struct{})
	if err := c.Start(10*time.Millisecond, func() { close(done) }); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expiry never fired")
	}

	c.Cancel() // Must not panic or un-fire anything.
}
