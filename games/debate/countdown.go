/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"sync"
	"time"
)

// Countdown is a cancellable deadline. The channel returned by Start is closed
// either when the deadline passes or when Cancel is called, whichever comes
// first. Owners treat both outcomes the same way.
type Countdown struct {
	mu        sync.Mutex
	now       func() time.Time
	deadline  time.Time
	started   bool
	cancelled bool
	timer     *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

func NewCountdown() *Countdown {
	return &Countdown{
		now:  time.Now,
		done: make(chan struct{}),
	}
}

// Start arms the countdown. Calling it again returns the same channel and
// leaves the first deadline untouched.
func (c *Countdown) Start(d time.Duration) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return c.done
	}
	c.started = true
	c.deadline = c.now().Add(d)

	if d <= 0 {
		c.finish()
		return c.done
	}

	c.timer = time.AfterFunc(d, c.finish)

	return c.done
}

// Cancel resolves the countdown immediately. It is safe to call at any time,
// including before Start and after expiry.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.finish()
}

func (c *Countdown) finish() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done returns the completion channel. It is nil-safe for callers selecting
// on a countdown that was never armed: the channel simply never closes.
func (c *Countdown) Done() <-chan struct{} {
	if c == nil {
		return nil
	}

	return c.done
}

func (c *Countdown) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cancelled
}

// RemainingSeconds reports whole seconds left before the deadline, truncated
// toward zero. It never goes negative and reads 0 once cancelled.
func (c *Countdown) RemainingSeconds() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.cancelled {
		return 0
	}

	left := c.deadline.Sub(c.now())
	if left <= 0 {
		return 0
	}

	return int(left / time.Second)
}
