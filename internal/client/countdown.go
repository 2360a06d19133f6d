package client

import (
	"sync"
	"time"
)

const tickInterval = time.Second

// Countdown is a cancellable deadline checked on every clock tick. Expiry
// fires once, when the remaining time reaches zero.
type Countdown struct {
	clock    Clock
	duration time.Duration
	onTick   func(remaining time.Duration)
	onExpire func()

	mu       sync.Mutex
	deadline time.Time
	running  bool
	cancel   chan struct{}
	done     chan struct{}
}

// NewCountdown builds a stopped countdown. Callbacks run on the countdown
// goroutine; onExpire runs after the goroutine released its resources, so it
// may call Stop or Start.
func NewCountdown(clock Clock, duration time.Duration, onTick func(time.Duration), onExpire func()) *Countdown {
	if clock == nil {
		clock = SystemClock()
	}
	return &Countdown{clock: clock, duration: duration, onTick: onTick, onExpire: onExpire}
}

// Start (re)arms the countdown at its full duration.
func (c *Countdown) Start() {
	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.deadline = c.clock.Now().Add(c.duration)
	c.running = true
	cancel := make(chan struct{})
	done := make(chan struct{})
	c.cancel, c.done = cancel, done

	ticker := c.clock.NewTicker(tickInterval)
	go func() {
		expired := c.run(ticker, cancel)
		ticker.Stop()
		close(done)
		if expired && c.onExpire != nil {
			c.onExpire()
		}
	}()
}

// Stop cancels the countdown and waits for its goroutine to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.running = false
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	close(cancel)
	<-done
}

// Remaining returns time left, never negative.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

// Expired reports whether the armed deadline has passed.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.deadline.IsZero() && c.remainingLocked() == 0
}

// Running reports whether the countdown goroutine is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Countdown) remainingLocked() time.Duration {
	if c.deadline.IsZero() {
		return c.duration
	}
	left := c.deadline.Sub(c.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Countdown) run(ticker Ticker, cancel <-chan struct{}) bool {
	for {
		select {
		case <-cancel:
			return false
		case <-ticker.C():
			c.mu.Lock()
			left := c.remainingLocked()
			if left == 0 {
				c.running = false
			}
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(left)
			}
			if left == 0 {
				return true
			}
		}
	}
}
