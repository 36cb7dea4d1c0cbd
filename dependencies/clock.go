package dependencies

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Clock is the only way effects observe time.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx ends, in which case it returns ctx.Err().
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock reads and waits on wall-clock time.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type immediateClock struct {
	mu  sync.Mutex
	now time.Time
}

// ImmediateClock never waits: Sleep advances its own time and returns at once.
func ImmediateClock(start time.Time) Clock {
	return &immediateClock{now: start}
}

func (c *immediateClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *immediateClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// TestClock only moves when Advance is called.
type TestClock struct {
	mu       sync.Mutex
	now      time.Time
	sleepers []*sleeper
	changed  chan struct{}
}

type sleeper struct {
	until time.Time
	wake  chan struct{}
}

func NewTestClock(start time.Time) *TestClock {
	return &TestClock{now: start, changed: make(chan struct{})}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	if d <= 0 {
		c.mu.Unlock()
		return ctx.Err()
	}
	s := &sleeper{until: c.now.Add(d), wake: make(chan struct{})}
	c.sleepers = append(c.sleepers, s)
	c.notifyLocked()
	c.mu.Unlock()

	select {
	case <-s.wake:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		c.removeLocked(s)
		c.notifyLocked()
		c.mu.Unlock()
		return ctx.Err()
	}
}

// Advance moves time forward by d and wakes sleepers in deadline order.
func (c *TestClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)

	sort.SliceStable(c.sleepers, func(i, j int) bool {
		return c.sleepers[i].until.Before(c.sleepers[j].until)
	})
	remaining := c.sleepers[:0]
	for _, s := range c.sleepers {
		if !s.until.After(c.now) {
			close(s.wake)
			continue
		}
		remaining = append(remaining, s)
	}
	c.sleepers = remaining
	c.notifyLocked()
}

// Sleepers is the number of goroutines currently blocked in Sleep.
func (c *TestClock) Sleepers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleepers)
}

// BlockUntil waits until at least n goroutines are blocked in Sleep or ctx ends.
func (c *TestClock) BlockUntil(ctx context.Context, n int) error {
	for {
		c.mu.Lock()
		if len(c.sleepers) >= n {
			c.mu.Unlock()
			return nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *TestClock) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

func (c *TestClock) removeLocked(target *sleeper) {
	for i, s := range c.sleepers {
		if s == target {
			c.sleepers = append(c.sleepers[:i], c.sleepers[i+1:]...)
			return
		}
	}
}
