// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

// ReferenceTime is where a zero-initialized FakeClock starts:
// 2021-06-15 12:30:45 UTC.
var ReferenceTime = time.Date(2021, 6, 15, 12, 30, 45, 0, time.UTC)

type (
	// Clock is the time source for log file names, failure timestamps and
	// cache freshness checks.
	Clock interface {
		Now() time.Time
		Since(t time.Time) time.Duration
	}

	// RealClock reads the wall clock.
	RealClock struct{}

	// FakeClock is a Clock frozen at a chosen instant. It is safe for
	// concurrent use.
	FakeClock struct {
		mu  sync.RWMutex
		now time.Time
	}
)

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// NewFakeClock returns a FakeClock frozen at start. A zero start means
// ReferenceTime.
func NewFakeClock(start time.Time) *FakeClock {
	if start.IsZero() {
		start = ReferenceTime
	}
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Since measures against the frozen instant, not the wall clock.
func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the clock forward by d. A negative d moves it back.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
