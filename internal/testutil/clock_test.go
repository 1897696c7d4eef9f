// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestRealClock_Since(t *testing.T) {
	t.Parallel()

	clock := RealClock{}
	past := time.Now().Add(-1 * time.Second)
	if elapsed := clock.Since(past); elapsed < time.Second {
		t.Errorf("RealClock.Since() = %v, want >= 1s", elapsed)
	}
}

func TestNewFakeClock_ZeroUsesReferenceTime(t *testing.T) {
	t.Parallel()

	if got := NewFakeClock(time.Time{}).Now(); !got.Equal(ReferenceTime) {
		t.Errorf("Now() = %v, want %v", got, ReferenceTime)
	}
}

func TestFakeClock_AdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	clock.Advance(90 * time.Minute)
	if got := clock.Since(start); got != 90*time.Minute {
		t.Errorf("Since() after Advance = %v, want 90m", got)
	}

	target := start.Add(-24 * time.Hour)
	clock.Set(target)
	if got := clock.Now(); !got.Equal(target) {
		t.Errorf("Now() after Set = %v, want %v", got, target)
	}
}

func TestFakeClock_ConcurrentAdvance(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Time{})
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	if got := clock.Since(ReferenceTime); got != 50*time.Second {
		t.Errorf("Since() = %v, want 50s", got)
	}
}
