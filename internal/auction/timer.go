package auction

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultNominationSeconds bounds how long a captain has to nominate
// before auto-nomination kicks in.
const DefaultNominationSeconds = 30

var reminderMarks = [...]int{10, 5}

// NominationTimer is the countdown bound to one captain's nomination
// turn. It ticks once per second on the injected clock, emits reminders
// when exactly 10 and 5 seconds remain, and supports cooperative
// pause/resume/cancel checked at tick boundaries.
type NominationTimer struct {
	clock   clockwork.Clock
	total   int
	captain string
	remind  func(captain string, secondsLeft int)

	mu        sync.Mutex
	paused    bool
	cancelled bool
}

func NewNominationTimer(clock clockwork.Clock, seconds int, captain string, remind func(captain string, secondsLeft int)) *NominationTimer {
	if seconds <= 0 {
		seconds = DefaultNominationSeconds
	}
	return &NominationTimer{
		clock:   clock,
		total:   seconds,
		captain: captain,
		remind:  remind,
	}
}

// Run counts down to zero. It returns ErrTimerCancelled if Cancel was
// called before expiry, ctx.Err() if the context ended, and nil on
// natural expiry — the caller treats nil as the auto-nomination
// trigger. While paused, ticks pass without countdown progress or
// reminders.
func (t *NominationTimer) Run(ctx context.Context) error {
	remaining := t.total
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.clock.After(time.Second):
		}
		if t.isCancelled() {
			return ErrTimerCancelled
		}
		if t.isPaused() {
			continue
		}
		remaining--
		if t.remind != nil && isReminderMark(remaining) {
			t.remind(t.captain, remaining)
		}
	}
	if t.isCancelled() {
		return ErrTimerCancelled
	}
	return nil
}

// Cancel flags the timer; the next tick terminates Run without
// completing the countdown. Idempotent: a second cancel is a no-op.
func (t *NominationTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
}

func (t *NominationTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

func (t *NominationTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

func (t *NominationTimer) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

func (t *NominationTimer) isPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func isReminderMark(remaining int) bool {
	for _, m := range reminderMarks {
		if remaining == m {
			return true
		}
	}
	return false
}
