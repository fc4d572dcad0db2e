package session

import (
	"context"
	"time"
)

const (
	nudgePeriod  = 15 * time.Second
	nudgeVisible = 5 * time.Second
)

// Nudger toggles a "notice bubble" while the chat widget is closed: visible
// for a short window on a fixed period, independent of conversational state.
type Nudger struct {
	clock    Clock
	period   time.Duration
	visible  time.Duration
	onChange func(visible bool)
}

// NewNudger creates a nudger with the default 15s period and 5s visibility.
// onChange is invoked from Run's goroutine on every toggle.
func NewNudger(onChange func(bool)) *Nudger {
	return NewNudgerWithClock(onChange, realClock{}, nudgePeriod, nudgeVisible)
}

// NewNudgerWithClock creates a nudger with a custom clock and timings
// (for testing).
func NewNudgerWithClock(onChange func(bool), clock Clock, period, visible time.Duration) *Nudger {
	if visible > period {
		visible = period
	}
	return &Nudger{
		clock:    clock,
		period:   period,
		visible:  visible,
		onChange: onChange,
	}
}

// Run toggles the bubble until ctx is cancelled: shown immediately, hidden
// after the visible window, shown again one period after the previous
// activation. Always leaves the bubble hidden on exit.
func (n *Nudger) Run(ctx context.Context) {
	defer n.onChange(false)

	for {
		n.onChange(true)
		select {
		case <-ctx.Done():
			return
		case <-n.clock.After(n.visible):
		}

		n.onChange(false)
		select {
		case <-ctx.Done():
			return
		case <-n.clock.After(n.period - n.visible):
		}
	}
}
