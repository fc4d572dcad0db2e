package session

import "time"

// Clock abstracts wall-clock waits so tests can fast-forward the verified-
// answer reveal delay and the idle nudge instead of sleeping for real.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
