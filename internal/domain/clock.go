package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source. Tests freeze it via SetClock so snapshot
// and publish timestamps are deterministic.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
