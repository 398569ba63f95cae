package domain

import "time"

// RemainingSeconds rounds the time left before deadline up to whole seconds
// and never goes below zero. It is always recomputed from the deadline so a
// late or skipped tick still yields the right value.
func RemainingSeconds(deadline, now time.Time) int {
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	secs := left / time.Second
	if left%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// Latch fires at most once until reset.
type Latch struct {
	fired bool
}

// Fire reports true only on the first call.
func (l *Latch) Fire() bool {
	if l.fired {
		return false
	}
	l.fired = true
	return true
}

func (l *Latch) Fired() bool { return l.fired }

func (l *Latch) Reset() { l.fired = false }
