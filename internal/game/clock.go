package game

import "time"

// Trigger decides when a room's round is due.
type Trigger interface {
	// Due reports whether the round should resolve now.
	Due(now time.Time, entries []Entry) bool
	// Remaining is the time left on a timed round; ok is false for rounds
	// that wait on players instead of a timer.
	Remaining(now time.Time) (d time.Duration, ok bool)
	// Reset starts the next round at now.
	Reset(now time.Time)
}

// TimerTrigger fires once per fixed interval measured from the last reset.
type TimerTrigger struct {
	interval time.Duration
	last     time.Time
}

// NewTimerTrigger starts a timer at start.
func NewTimerTrigger(interval time.Duration, start time.Time) *TimerTrigger {
	return &TimerTrigger{interval: interval, last: start}
}

func (t *TimerTrigger) Remaining(now time.Time) (time.Duration, bool) {
	left := t.interval - now.Sub(t.last)
	if left < 0 {
		left = 0
	}
	return left, true
}

func (t *TimerTrigger) Due(now time.Time, _ []Entry) bool {
	left, _ := t.Remaining(now)
	return left == 0
}

func (t *TimerTrigger) Reset(now time.Time) { t.last = now }

// ActionTrigger fires once Required members all have a pending action.
type ActionTrigger struct {
	Required int
}

func (a ActionTrigger) Due(_ time.Time, entries []Entry) bool {
	ready := 0
	for _, e := range entries {
		if e.Action != nil {
			ready++
		}
	}
	return len(entries) >= a.Required && ready >= a.Required
}

func (ActionTrigger) Remaining(time.Time) (time.Duration, bool) { return 0, false }

func (ActionTrigger) Reset(time.Time) {}
