package session

import "time"

// timer is a one-shot scheduled task with an explicit cancellation handle.
// Superseding events (a new edit, an agent join, disconnect) stop stale
// timers deterministically instead of relying on flag checks inside the
// callback.
type timer struct {
	t *time.Timer
}

func startTimer(d time.Duration, fn func()) *timer {
	return &timer{t: time.AfterFunc(d, fn)}
}

// stop cancels the timer if it has not fired yet. Safe on nil.
func (t *timer) stop() {
	if t == nil || t.t == nil {
		return
	}
	t.t.Stop()
}
