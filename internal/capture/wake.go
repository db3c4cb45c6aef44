package capture

import (
	"sync"
	"time"
)

// Waker chooses the capture rate. It runs at the active rate while the
// scene moves or a hand is tracked and drops to the idle rate once neither
// has happened for idleAfter.
type Waker struct {
	active    int
	idle      int
	idleAfter time.Duration
	last      time.Time
	awake     bool
	mu        sync.Mutex
}

// NewWaker creates a Waker that starts asleep.
func NewWaker(active, idle int, idleAfter time.Duration) *Waker {
	if idle <= 0 {
		idle = 1
	}
	if active < idle {
		active = idle
	}
	return &Waker{active: active, idle: idle, idleAfter: idleAfter}
}

// Observe records one capture and returns the rate for the next one.
func (w *Waker) Observe(now time.Time, motion, tracking bool) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if motion || tracking {
		w.last = now
		w.awake = true
	} else if w.awake && now.Sub(w.last) >= w.idleAfter {
		w.awake = false
	}

	if w.awake {
		return w.active
	}
	return w.idle
}

// Awake reports whether the active rate is in effect.
func (w *Waker) Awake() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.awake
}

// Rate returns the current rate.
func (w *Waker) Rate() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.awake {
		return w.active
	}
	return w.idle
}

// Interval converts a rate to a tick period.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
