package capture

import (
	"testing"
	"time"
)

func TestWaker(t *testing.T) {
	w := NewWaker(30, 5, 2*time.Second)
	t0 := time.Unix(1000, 0)

	if w.Awake() || w.Rate() != 5 {
		t.Fatal("waker should start asleep at the idle rate")
	}

	steps := []struct {
		name     string
		at       time.Duration
		motion   bool
		tracking bool
		want     int
	}{
		{"still scene stays idle", 0, false, false, 5},
		{"motion wakes", 100 * time.Millisecond, true, false, 30},
		{"quiet but within grace", time.Second, false, false, 30},
		{"tracking keeps awake", 2 * time.Second, false, true, 30},
		{"still within grace of tracking", 3900 * time.Millisecond, false, false, 30},
		{"grace expires", 4 * time.Second, false, false, 5},
		{"stays idle", 5 * time.Second, false, false, 5},
	}

	for _, s := range steps {
		if got := w.Observe(t0.Add(s.at), s.motion, s.tracking); got != s.want {
			t.Errorf("%s: rate %d, want %d", s.name, got, s.want)
		}
	}
}

func TestWaker_ClampsRates(t *testing.T) {
	w := NewWaker(2, 0, time.Second)
	if w.Rate() != 1 {
		t.Errorf("idle rate should clamp to 1, got %d", w.Rate())
	}

	w = NewWaker(3, 10, time.Second)
	if got := w.Observe(time.Now(), true, false); got != 10 {
		t.Errorf("active rate should not be below idle, got %d", got)
	}
}

func TestInterval(t *testing.T) {
	if Interval(30) != time.Second/30 {
		t.Errorf("unexpected interval %v", Interval(30))
	}
	if Interval(0) != time.Second {
		t.Errorf("non-positive rate should clamp to 1 fps, got %v", Interval(0))
	}
}
