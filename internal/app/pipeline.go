package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/bird/internal/capture"
	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/detector"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/hand/mediapipe"
)

// runPipeline is the main loop. Each tick it:
//  1. reads a camera frame and keeps a copy for the preview stream
//  2. checks for motion
//  3. runs hand detection while awake or moving
//  4. steps every cursor and emits events
//  5. adjusts the capture rate between TickHz and IdleHz
func (a *App) runPipeline(stopCh, doneCh chan struct{}, useCamera bool) {
	defer close(doneCh)

	rate := a.waker.Rate()
	if !useCamera {
		rate = a.config.TickHz
	}
	ticker := time.NewTicker(capture.Interval(rate))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		if !useCamera {
			a.StepOnce(nil)
			continue
		}

		hands, moved, ok := a.readHands()
		if !ok {
			continue
		}
		a.StepOnce(hands)

		next := a.waker.Observe(time.Now(), moved, a.anyTracking())
		if next != rate {
			rate = next
			a.Camera().SetFPS(rate)
			ticker.Reset(capture.Interval(rate))
			if a.waker.Awake() {
				log.Printf("Switched to active mode (%d fps)", rate)
			} else {
				log.Printf("Switched to idle mode (%d fps)", rate)
			}
		}
	}
}

// readHands reads one frame and runs detection on it when warranted.
func (a *App) readHands() ([]detector.HandLandmarks, bool, bool) {
	frame, err := a.Camera().ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return nil, false, false
	}
	defer frame.Close()

	a.latest.Set(frame)
	moved, _ := a.motion.Detect(frame)

	d := a.Detector()
	if d == nil || !(moved || a.waker.Awake()) {
		return nil, moved, true
	}

	hands, err := d.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return nil, moved, true
	}
	return hands, moved, true
}

// StepOnce runs one tick for every cursor against the given detections and
// returns the events it produced. Sources that do not take detections are
// advanced on their own: a Playback moves to its next frame, a MockSource
// keeps its current pose.
func (a *App) StepOnce(hands []detector.HandLandmarks) []Event {
	a.stepMu.Lock()
	now := time.Now()
	var events []Event

	for _, t := range a.hands {
		switch src := t.source.(type) {
		case *mediapipe.Source:
			src.Update(hands)
		case *hand.Playback:
			src.Advance()
		}

		res, err := t.cursor.Update()
		if err != nil {
			if !t.rejected {
				log.Printf("Rejected tick for %s hand: %v", t.chirality, err)
			}
			t.rejected = true
		} else {
			t.rejected = false
		}

		if pubErr := a.registry.Publish(t.entryID); pubErr != nil {
			log.Printf("Error publishing %s cursor: %v", t.chirality, pubErr)
		}

		state := t.cursor.State()
		event := func(kind EventKind, zone string) {
			events = append(events, Event{
				Kind:     kind,
				CursorID: t.entryID,
				Hand:     t.chirality,
				User:     a.userOf(t),
				Zone:     zone,
				State:    state,
				Time:     now,
			})
		}

		tracking := t.cursor.Tracking()
		switch {
		case t.tracking && !tracking:
			event(EventLost, "")
			t.status = StatusLost
		case !t.tracking && tracking:
			event(EventFound, "")
			t.status = StatusReleased
		}
		t.tracking = tracking

		if res == cursor.ResultUpdated {
			if state.JustSelected {
				event(EventSelect, "")
				t.status = StatusSelected
			}
			if state.JustDeselected {
				event(EventRelease, "")
				t.status = StatusReleased
			}
			for _, z := range a.zones {
				if z.Entered(t.cursor) {
					event(EventEnter, z.Name)
				}
			}
		}

		a.record(t)
	}
	a.stepMu.Unlock()

	a.emit(events)
	return events
}

func (a *App) userOf(t *tracked) string {
	if e, ok := a.registry.Get(t.entryID); ok {
		return e.User
	}
	return a.config.User
}

func (a *App) anyTracking() bool {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	for _, t := range a.hands {
		if t.tracking {
			return true
		}
	}
	return false
}

// LoadPlayback replaces the frames replayed for ch. It fails unless the app
// runs on the replay backend.
func (a *App) LoadPlayback(ch hand.Chirality, frames []hand.Frame) error {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	t := a.find(ch)
	if t == nil {
		return errors.New("hand not tracked: " + ch.String())
	}
	p, ok := t.source.(*hand.Playback)
	if !ok {
		return errors.New("playback needs the replay backend")
	}
	p.Load(frames)
	return nil
}
