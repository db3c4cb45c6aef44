package app

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/store"
)

var (
	// ErrNoStore is returned when recording without a store.
	ErrNoStore = errors.New("no store configured")
	// ErrRecording is returned when a recording is already running.
	ErrRecording = errors.New("already recording")
	// ErrNotRecording is returned by StopRecording when nothing is recorded.
	ErrNotRecording = errors.New("not recording")
)

// recorder buffers frames of one hand and writes them in batches.
type recorder struct {
	rec *store.Recording
	buf []hand.Frame
}

// StartRecording begins capturing the frames of hand ch, one per tick, into
// a new stored recording.
func (a *App) StartRecording(name string, ch hand.Chirality) (*store.Recording, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}

	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	if a.recorder != nil {
		return nil, ErrRecording
	}
	if a.find(ch) == nil {
		return nil, fmt.Errorf("hand not tracked: %s", ch)
	}

	rec := &store.Recording{
		ID:     uuid.New().String(),
		Name:   name,
		Hand:   ch,
		TickHz: a.config.TickHz,
	}
	if err := a.config.Store.Recordings().Create(rec); err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}

	a.recorder = &recorder{rec: rec, buf: make([]hand.Frame, 0, recordFlush)}
	log.Printf("Recording %s hand as %q", ch, name)
	return rec, nil
}

// StopRecording writes any buffered frames and returns the finished
// recording. If the write fails the recording keeps running with its buffer
// intact, so StopRecording can be retried or the recording discarded.
func (a *App) StopRecording() (*store.Recording, error) {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	r := a.recorder
	if r == nil {
		return nil, ErrNotRecording
	}
	if err := a.flush(r); err != nil {
		return nil, err
	}
	a.recorder = nil

	rec, err := a.config.Store.Recordings().GetByID(r.rec.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("Recorded %d frames to %s", rec.Frames, rec.ID)
	return rec, nil
}

// DiscardRecording stops the running recording and drops any frames not yet
// written. Frames already stored stay in the store.
func (a *App) DiscardRecording() error {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()

	r := a.recorder
	if r == nil {
		return ErrNotRecording
	}
	a.recorder = nil
	log.Printf("Discarded %d buffered frames of %s", len(r.buf), r.rec.ID)
	return nil
}

// IsRecording reports whether a recording is running.
func (a *App) IsRecording() bool {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	return a.recorder != nil
}

// record appends the current frame of t when it is the recorded hand.
// Called with stepMu held.
func (a *App) record(t *tracked) {
	r := a.recorder
	if r == nil || r.rec.Hand != t.chirality {
		return
	}
	r.buf = append(r.buf, hand.Capture(t.source))
	if len(r.buf) < recordFlush {
		return
	}
	if err := a.flush(r); err != nil {
		log.Printf("Error writing recording %s: %v", r.rec.ID, err)
	}
}

func (a *App) flush(r *recorder) error {
	if len(r.buf) == 0 {
		return nil
	}
	if err := a.config.Store.Recordings().AppendFrames(r.rec.ID, r.buf); err != nil {
		return fmt.Errorf("append frames: %w", err)
	}
	r.buf = r.buf[:0]
	return nil
}

// ReplayTick is the outcome of one replayed frame.
type ReplayTick struct {
	Index  int
	Result cursor.Result
	Err    error
	State  cursor.State
	Debug  cursor.Debug
}

// Replay runs frames through a fresh cursor built from config and returns
// one tick per frame.
func Replay(frames []hand.Frame, config cursor.Config) ([]ReplayTick, error) {
	p := hand.NewPlayback(frames)
	c, err := cursor.New(p, config)
	if err != nil {
		return nil, err
	}

	ticks := make([]ReplayTick, 0, len(frames))
	for i := 0; p.Advance(); i++ {
		res, err := c.Update()
		ticks = append(ticks, ReplayTick{
			Index:  i,
			Result: res,
			Err:    err,
			State:  c.State(),
			Debug:  c.Debug(),
		})
	}
	return ticks, nil
}
