package hand

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is a full snapshot of one hand: the tracking flag and every joint.
// It is the unit recorded to and replayed from storage.
type Frame struct {
	Tracking bool                           `json:"tracking"`
	Joints   [NumFingers][NumJoints]r3.Vec `json:"joints"`
}

// Capture copies the current state of src into a Frame.
func Capture(src Source) Frame {
	var f Frame
	if src == nil || !src.IsTracking() {
		return f
	}
	f.Tracking = true
	for fi := Finger(0); fi < NumFingers; fi++ {
		for j := Joint(0); j < NumJoints; j++ {
			f.Joints[fi][j] = src.JointPosition(fi, j)
		}
	}
	return f
}

// IsTracking implements Source.
func (f *Frame) IsTracking() bool {
	return f.Tracking
}

// JointPosition implements Source.
func (f *Frame) JointPosition(finger Finger, j Joint) r3.Vec {
	if finger < 0 || int(finger) >= NumFingers || j < 0 || int(j) >= NumJoints {
		return r3.Vec{}
	}
	return f.Joints[finger][j]
}

// Translate returns a copy of the frame with every joint moved by t.
func (f Frame) Translate(t r3.Vec) Frame {
	for fi := range f.Joints {
		for j := range f.Joints[fi] {
			f.Joints[fi][j] = r3.Add(f.Joints[fi][j], t)
		}
	}
	return f
}

// Playback replays recorded frames as a Source. Nothing is tracked until the
// first call to Advance.
type Playback struct {
	frames []Frame
	index  int
	mu     sync.RWMutex
}

// NewPlayback creates a Playback over frames.
func NewPlayback(frames []Frame) *Playback {
	return &Playback{frames: frames, index: -1}
}

// Load replaces the frame sequence and rewinds.
func (p *Playback) Load(frames []Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = frames
	p.index = -1
}

// Advance moves to the next frame. It returns false once the sequence is
// exhausted, after which the source reports not tracking.
func (p *Playback) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < len(p.frames) {
		p.index++
	}
	return p.index < len(p.frames)
}

// Reset rewinds to before the first frame.
func (p *Playback) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = -1
}

// Len returns the number of frames.
func (p *Playback) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.frames)
}

// IsTracking implements Source.
func (p *Playback) IsTracking() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.index < 0 || p.index >= len(p.frames) {
		return false
	}
	return p.frames[p.index].Tracking
}

// JointPosition implements Source.
func (p *Playback) JointPosition(f Finger, j Joint) r3.Vec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.index < 0 || p.index >= len(p.frames) {
		return r3.Vec{}
	}
	return p.frames[p.index].JointPosition(f, j)
}
