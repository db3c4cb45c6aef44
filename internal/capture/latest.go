package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned by Latest before the first frame arrives.
var ErrNoFrame = errors.New("no frame captured yet")

// Latest holds a copy of the most recent frame so readers other than the
// capture loop, such as the preview stream, never touch the camera.
type Latest struct {
	mat gocv.Mat
	seq uint64
	mu  sync.Mutex
}

func NewLatest() *Latest {
	return &Latest{mat: gocv.NewMat()}
}

// Set copies frame in.
func (l *Latest) Set(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	frame.CopyTo(&l.mat)
	l.seq++
}

// Seq increases by one for every frame set.
func (l *Latest) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// JPEG encodes the latest frame and returns it with its sequence number.
func (l *Latest) JPEG() ([]byte, uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seq == 0 {
		return nil, 0, ErrNoFrame
	}
	buf, err := gocv.IMEncode(".jpg", l.mat)
	if err != nil {
		return nil, 0, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, l.seq, nil
}

// Close releases the frame. JPEG reports ErrNoFrame afterwards.
func (l *Latest) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mat.Close()
	l.seq = 0
}
