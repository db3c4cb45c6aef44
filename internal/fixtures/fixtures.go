// Package fixtures builds hand frame sequences and camera frames for tests.
package fixtures

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/bird/internal/hand"
)

// Press geometry: hand root at the origin, a 4 cm ball 5 cm ahead.
const (
	PressRadius = 0.04
	pressZ      = 0.05
)

// PressFrame returns a hand whose index tip sits depth metres inside the
// fitted ball, straight above its center.
func PressFrame(depth float64) hand.Frame {
	center := r3.Vec{Z: pressZ}
	tip := r3.Vec{Y: PressRadius - depth, Z: pressZ}
	return hand.SphereFrame(center, PressRadius, r3.Vec{}, tip)
}

// PressSequence returns one PressFrame per depth.
func PressSequence(depths ...float64) []hand.Frame {
	frames := make([]hand.Frame, len(depths))
	for i, d := range depths {
		frames[i] = PressFrame(d)
	}
	return frames
}

// Click rests, presses past the default select depth, holds, then lets go
// below the release depth. It selects on frame 1 and releases on frame 3.
func Click() []hand.Frame {
	return PressSequence(0, 0.008, 0.008, 0.004, 0)
}

// Sweep moves the cupped preset hand from `from` to `to` in n frames.
func Sweep(from, to r3.Vec, n int) []hand.Frame {
	base := hand.CuppedHandFrame()
	frames := make([]hand.Frame, n)
	for i := range frames {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		offset := r3.Add(from, r3.Scale(t, r3.Sub(to, from)))
		frames[i] = base.Translate(offset)
	}
	return frames
}

// Lost returns n frames without a hand.
func Lost(n int) []hand.Frame {
	return make([]hand.Frame, n)
}

// CameraFrames returns n 640x480 frames with a white square moving left to
// right, enough for motion detection to fire between consecutive frames.
// Callers close the returned mats.
func CameraFrames(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		x := 40 + i*80%520
		gocv.Rectangle(&mat, image.Rect(x, 160, x+120, 320), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)
		frames[i] = &mat
	}
	return frames
}
