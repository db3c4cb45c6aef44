// Package detector turns camera frames into hand landmarks.
package detector

import "gonum.org/v1/gonum/spatial/r3"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized image coordinates
// in [0,1]; Z is depth relative to the wrist at roughly the same scale as X.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Metric scales normalized image landmark i into metres in a left-handed
// frame: X to the right, Y up, Z away from the camera. scale is metres per
// normalized image unit and depth is the distance of the image plane from
// the origin. These are not MediaPipe world landmarks.
func (h *HandLandmarks) Metric(i int, scale, depth float64) r3.Vec {
	p := h.Points[i]
	return r3.Vec{
		X: (p.X - 0.5) * scale,
		Y: (0.5 - p.Y) * scale,
		Z: depth + p.Z*scale,
	}
}

// Find returns the highest scoring hand with the given handedness.
func Find(hands []HandLandmarks, handedness string) (*HandLandmarks, bool) {
	var best *HandLandmarks
	for i := range hands {
		if hands[i].Handedness != handedness {
			continue
		}
		if best == nil || hands[i].Score > best.Score {
			best = &hands[i]
		}
	}
	return best, best != nil
}
