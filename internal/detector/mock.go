package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
	calls int
	mu    sync.Mutex
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// CuppedLandmarks returns a preset hand curled as if holding a ball, palm
// toward the camera, index finger resting against the side of the ball.
func CuppedLandmarks(handedness string) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.00}

	// Thumb wraps the near side of the ball
	landmarks.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.74, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.68, Z: -0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.64, Y: 0.61, Z: -0.06}
	landmarks.Points[ThumbTip] = Point3D{X: 0.62, Y: 0.55, Z: -0.09}

	landmarks.Points[IndexMCP] = Point3D{X: 0.57, Y: 0.62, Z: -0.01}
	landmarks.Points[IndexPIP] = Point3D{X: 0.60, Y: 0.53, Z: -0.04}
	landmarks.Points[IndexDIP] = Point3D{X: 0.59, Y: 0.48, Z: -0.07}
	landmarks.Points[IndexTip] = Point3D{X: 0.57, Y: 0.45, Z: -0.10}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.60, Z: 0.00}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.52, Y: 0.50, Z: -0.03}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.45, Z: -0.07}
	landmarks.Points[MiddleTip] = Point3D{X: 0.49, Y: 0.43, Z: -0.11}

	landmarks.Points[RingMCP] = Point3D{X: 0.46, Y: 0.62, Z: 0.00}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.53, Z: -0.03}
	landmarks.Points[RingDIP] = Point3D{X: 0.44, Y: 0.48, Z: -0.06}
	landmarks.Points[RingTip] = Point3D{X: 0.43, Y: 0.46, Z: -0.10}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.41, Y: 0.65, Z: 0.00}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.39, Y: 0.58, Z: -0.02}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.38, Y: 0.54, Z: -0.05}
	landmarks.Points[PinkyTip] = Point3D{X: 0.38, Y: 0.52, Z: -0.08}

	return landmarks
}

// Shifted returns a copy of h moved by (dx, dy, dz) in landmark units.
func (h HandLandmarks) Shifted(dx, dy, dz float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
		h.Points[i].Z += dz
	}
	return h
}
