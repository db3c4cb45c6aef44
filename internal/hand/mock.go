package hand

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// MockSource is a test implementation of the Source interface.
// It allows tests to control tracking and joint positions directly.
type MockSource struct {
	frame Frame
	mu    sync.RWMutex
}

// NewMockSource creates a new MockSource that is not tracking.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// SetTracking sets the value reported by IsTracking.
func (m *MockSource) SetTracking(tracking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame.Tracking = tracking
}

// SetJoint sets a single joint position.
func (m *MockSource) SetJoint(f Finger, j Joint, p r3.Vec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame.Joints[f][j] = p
}

// SetFrame replaces every joint and the tracking flag.
func (m *MockSource) SetFrame(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = f
}

// IsTracking implements Source.
func (m *MockSource) IsTracking() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame.Tracking
}

// JointPosition implements Source.
func (m *MockSource) JointPosition(f Finger, j Joint) r3.Vec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame.JointPosition(f, j)
}

// SphereFrame builds a tracking frame whose 16 fit joints lie exactly on the
// sphere (center, radius), spread with a Fibonacci lattice, and whose hand
// root lands on root. The index tip is placed at indexTip.
func SphereFrame(center r3.Vec, radius float64, root, indexTip r3.Vec) Frame {
	f := Frame{Tracking: true}

	golden := math.Pi * (3 - math.Sqrt(5))
	for i, ref := range fitJoints {
		y := 1 - 2*(float64(i)+0.5)/NumFitPoints
		r := math.Sqrt(1 - y*y)
		phi := float64(i) * golden
		unit := r3.Vec{X: math.Cos(phi) * r, Y: y, Z: math.Sin(phi) * r}
		f.Joints[ref.finger][ref.joint] = r3.Add(center, r3.Scale(radius, unit))
	}

	// root = 0.6*indexKnuckle + 0.4*thumbBase, solved for the thumb base.
	knuckle := f.Joints[Index][Base]
	f.Joints[Thumb][Base] = r3.Scale(1/RootThumbWeight, r3.Sub(root, r3.Scale(RootIndexWeight, knuckle)))
	f.Joints[Index][Tip] = indexTip

	// Unused index joints sit between knuckle and tip.
	f.Joints[Index][MiddleProximal] = lerp(knuckle, indexTip, 1.0/3)
	f.Joints[Index][MiddleDistal] = lerp(knuckle, indexTip, 2.0/3)

	return f
}

// CuppedHandFrame returns a preset hand curled around a 4.5 cm ball about
// 35 cm in front of the origin, index finger resting outside the ball.
func CuppedHandFrame() Frame {
	center := r3.Vec{X: 0, Y: 0, Z: 0.35}
	root := r3.Vec{X: 0, Y: -0.01, Z: 0.30}
	tip := r3.Vec{X: 0, Y: 0.06, Z: 0.35}
	return SphereFrame(center, 0.045, root, tip)
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
