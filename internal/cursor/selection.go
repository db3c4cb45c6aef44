package cursor

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// SelectionState is the debounced click state.
type SelectionState int

const (
	Released SelectionState = iota
	Selected
)

func (s SelectionState) String() string {
	if s == Selected {
		return "selected"
	}
	return "released"
}

// Selector turns fingertip penetration depth into a click with hysteresis:
// it selects above selectDepth and releases only below releaseDepth.
type Selector struct {
	selectDepth  float64
	releaseDepth float64

	state          SelectionState
	justSelected   bool
	justDeselected bool
}

// NewSelector creates a Selector in the Released state.
func NewSelector(selectDepth, releaseDepth float64) (*Selector, error) {
	if !(releaseDepth < selectDepth) {
		return nil, fmt.Errorf("%w: release depth %v must be below select depth %v",
			ErrInvalidConfig, releaseDepth, selectDepth)
	}
	return &Selector{selectDepth: selectDepth, releaseDepth: releaseDepth}, nil
}

// Step advances the machine by one tick of depth.
func (s *Selector) Step(depth float64) {
	s.justSelected = false
	s.justDeselected = false

	switch s.state {
	case Released:
		if depth > s.selectDepth {
			s.state = Selected
			s.justSelected = true
		}
	case Selected:
		if depth < s.releaseDepth {
			s.state = Released
			s.justDeselected = true
		}
	}
}

// State returns the current state.
func (s *Selector) State() SelectionState { return s.state }

// Selected reports whether the selector is in the Selected state.
func (s *Selector) Selected() bool { return s.state == Selected }

// JustSelected reports a Released to Selected transition on the last step.
func (s *Selector) JustSelected() bool { return s.justSelected }

// JustDeselected reports a Selected to Released transition on the last step.
func (s *Selector) JustDeselected() bool { return s.justDeselected }

// Depth returns how far indexTip penetrates a sphere of radius centred on
// whichever of sphereCenter and cursorPos is nearer to the tip. Ties go to
// the cursor position.
func Depth(radius float64, indexTip, sphereCenter, cursorPos r3.Vec) float64 {
	toCenter := r3.Norm(r3.Sub(indexTip, sphereCenter))
	toCursor := r3.Norm(r3.Sub(indexTip, cursorPos))
	if toCenter < toCursor {
		return radius - toCenter
	}
	return radius - toCursor
}
