package hand

import "gonum.org/v1/gonum/spatial/r3"

// NumFitPoints is the number of joints the sphere is fitted to.
const NumFitPoints = 16

// Hand root blend between the index knuckle and the thumb base.
const (
	RootIndexWeight = 0.6
	RootThumbWeight = 0.4
)

type jointRef struct {
	finger Finger
	joint  Joint
}

// fitJoints is the fixed composition of the fit set. The thumb base is left
// out because it pins the sphere to the wrist; the index finger contributes
// only its knuckle so pressing with it does not drag the fit.
var fitJoints = [NumFitPoints]jointRef{
	{Thumb, MiddleProximal},
	{Thumb, MiddleDistal},
	{Thumb, Tip},

	{Index, Base},

	{Middle, Base},
	{Middle, MiddleProximal},
	{Middle, MiddleDistal},
	{Middle, Tip},

	{Ring, Base},
	{Ring, MiddleProximal},
	{Ring, MiddleDistal},
	{Ring, Tip},

	{Pinky, Base},
	{Pinky, MiddleProximal},
	{Pinky, MiddleDistal},
	{Pinky, Tip},
}

// Sample is the per-tick snapshot of the points the cursor needs.
type Sample struct {
	Points       [NumFitPoints]r3.Vec
	Root         r3.Vec
	IndexKnuckle r3.Vec
	IndexTip     r3.Vec
}

// Collect reads a Sample from src. It returns false without touching the
// source's joints when the hand is not tracking.
func Collect(src Source) (Sample, bool) {
	if src == nil || !src.IsTracking() {
		return Sample{}, false
	}

	var s Sample
	for i, ref := range fitJoints {
		s.Points[i] = src.JointPosition(ref.finger, ref.joint)
	}

	s.IndexKnuckle = src.JointPosition(Index, Base)
	s.IndexTip = src.JointPosition(Index, Tip)
	s.Root = r3.Add(
		r3.Scale(RootIndexWeight, s.IndexKnuckle),
		r3.Scale(RootThumbWeight, src.JointPosition(Thumb, Base)),
	)

	return s, true
}

// FitPoints returns the fit points as a slice.
func (s *Sample) FitPoints() []r3.Vec {
	out := make([]r3.Vec, NumFitPoints)
	copy(out, s.Points[:])
	return out
}
