// Package kalman smooths a 3D position with a scalar-covariance Kalman filter.
//
// The filter models a stationary target with additive process noise. One
// covariance term is shared by all three axes, so every axis receives the
// same gain on a given step.
package kalman

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidVariance is returned for a negative or non-finite variance.
var ErrInvalidVariance = errors.New("invalid variance")

// InitialCovariance is the error covariance of a new or reset filter.
const InitialCovariance = 1.0

// Control is the optional per-step control input. The zero value is
// NoControl.
type Control struct {
	processVariance float64
	set             bool
}

// NoControl returns the absent control input.
func NoControl() Control {
	return Control{}
}

// ProcessVariance returns a control that replaces the filter's process
// variance from this step on.
func ProcessVariance(q float64) Control {
	return Control{processVariance: q, set: true}
}

// Present reports whether the control carries a value.
func (c Control) Present() bool {
	return c.set
}

// Filter is a running estimate of a 3D quantity. It is not safe for
// concurrent use; each cursor owns one.
type Filter struct {
	q float64
	p float64
	x r3.Vec
}

// New creates a filter with process variance q, estimate at the origin and
// covariance InitialCovariance.
func New(q float64) (*Filter, error) {
	if !validVariance(q) {
		return nil, fmt.Errorf("%w: process variance %v", ErrInvalidVariance, q)
	}
	return &Filter{q: q, p: InitialCovariance}, nil
}

// Update runs one predict and correct step against measurement with
// measurement variance r, and returns the new estimate. On error the filter
// is left unchanged.
func (f *Filter) Update(measurement r3.Vec, c Control, r float64) (r3.Vec, error) {
	if !validVariance(r) {
		return f.x, fmt.Errorf("%w: measurement variance %v", ErrInvalidVariance, r)
	}
	if c.set && !validVariance(c.processVariance) {
		return f.x, fmt.Errorf("%w: process variance %v", ErrInvalidVariance, c.processVariance)
	}
	if !finiteVec(measurement) {
		return f.x, fmt.Errorf("%w: non-finite measurement %v", ErrInvalidVariance, measurement)
	}

	q := f.q
	if c.set {
		q = c.processVariance
	}

	// Predict: P' = P + Q
	predicted := f.p + q
	denom := predicted + r
	if denom <= 0 {
		return f.x, fmt.Errorf("%w: zero innovation variance", ErrInvalidVariance)
	}

	// Correct: K = P'/(P'+R), P = R·P'/(P'+R), X += K(z - X)
	k := predicted / denom
	f.q = q
	f.p = r * predicted / denom
	f.x = r3.Add(f.x, r3.Scale(k, r3.Sub(measurement, f.x)))

	return f.x, nil
}

// Estimate returns the current estimate.
func (f *Filter) Estimate() r3.Vec {
	return f.x
}

// Covariance returns the current error covariance.
func (f *Filter) Covariance() float64 {
	return f.p
}

// ProcessNoise returns the process variance in effect.
func (f *Filter) ProcessNoise() float64 {
	return f.q
}

// Reset returns the filter to its initial belief, keeping the process
// variance.
func (f *Filter) Reset() {
	f.p = InitialCovariance
	f.x = r3.Vec{}
}

func validVariance(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func finiteVec(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
