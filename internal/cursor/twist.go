package cursor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minTwistNorm is the shortest axis or projected vector that still defines
// an angle.
const minTwistNorm = 1e-9

// Twist returns the signed angle, in degrees, from the hand's up vector
// (index knuckle minus hand root) to worldUp, both projected perpendicular
// to pointing and measured about pointing. Positive angles are
// counter-clockwise looking down the axis. reverse negates the result.
func Twist(indexKnuckle, root, pointing, worldUp r3.Vec, reverse bool) (float64, error) {
	if r3.Norm(pointing) < minTwistNorm {
		return 0, ErrDegenerateTwist
	}
	axis := r3.Unit(pointing)

	handUp := reject(r3.Sub(indexKnuckle, root), axis)
	refUp := reject(worldUp, axis)
	if r3.Norm(handUp) < minTwistNorm || r3.Norm(refUp) < minTwistNorm {
		return 0, ErrDegenerateTwist
	}

	angle := math.Atan2(r3.Dot(r3.Cross(handUp, refUp), axis), r3.Dot(handUp, refUp))
	deg := angle * 180 / math.Pi
	if reverse {
		deg = -deg
	}
	return deg, nil
}

// reject removes the component of v along the unit vector axis.
func reject(v, axis r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, axis), axis))
}
