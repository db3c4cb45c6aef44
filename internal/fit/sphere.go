// Package fit computes least-squares sphere fits over hand joints.
//
// The fit is closed form: points are centred on their mean, the sphere
// equation |q - c|² = r² is linearised to 2q·c + k = |q|² with
// k = r² - |c|², and the 4×4 normal equations are solved directly.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinPoints is the smallest point count that determines a sphere.
const MinPoints = 4

var (
	// ErrTooFewPoints is returned when fewer than MinPoints are supplied.
	ErrTooFewPoints = errors.New("too few points for sphere fit")

	// ErrDegenerateFit is returned when the points do not determine a
	// sphere: coplanar or coincident input, or a non-finite solution.
	ErrDegenerateFit = errors.New("degenerate sphere fit")
)

// Sphere is a fitted center and radius, in metres.
type Sphere struct {
	Center r3.Vec  `json:"center"`
	Radius float64 `json:"radius"`
}

// Depth returns how far p lies inside the sphere. It is negative outside.
func (s Sphere) Depth(p r3.Vec) float64 {
	return s.Radius - r3.Norm(r3.Sub(p, s.Center))
}

// Translate returns the sphere moved by t.
func (s Sphere) Translate(t r3.Vec) Sphere {
	return Sphere{Center: r3.Add(s.Center, t), Radius: s.Radius}
}

// Fit returns the least-squares sphere through points.
func Fit(points []r3.Vec) (Sphere, error) {
	n := len(points)
	if n < MinPoints {
		return Sphere{}, fmt.Errorf("%w: got %d, need %d", ErrTooFewPoints, n, MinPoints)
	}

	var mean r3.Vec
	for _, p := range points {
		mean = r3.Add(mean, p)
	}
	mean = r3.Scale(1/float64(n), mean)

	// Rows of A are [2qx, 2qy, 2qz, 1]; target d is |q|².
	ata := mat.NewSymDense(4, nil)
	atd := mat.NewVecDense(4, nil)
	var row [4]float64
	for _, p := range points {
		q := r3.Sub(p, mean)
		d := r3.Norm2(q)
		row = [4]float64{2 * q.X, 2 * q.Y, 2 * q.Z, 1}
		for i := 0; i < 4; i++ {
			atd.SetVec(i, atd.AtVec(i)+row[i]*d)
			for j := i; j < 4; j++ {
				ata.SetSym(i, j, ata.At(i, j)+row[i]*row[j])
			}
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(ata); err != nil {
		return Sphere{}, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}

	var x mat.VecDense
	x.MulVec(&inv, atd)

	offset := r3.Vec{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}
	r2 := x.AtVec(3) + r3.Norm2(offset)
	if r2 < 0 || !finite(r2) || !finite(offset.X) || !finite(offset.Y) || !finite(offset.Z) {
		return Sphere{}, ErrDegenerateFit
	}

	return Sphere{
		Center: r3.Add(mean, offset),
		Radius: math.Sqrt(r2),
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
