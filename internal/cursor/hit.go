package cursor

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DirectionGate is the minimum cosine between cursor motion and a requested
// direction for WentThroughToward, i.e. within 45 degrees.
const DirectionGate = 0.7071

// Hit is a ray intersection.
type Hit struct {
	Point    r3.Vec  `json:"point"`
	Normal   r3.Vec  `json:"normal"`
	Distance float64 `json:"distance"`
}

// Collider is a shape a ray can be cast against. Rays starting inside the
// shape do not hit it.
type Collider interface {
	Raycast(ray Ray, maxDistance float64) (Hit, bool)
}

// SphereCollider is a solid sphere.
type SphereCollider struct {
	Center r3.Vec
	Radius float64
}

// Raycast implements Collider.
func (s SphereCollider) Raycast(ray Ray, maxDistance float64) (Hit, bool) {
	oc := r3.Sub(ray.Origin, s.Center)
	b := r3.Dot(ray.Direction, oc)
	c := r3.Norm2(oc) - s.Radius*s.Radius
	if c < 0 {
		return Hit{}, false
	}
	disc := b*b - c
	if disc < 0 {
		return Hit{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 || t > maxDistance {
		return Hit{}, false
	}
	p := ray.At(t)
	return Hit{Point: p, Normal: r3.Unit(r3.Sub(p, s.Center)), Distance: t}, true
}

// BoxCollider is an axis-aligned box.
type BoxCollider struct {
	Center      r3.Vec
	HalfExtents r3.Vec
}

// Raycast implements Collider using the slab method.
func (b BoxCollider) Raycast(ray Ray, maxDistance float64) (Hit, bool) {
	lo := r3.Sub(b.Center, b.HalfExtents)
	hi := r3.Add(b.Center, b.HalfExtents)

	origin := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	dir := [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}
	lower := [3]float64{lo.X, lo.Y, lo.Z}
	upper := [3]float64{hi.X, hi.Y, hi.Z}

	inside := true
	tNear, tFar := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0

	for i := 0; i < 3; i++ {
		if origin[i] < lower[i] || origin[i] > upper[i] {
			inside = false
		}
		if dir[i] == 0 {
			if origin[i] < lower[i] || origin[i] > upper[i] {
				return Hit{}, false
			}
			continue
		}
		t1 := (lower[i] - origin[i]) / dir[i]
		t2 := (upper[i] - origin[i]) / dir[i]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tNear {
			tNear, axis, sign = t1, i, s
		}
		if t2 < tFar {
			tFar = t2
		}
	}

	if inside || axis < 0 || tNear > tFar || tNear < 0 || tNear > maxDistance {
		return Hit{}, false
	}

	var n [3]float64
	n[axis] = sign
	return Hit{
		Point:    ray.At(tNear),
		Normal:   r3.Vec{X: n[0], Y: n[1], Z: n[2]},
		Distance: tNear,
	}, true
}

// Hit casts the last tick's motion, from PrevPosition toward Position,
// against col. A stationary cursor hits nothing.
func (c *Cursor) Hit(col Collider) (Hit, bool) {
	moved := r3.Sub(c.state.Position, c.state.PrevPosition)
	dist := r3.Norm(moved)
	if dist == 0 {
		return Hit{}, false
	}
	ray := Ray{Origin: c.state.PrevPosition, Direction: r3.Scale(1/dist, moved)}
	return col.Raycast(ray, dist)
}

// WentThrough reports whether the cursor entered col on the last tick.
func (c *Cursor) WentThrough(col Collider) bool {
	_, ok := c.Hit(col)
	return ok
}

// WentThroughToward is WentThrough limited to motion within 45 degrees of
// direction.
func (c *Cursor) WentThroughToward(col Collider, direction r3.Vec) bool {
	moved := r3.Sub(c.state.Position, c.state.PrevPosition)
	if r3.Norm(moved) == 0 || r3.Norm(direction) == 0 {
		return false
	}
	if r3.Dot(r3.Unit(moved), r3.Unit(direction)) < DirectionGate {
		return false
	}
	return c.WentThrough(col)
}
