// Package cursor turns a tracked hand into a smoothed 3D cursor.
//
// Each tick the cursor fits a sphere to the curled fingers, points from the
// hand root through the sphere center, pushes the target out along that line
// with a RangeMapper, smooths it with a Kalman filter, and derives a ray,
// twist angle and a debounced click from the index fingertip.
//
// A Cursor is not safe for concurrent use. Separate cursors share nothing and
// may be updated from different goroutines.
package cursor

import (
	"fmt"
	"math"

	"github.com/ayusman/bird/internal/fit"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/kalman"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the cursor tuning.
type Config struct {
	// ProcessVariance is the Kalman process noise Q.
	ProcessVariance float64 `json:"process_variance"`

	// RScale multiplies the cube of the pointing length to give the
	// measurement noise R.
	RScale float64 `json:"r_scale"`

	// SelectDepth and ReleaseDepth are the fingertip penetration thresholds
	// in metres. ReleaseDepth must be below SelectDepth.
	SelectDepth  float64 `json:"select_depth"`
	ReleaseDepth float64 `json:"release_depth"`

	// Range is the distance remapping characteristic.
	Range RangeMapper `json:"range"`

	// WorldUp is the reference direction for zero twist.
	WorldUp r3.Vec `json:"world_up"`

	// TwistReverse negates the twist angle.
	TwistReverse bool `json:"twist_reverse"`

	// MinPointing is the shortest root-to-center distance that still
	// defines a pointing direction.
	MinPointing float64 `json:"min_pointing"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		ProcessVariance: 0.001,
		RScale:          270,
		SelectDepth:     0.007,
		ReleaseDepth:    0.005,
		Range:           DefaultRangeMapper(),
		WorldUp:         r3.Vec{Y: 1},
		MinPointing:     1e-6,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if !(c.ProcessVariance >= 0) || math.IsInf(c.ProcessVariance, 0) {
		return fmt.Errorf("%w: process variance %v", ErrInvalidConfig, c.ProcessVariance)
	}
	if !(c.RScale >= 0) || math.IsInf(c.RScale, 0) {
		return fmt.Errorf("%w: r scale %v", ErrInvalidConfig, c.RScale)
	}
	if !finite(c.SelectDepth) || !finite(c.ReleaseDepth) || !(c.ReleaseDepth < c.SelectDepth) {
		return fmt.Errorf("%w: release depth %v must be below select depth %v",
			ErrInvalidConfig, c.ReleaseDepth, c.SelectDepth)
	}
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if !finite(c.WorldUp.X) || !finite(c.WorldUp.Y) || !finite(c.WorldUp.Z) {
		return fmt.Errorf("%w: world up %v", ErrInvalidConfig, c.WorldUp)
	}
	if r3.Norm(c.WorldUp) == 0 {
		return fmt.Errorf("%w: world up is zero", ErrInvalidConfig)
	}
	if !(c.MinPointing >= 0) || math.IsInf(c.MinPointing, 0) {
		return fmt.Errorf("%w: min pointing %v", ErrInvalidConfig, c.MinPointing)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Result describes what a tick did.
type Result int

const (
	// ResultUpdated means the state advanced.
	ResultUpdated Result = iota
	// ResultNotTracking means the hand was lost and nothing changed.
	ResultNotTracking
	// ResultRejected means the geometry was degenerate and nothing changed.
	ResultRejected
)

func (r Result) String() string {
	switch r {
	case ResultUpdated:
		return "updated"
	case ResultNotTracking:
		return "not_tracking"
	case ResultRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Cursor is the smoothed pointer for one hand.
type Cursor struct {
	src      hand.Source
	config   Config
	filter   *kalman.Filter
	selector *Selector

	state    State
	debug    Debug
	tracking bool
	ticks    uint64
}

// New creates a cursor bound to src for its lifetime.
func New(src hand.Source, config Config) (*Cursor, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	filter, err := kalman.New(config.ProcessVariance)
	if err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}

	selector, err := NewSelector(config.SelectDepth, config.ReleaseDepth)
	if err != nil {
		return nil, err
	}

	return &Cursor{
		src:      src,
		config:   config,
		filter:   filter,
		selector: selector,
	}, nil
}

// Update runs one tick. A lost hand returns ResultNotTracking with a nil
// error. Degenerate geometry returns ResultRejected with a *TickError; in
// both cases the state and filter are left exactly as they were.
func (c *Cursor) Update() (Result, error) {
	c.ticks++

	sample, ok := hand.Collect(c.src)
	if !ok {
		c.tracking = false
		return ResultNotTracking, nil
	}
	c.tracking = true

	points := sample.FitPoints()
	sphere, err := fit.Fit(points)
	if err != nil {
		return ResultRejected, c.reject("fit", err)
	}

	root := sample.Root
	pointing := r3.Sub(sphere.Center, root)
	m := r3.Norm(pointing)
	if m < c.config.MinPointing || m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return ResultRejected, c.reject("pointing", fmt.Errorf("%w: length %v", ErrDegeneratePointing, m))
	}

	target := r3.Add(r3.Scale(c.config.Range.Map(m)/m, pointing), root)
	r := m * m * m * c.config.RScale

	pos, err := c.filter.Update(target, kalman.NoControl(), r)
	if err != nil {
		return ResultRejected, c.reject("filter", err)
	}

	next := c.state
	next.PrevPosition = c.state.Position
	next.Position = pos

	offset := r3.Sub(pos, root)
	next.Range = r3.Norm(offset)
	dir := pointing
	if next.Range > 0 {
		dir = offset
	}
	next.Ray = Ray{Origin: root, Direction: r3.Unit(dir)}

	twist, twistErr := Twist(sample.IndexKnuckle, root, pointing, c.config.WorldUp, c.config.TwistReverse)
	if twistErr == nil {
		next.Twist = twist
	}

	depth := Depth(sphere.Radius, sample.IndexTip, sphere.Center, pos)
	c.selector.Step(depth)
	next.Selected = c.selector.Selected()
	next.JustSelected = c.selector.JustSelected()
	next.JustDeselected = c.selector.JustDeselected()

	c.state = next
	c.debug = Debug{
		FitPoints:       points,
		Sphere:          sphere,
		HandRoot:        root,
		IndexTip:        sample.IndexTip,
		RawTarget:       target,
		Pointing:        m,
		Depth:           depth,
		TwistDegenerate: twistErr != nil,
	}

	return ResultUpdated, nil
}

func (c *Cursor) reject(stage string, err error) error {
	return &TickError{Tick: c.ticks, Stage: stage, Wrapped: err}
}

// State returns the state after the last accepted tick.
func (c *Cursor) State() State {
	return c.state
}

// Debug returns the geometry of the last accepted tick. The fit points are
// shared with later calls and must not be modified.
func (c *Cursor) Debug() Debug {
	return c.debug
}

// Tracking reports whether the hand was tracked on the last tick.
func (c *Cursor) Tracking() bool {
	return c.tracking
}

// Ticks returns the number of times Update has been called.
func (c *Cursor) Ticks() uint64 {
	return c.ticks
}

// Config returns the tuning the cursor was built with.
func (c *Cursor) Config() Config {
	return c.config
}

// Velocity returns (Position - PrevPosition) / dt. A non-positive dt
// yields the zero vector.
func (c *Cursor) Velocity(dt float64) r3.Vec {
	if dt <= 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/dt, r3.Sub(c.state.Position, c.state.PrevPosition))
}
