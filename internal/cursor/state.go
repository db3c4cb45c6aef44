package cursor

import (
	"github.com/ayusman/bird/internal/fit"
	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half-line from Origin along the unit vector Direction.
type Ray struct {
	Origin    r3.Vec `json:"origin"`
	Direction r3.Vec `json:"direction"`
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// State is the cursor as exposed to consumers after each tick.
type State struct {
	Position       r3.Vec  `json:"position"`
	PrevPosition   r3.Vec  `json:"prev_position"`
	Range          float64 `json:"range"`
	Ray            Ray     `json:"ray"`
	Twist          float64 `json:"twist"`
	Selected       bool    `json:"selected"`
	JustSelected   bool    `json:"just_selected"`
	JustDeselected bool    `json:"just_deselected"`
}

// Debug is the geometry behind the last accepted tick, for visualisation.
type Debug struct {
	FitPoints       []r3.Vec   `json:"fit_points"`
	Sphere          fit.Sphere `json:"sphere"`
	HandRoot        r3.Vec     `json:"hand_root"`
	IndexTip        r3.Vec     `json:"index_tip"`
	RawTarget       r3.Vec     `json:"raw_target"`
	Pointing        float64    `json:"pointing"`
	Depth           float64    `json:"depth"`
	TwistDegenerate bool       `json:"twist_degenerate"`
}
