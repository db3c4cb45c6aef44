package cursor

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Zone is a named region that fires when a cursor passes into it.
type Zone struct {
	Name  string
	Shape Collider

	// Direction, when non-zero, only counts entries moving within 45
	// degrees of it.
	Direction r3.Vec
}

// Validate checks that the zone is named and has a shape.
func (z Zone) Validate() error {
	if z.Name == "" {
		return fmt.Errorf("%w: zone without a name", ErrInvalidConfig)
	}
	if z.Shape == nil {
		return fmt.Errorf("%w: zone %q has no shape", ErrInvalidConfig, z.Name)
	}
	if !finite(z.Direction.X) || !finite(z.Direction.Y) || !finite(z.Direction.Z) {
		return fmt.Errorf("%w: zone %q direction %v", ErrInvalidConfig, z.Name, z.Direction)
	}
	return nil
}

// Entered reports whether c passed into z on its last tick.
func (z Zone) Entered(c *Cursor) bool {
	if z.Shape == nil {
		return false
	}
	if r3.Norm(z.Direction) == 0 {
		return c.WentThrough(z.Shape)
	}
	return c.WentThroughToward(z.Shape, z.Direction)
}
