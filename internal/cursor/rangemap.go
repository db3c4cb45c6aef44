package cursor

import (
	"fmt"
	"math"
)

// RangeMapper remaps the hand-to-sphere distance into cursor reach. Near
// controls the near-identity regime, Far the point where the sixth-power term
// takes over. Both are in metres.
type RangeMapper struct {
	Near float64 `json:"near"`
	Far  float64 `json:"far"`
}

// DefaultRangeMapper returns the 2 cm / 3 cm characteristic.
func DefaultRangeMapper() RangeMapper {
	return RangeMapper{Near: 0.02, Far: 0.03}
}

// Map returns Near·(x/Near + (x/Near)² + (x/Far)⁶).
func (m RangeMapper) Map(x float64) float64 {
	x1 := x / m.Near
	x2 := x / m.Far
	return m.Near * (x1 + x1*x1 + math.Pow(x2, 6))
}

// Validate checks both characteristics are positive and finite.
func (m RangeMapper) Validate() error {
	if !(m.Near > 0) || math.IsInf(m.Near, 0) {
		return fmt.Errorf("%w: near characteristic %v", ErrInvalidConfig, m.Near)
	}
	if !(m.Far > 0) || math.IsInf(m.Far, 0) {
		return fmt.Errorf("%w: far characteristic %v", ErrInvalidConfig, m.Far)
	}
	return nil
}
