package config

import (
	"fmt"
	"sort"

	"github.com/ayusman/bird/internal/cursor"
)

// Presets are named cursor tunings.
var Presets = map[string]CursorConfig{
	"default": FromCursor(cursor.DefaultConfig()),
	"precise": {
		ProcessVariance: 0.0005,
		RScale:          400,
		SelectDepth:     0.008,
		ReleaseDepth:    0.005,
		Near:            0.025,
		Far:             0.04,
		WorldUp:         [3]float64{0, 1, 0},
		MinPointing:     1e-6,
	},
	"reach": {
		ProcessVariance: 0.002,
		RScale:          200,
		SelectDepth:     0.007,
		ReleaseDepth:    0.005,
		Near:            0.015,
		Far:             0.025,
		WorldUp:         [3]float64{0, 1, 0},
		MinPointing:     1e-6,
	},
}

// ApplyPreset replaces the cursor section with a named preset, keeping the
// twist direction. A preset named in a loaded file wins over the tuning
// values next to it.
func (c *Config) ApplyPreset(name string) error {
	p, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, name)
	}
	reverse := c.Cursor.TwistReverse
	c.Cursor = p
	c.Cursor.Preset = name
	c.Cursor.TwistReverse = reverse
	return nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
