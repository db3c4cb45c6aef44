// Package config loads and saves the bird YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/detector"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/hand/mediapipe"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr          = ":8080"
	DefaultTickHz        = 30
	DefaultIdleHz        = 5
	DefaultPluginTimeout = 5 * time.Second
	DefaultDataDir       = ".bird"
	DefaultDBName        = "bird.db"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Tracking TrackingConfig `yaml:"tracking"`
	Cursor   CursorConfig   `yaml:"cursor"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Plugins  PluginConfig   `yaml:"plugins"`
	Zones    []ZoneConfig   `yaml:"zones,omitempty"`
}

type TrackingConfig struct {
	Backend         string        `yaml:"backend"`
	Hands           []string      `yaml:"hands,flow"`
	User            string        `yaml:"user"`
	CameraID        int           `yaml:"camera_id"`
	TickHz          int           `yaml:"tick_hz"`
	IdleHz          int           `yaml:"idle_hz"`
	IdleAfter       time.Duration `yaml:"idle_after"`
	MotionThreshold float64       `yaml:"motion_threshold"`
	Scale           float64       `yaml:"scale"`
	Depth           float64       `yaml:"depth"`
	MinScore        float64       `yaml:"min_score"`
	ScriptPath      string        `yaml:"script_path,omitempty"`
	PythonPath      string        `yaml:"python_path,omitempty"`
}

type CursorConfig struct {
	Preset          string     `yaml:"preset,omitempty"`
	ProcessVariance float64    `yaml:"process_variance"`
	RScale          float64    `yaml:"r_scale"`
	SelectDepth     float64    `yaml:"select_depth"`
	ReleaseDepth    float64    `yaml:"release_depth"`
	Near            float64    `yaml:"near"`
	Far             float64    `yaml:"far"`
	WorldUp         [3]float64 `yaml:"world_up,flow"`
	TwistReverse    bool       `yaml:"twist_reverse"`
	MinPointing     float64    `yaml:"min_pointing"`
}

// ZoneConfig is a named sphere or box that fires an "enter" event when a
// cursor passes into it. Radius is used for spheres, HalfExtents for boxes.
type ZoneConfig struct {
	Name        string     `yaml:"name"`
	Shape       string     `yaml:"shape"`
	Center      [3]float64 `yaml:"center,flow"`
	Radius      float64    `yaml:"radius,omitempty"`
	HalfExtents [3]float64 `yaml:"half_extents,flow,omitempty"`
	Direction   [3]float64 `yaml:"direction,flow,omitempty"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir,omitempty"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type PluginConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

func DefaultConfig() *Config {
	dataDir := DataDir()
	lm := mediapipe.DefaultConfig()

	return &Config{
		Tracking: TrackingConfig{
			Backend:         string(hand.BackendMediaPipe),
			Hands:           []string{"left", "right"},
			TickHz:          DefaultTickHz,
			IdleHz:          DefaultIdleHz,
			IdleAfter:       2 * time.Second,
			MotionThreshold: 1.0,
			Scale:           lm.Scale,
			Depth:           lm.Depth,
			MinScore:        lm.MinScore,
		},
		Cursor: FromCursor(cursor.DefaultConfig()),
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir, DefaultDBName),
		},
		Plugins: PluginConfig{
			Dir:     filepath.Join(dataDir, "plugins"),
			Timeout: DefaultPluginTimeout,
		},
	}
}

// DataDir returns ~/.bird, or .bird when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Cursor.Preset != "" {
		if err := cfg.ApplyPreset(cfg.Cursor.Preset); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section and reports the first problem.
func (c *Config) Validate() error {
	if _, err := c.Backend(); err != nil {
		return err
	}
	if _, err := c.Chiralities(); err != nil {
		return err
	}
	if c.Tracking.TickHz <= 0 {
		return fmt.Errorf("%w: tick_hz must be positive, got %d", ErrInvalid, c.Tracking.TickHz)
	}
	if c.Tracking.IdleHz <= 0 || c.Tracking.IdleHz > c.Tracking.TickHz {
		return fmt.Errorf("%w: idle_hz must be in (0, tick_hz], got %d", ErrInvalid, c.Tracking.IdleHz)
	}
	if !(c.Tracking.Scale > 0) || math.IsInf(c.Tracking.Scale, 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalid, c.Tracking.Scale)
	}
	if c.Plugins.Timeout <= 0 {
		return fmt.Errorf("%w: plugin timeout must be positive", ErrInvalid)
	}
	if err := c.CursorConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.CursorZones(); err != nil {
		return err
	}
	return nil
}

// Backend returns the configured tracking backend.
func (c *Config) Backend() (hand.Backend, error) {
	return hand.ParseBackend(c.Tracking.Backend)
}

// Chiralities returns the tracked hands, without duplicates.
func (c *Config) Chiralities() ([]hand.Chirality, error) {
	if len(c.Tracking.Hands) == 0 {
		return nil, fmt.Errorf("%w: no hands configured", ErrInvalid)
	}
	seen := make(map[hand.Chirality]bool)
	var out []hand.Chirality
	for _, s := range c.Tracking.Hands {
		ch, err := hand.ParseChirality(s)
		if err != nil {
			return nil, err
		}
		if !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	return out, nil
}

// CursorConfig converts the cursor section.
func (c *Config) CursorConfig() cursor.Config {
	cc := c.Cursor
	return cursor.Config{
		ProcessVariance: cc.ProcessVariance,
		RScale:          cc.RScale,
		SelectDepth:     cc.SelectDepth,
		ReleaseDepth:    cc.ReleaseDepth,
		Range:           cursor.RangeMapper{Near: cc.Near, Far: cc.Far},
		WorldUp:         r3.Vec{X: cc.WorldUp[0], Y: cc.WorldUp[1], Z: cc.WorldUp[2]},
		TwistReverse:    cc.TwistReverse,
		MinPointing:     cc.MinPointing,
	}
}

// CursorZones converts the zones section.
func (c *Config) CursorZones() ([]cursor.Zone, error) {
	seen := make(map[string]bool, len(c.Zones))
	zones := make([]cursor.Zone, 0, len(c.Zones))
	for _, zc := range c.Zones {
		if seen[zc.Name] {
			return nil, fmt.Errorf("%w: duplicate zone %q", ErrInvalid, zc.Name)
		}
		seen[zc.Name] = true

		center := vec(zc.Center)
		z := cursor.Zone{Name: zc.Name, Direction: vec(zc.Direction)}
		switch zc.Shape {
		case "sphere":
			if !(zc.Radius > 0) || math.IsInf(zc.Radius, 0) {
				return nil, fmt.Errorf("%w: zone %q radius %v", ErrInvalid, zc.Name, zc.Radius)
			}
			z.Shape = cursor.SphereCollider{Center: center, Radius: zc.Radius}
		case "box":
			h := zc.HalfExtents
			if !(h[0] > 0 && h[1] > 0 && h[2] > 0) {
				return nil, fmt.Errorf("%w: zone %q half extents %v", ErrInvalid, zc.Name, h)
			}
			z.Shape = cursor.BoxCollider{Center: center, HalfExtents: vec(h)}
		default:
			return nil, fmt.Errorf("%w: zone %q shape %q", ErrInvalid, zc.Name, zc.Shape)
		}
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		zones = append(zones, z)
	}
	return zones, nil
}

func vec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// LandmarkConfig converts the landmark mapping settings.
func (c *Config) LandmarkConfig() mediapipe.Config {
	return mediapipe.Config{
		Scale:    c.Tracking.Scale,
		Depth:    c.Tracking.Depth,
		MinScore: c.Tracking.MinScore,
	}
}

// DetectorConfig converts the detector settings.
func (c *Config) DetectorConfig() detector.Config {
	d := detector.DefaultConfig()
	d.MaxHands = len(c.Tracking.Hands)
	d.MinConfidence = c.Tracking.MinScore
	d.ScriptPath = c.Tracking.ScriptPath
	d.PythonPath = c.Tracking.PythonPath
	return d
}

// FromCursor converts cursor tuning into its file form.
func FromCursor(cc cursor.Config) CursorConfig {
	return CursorConfig{
		ProcessVariance: cc.ProcessVariance,
		RScale:          cc.RScale,
		SelectDepth:     cc.SelectDepth,
		ReleaseDepth:    cc.ReleaseDepth,
		Near:            cc.Range.Near,
		Far:             cc.Range.Far,
		WorldUp:         [3]float64{cc.WorldUp.X, cc.WorldUp.Y, cc.WorldUp.Z},
		TwistReverse:    cc.TwistReverse,
		MinPointing:     cc.MinPointing,
	}
}
