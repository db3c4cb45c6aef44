package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Tracking.Backend != "mediapipe" {
		t.Errorf("expected backend mediapipe, got %s", cfg.Tracking.Backend)
	}
	if cfg.CursorConfig() != cursor.DefaultConfig() {
		t.Error("cursor section should round-trip the cursor defaults")
	}
	if filepath.Base(cfg.Store.Path) != DefaultDBName {
		t.Errorf("unexpected store path %s", cfg.Store.Path)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bird.yaml")

	cfg := DefaultConfig()
	cfg.Tracking.Backend = "mock"
	cfg.Tracking.Hands = []string{"right"}
	cfg.Cursor.TwistReverse = true
	cfg.Plugins.Timeout = 3 * time.Second

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Tracking.Backend != "mock" {
		t.Errorf("expected backend mock, got %s", got.Tracking.Backend)
	}
	hands, err := got.Chiralities()
	if err != nil || len(hands) != 1 || hands[0] != hand.Right {
		t.Errorf("expected [Right], got %v (%v)", hands, err)
	}
	if !got.Cursor.TwistReverse {
		t.Error("twist_reverse lost")
	}
	if got.Plugins.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", got.Plugins.Timeout)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bird.yaml")
	data := []byte("tracking:\n  backend: replay\n  tick_hz: 60\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tracking.TickHz != 60 {
		t.Errorf("expected tick_hz 60, got %d", cfg.Tracking.TickHz)
	}
	if cfg.Cursor.SelectDepth != 0.007 {
		t.Errorf("expected default select depth, got %v", cfg.Cursor.SelectDepth)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("tracking: [\n"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	unset := filepath.Join(dir, "unset.yaml")
	os.WriteFile(unset, []byte("tracking:\n  backend: \"\"\n"), 0644)
	if _, err := Load(unset); !errors.Is(err, hand.ErrBackendNotConfigured) {
		t.Errorf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestLoad_RejectsNaN(t *testing.T) {
	for name, body := range map[string]string{
		"world up":     "cursor:\n  world_up: [.nan, 1, 0]\n",
		"min pointing": "cursor:\n  min_pointing: .nan\n",
		"select depth": "cursor:\n  select_depth: .inf\n",
		"scale":        "tracking:\n  scale: .nan\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bird.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown hand", func(c *Config) { c.Tracking.Hands = []string{"middle"} }},
		{"no hands", func(c *Config) { c.Tracking.Hands = nil }},
		{"zero tick rate", func(c *Config) { c.Tracking.TickHz = 0 }},
		{"idle faster than active", func(c *Config) { c.Tracking.IdleHz = c.Tracking.TickHz + 1 }},
		{"zero scale", func(c *Config) { c.Tracking.Scale = 0 }},
		{"no plugin timeout", func(c *Config) { c.Plugins.Timeout = 0 }},
		{"inverted thresholds", func(c *Config) { c.Cursor.ReleaseDepth = 0.01 }},
		{"zero up", func(c *Config) { c.Cursor.WorldUp = [3]float64{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCursorZones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bird.yaml")
	data := []byte(`zones:
  - name: play
    shape: sphere
    center: [0, 0, 0.5]
    radius: 0.05
  - name: shelf
    shape: box
    center: [0.2, 0, 0.4]
    half_extents: [0.1, 0.02, 0.1]
    direction: [0, -1, 0]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	zones, err := cfg.CursorZones()
	if err != nil {
		t.Fatalf("zones: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if s, ok := zones[0].Shape.(cursor.SphereCollider); !ok || s.Radius != 0.05 {
		t.Errorf("expected sphere of radius 0.05, got %#v", zones[0].Shape)
	}
	if _, ok := zones[1].Shape.(cursor.BoxCollider); !ok {
		t.Errorf("expected box, got %#v", zones[1].Shape)
	}
	if zones[1].Direction.Y != -1 {
		t.Errorf("expected downward direction, got %v", zones[1].Direction)
	}

	bad := []ZoneConfig{
		{Name: "", Shape: "sphere", Radius: 1},
		{Name: "flat", Shape: "box", HalfExtents: [3]float64{1, 0, 1}},
		{Name: "blob", Shape: "torus"},
		{Name: "nan", Shape: "sphere", Radius: math.NaN()},
	}
	for _, zc := range bad {
		cfg := DefaultConfig()
		cfg.Zones = []ZoneConfig{zc}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("zone %+v: expected ErrInvalid, got %v", zc, err)
		}
	}

	cfg = DefaultConfig()
	cfg.Zones = []ZoneConfig{
		{Name: "twin", Shape: "sphere", Radius: 1},
		{Name: "twin", Shape: "sphere", Radius: 2},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("duplicate zones: expected ErrInvalid, got %v", err)
	}
}

func TestChiralities_Dedup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracking.Hands = []string{"left", "L", "right"}

	hands, err := cfg.Chiralities()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hands) != 2 {
		t.Errorf("expected 2 hands, got %v", hands)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Cursor.TwistReverse = true
			if err := cfg.ApplyPreset(name); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset should validate: %v", err)
			}
			if !cfg.Cursor.TwistReverse {
				t.Error("preset should keep twist direction")
			}
			if cfg.Cursor.Preset != name {
				t.Errorf("expected preset %s, got %s", name, cfg.Cursor.Preset)
			}
		})
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("nonexistent"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestDetectorConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracking.ScriptPath = "/opt/bird/mediapipe_service.py"

	d := cfg.DetectorConfig()
	if d.MaxHands != 2 {
		t.Errorf("expected 2 hands, got %d", d.MaxHands)
	}
	if d.ScriptPath != cfg.Tracking.ScriptPath {
		t.Errorf("script path not carried over")
	}
}
