// Package app wires the camera, hand tracking, cursors, storage and plugins
// into the running bird application.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/bird/internal/capture"
	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/detector"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/hand/mediapipe"
	"github.com/ayusman/bird/internal/plugin"
	"github.com/ayusman/bird/internal/registry"
	"github.com/ayusman/bird/internal/store"
)

// Pipeline timing defaults.
const (
	// DefaultTickHz is the cursor update rate while a hand is in view.
	DefaultTickHz = 30
	// DefaultIdleHz is the capture rate when nothing moves.
	DefaultIdleHz = 5
	// DefaultIdleAfter is how long the scene must be still before idling.
	DefaultIdleAfter = 2 * time.Second
	// recordFlush is the number of buffered frames written per store call.
	recordFlush = 30
)

// ErrNoHands is returned by New when no chirality is configured.
var ErrNoHands = errors.New("no hands configured")

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	PluginDir     string
	PluginTimeout time.Duration

	Camera          capture.CameraConfig
	TickHz          int
	IdleHz          int
	IdleAfter       time.Duration
	MotionThreshold float64

	Backend   hand.Backend
	Hands     []hand.Chirality
	Landmarks mediapipe.Config
	Detector  detector.Config
	Cursor    cursor.Config
	Zones     []cursor.Zone
	User      string
}

// DefaultConfig tracks both hands with MediaPipe at 30 Hz.
func DefaultConfig() Config {
	return Config{
		PluginTimeout:   5 * time.Second,
		Camera:          capture.DefaultCameraConfig(),
		TickHz:          DefaultTickHz,
		IdleHz:          DefaultIdleHz,
		IdleAfter:       DefaultIdleAfter,
		MotionThreshold: 1.0,
		Backend:         hand.BackendMediaPipe,
		Hands:           []hand.Chirality{hand.Left, hand.Right},
		Landmarks:       mediapipe.DefaultConfig(),
		Detector:        detector.DefaultConfig(),
		Cursor:          cursor.DefaultConfig(),
		User:            registry.DefaultUser,
	}
}

// tracked is one hand: its source, its cursor and the registry entry that
// publishes it.
type tracked struct {
	chirality hand.Chirality
	source    hand.Source
	cursor    *cursor.Cursor
	entryID   string
	tracking  bool
	rejected  bool
	status    Status
}

// App is the main application that turns camera frames into cursor events.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	waker    *capture.Waker
	latest   *capture.Latest
	detector detector.Detector
	registry *registry.Registry
	plugins  *plugin.Manager
	hands    []*tracked
	zones    []cursor.Zone
	recorder *recorder
	enabled  bool
	mu       sync.RWMutex
	stepMu   sync.Mutex
	stopCh   chan struct{}
	doneCh   chan struct{}

	listeners []func(Event)
	dispatch  sync.WaitGroup
}

// New creates an App with one cursor per configured hand.
func New(config Config) (*App, error) {
	if len(config.Hands) == 0 {
		return nil, ErrNoHands
	}
	if config.TickHz <= 0 {
		config.TickHz = DefaultTickHz
	}
	if config.IdleHz <= 0 {
		config.IdleHz = DefaultIdleHz
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = DefaultIdleAfter
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = 1.0 // 1% pixel change
	}
	if config.User == "" {
		config.User = registry.DefaultUser
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.Camera),
		motion:   capture.NewMotionDetector(config.MotionThreshold),
		waker:    capture.NewWaker(config.TickHz, config.IdleHz, config.IdleAfter),
		latest:   capture.NewLatest(),
		registry: registry.New(),
		plugins:  plugin.NewManager(config.PluginDir, plugin.NewExecutor(config.PluginTimeout)),
		enabled:  true,
	}

	if err := a.SetZones(config.Zones); err != nil {
		return nil, err
	}

	for _, ch := range config.Hands {
		src, err := newSource(config.Backend, ch, config.Landmarks)
		if err != nil {
			return nil, err
		}
		c, err := cursor.New(src, config.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%s cursor: %w", ch, err)
		}
		e, err := a.registry.Register(config.User, ch, c)
		if err != nil {
			return nil, err
		}
		a.hands = append(a.hands, &tracked{
			chirality: ch,
			source:    src,
			cursor:    c,
			entryID:   e.ID,
			status:    StatusLost,
		})
	}

	if config.Backend == hand.BackendMediaPipe {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// newSource builds the source for one hand on the given backend. The result
// is a *mediapipe.Source, *hand.MockSource or *hand.Playback; StepOnce feeds
// each according to its type.
func newSource(b hand.Backend, c hand.Chirality, lm mediapipe.Config) (hand.Source, error) {
	switch b {
	case hand.BackendMediaPipe:
		return mediapipe.NewSource(c, lm), nil
	case hand.BackendMock:
		m := hand.NewMockSource()
		m.SetFrame(hand.CuppedHandFrame())
		return m, nil
	case hand.BackendReplay:
		return hand.NewPlayback(nil), nil
	case "":
		return nil, hand.ErrBackendNotConfigured
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", hand.ErrBackendNotConfigured, string(b))
	}
}

// SetZones replaces the zones every cursor is checked against each tick.
func (a *App) SetZones(zones []cursor.Zone) error {
	for _, z := range zones {
		if err := z.Validate(); err != nil {
			return err
		}
	}
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	a.zones = append([]cursor.Zone(nil), zones...)
	return nil
}

// SetEnabled enables or disables cursor tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether cursor tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.plugins.Discover()
}

// OnEvent registers fn to be called for every cursor event. Callbacks run
// on the pipeline goroutine and must not block.
func (a *App) OnEvent(fn func(Event)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Start begins the tracking pipeline. With the MediaPipe backend the camera
// is opened first; other backends tick without one.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	useCamera := a.config.Backend == hand.BackendMediaPipe
	if useCamera {
		if err := a.camera.Open(); err != nil {
			return err
		}
		a.camera.SetFPS(a.waker.Rate())
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh, useCamera)

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the pipeline, waits for running plugins and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
	a.dispatch.Wait()

	if _, err := a.StopRecording(); err != nil && !errors.Is(err, ErrNotRecording) {
		log.Printf("Error finishing recording: %v", err)
		a.DiscardRecording()
	}

	if a.camera.IsOpen() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
	a.motion.Close()
	a.latest.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Tracking pipeline stopped")
}

// Registry returns the cursor registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Frames returns the latest camera frame holder used by the preview stream.
func (a *App) Frames() *capture.Latest {
	return a.latest
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.plugins
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Waker returns the capture rate controller.
func (a *App) Waker() *capture.Waker {
	return a.waker
}

// Source returns the hand source feeding the cursor for ch.
func (a *App) Source(ch hand.Chirality) (hand.Source, bool) {
	if t := a.find(ch); t != nil {
		return t.source, true
	}
	return nil, false
}

// Status returns the last known status of the cursor for ch.
func (a *App) Status(ch hand.Chirality) Status {
	a.stepMu.Lock()
	defer a.stepMu.Unlock()
	if t := a.find(ch); t != nil {
		return t.status
	}
	return StatusLost
}

func (a *App) find(ch hand.Chirality) *tracked {
	for _, t := range a.hands {
		if t.chirality == ch {
			return t
		}
	}
	return nil
}
