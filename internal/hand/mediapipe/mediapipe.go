// Package mediapipe is the camera hand-tracking backend. It turns MediaPipe
// detections into a hand.Source.
package mediapipe

import (
	"sync"

	"github.com/ayusman/bird/internal/detector"
	"github.com/ayusman/bird/internal/hand"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config controls how normalized MediaPipe landmarks become metric joint
// positions.
type Config struct {
	// Scale is metres per normalized image unit.
	Scale float64

	// Depth is the distance of the image plane from the origin, in metres.
	Depth float64

	// MinScore drops detections below this handedness score.
	MinScore float64
}

// DefaultConfig returns values that put a hand at arm's length roughly at
// human scale for a typical laptop camera.
func DefaultConfig() Config {
	return Config{
		Scale:    0.6,
		Depth:    0.4,
		MinScore: 0.5,
	}
}

// landmarkIndex maps every finger joint to a MediaPipe landmark.
var landmarkIndex = [hand.NumFingers][hand.NumJoints]int{
	hand.Thumb:  {detector.ThumbCMC, detector.ThumbMCP, detector.ThumbIP, detector.ThumbTip},
	hand.Index:  {detector.IndexMCP, detector.IndexPIP, detector.IndexDIP, detector.IndexTip},
	hand.Middle: {detector.MiddleMCP, detector.MiddlePIP, detector.MiddleDIP, detector.MiddleTip},
	hand.Ring:   {detector.RingMCP, detector.RingPIP, detector.RingDIP, detector.RingTip},
	hand.Pinky:  {detector.PinkyMCP, detector.PinkyPIP, detector.PinkyDIP, detector.PinkyTip},
}

// Source holds the latest detection for one chirality and is fed once per
// camera frame through Update.
type Source struct {
	chirality hand.Chirality
	config    Config
	frame     hand.Frame
	mu        sync.RWMutex
}

// NewSource creates a source for the given hand.
func NewSource(c hand.Chirality, config Config) *Source {
	return &Source{chirality: c, config: config}
}

// Chirality returns the hand this source follows.
func (s *Source) Chirality() hand.Chirality {
	return s.chirality
}

// Update replaces the current frame with the best matching hand in hands.
// The source stops tracking when no hand of its chirality scores high enough.
func (s *Source) Update(hands []detector.HandLandmarks) {
	lm, ok := detector.Find(hands, s.chirality.String())

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok || lm.Score < s.config.MinScore {
		s.frame.Tracking = false
		return
	}

	s.frame.Tracking = true
	for f := range landmarkIndex {
		for j, idx := range landmarkIndex[f] {
			s.frame.Joints[f][j] = lm.Metric(idx, s.config.Scale, s.config.Depth)
		}
	}
}

// IsTracking implements hand.Source.
func (s *Source) IsTracking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame.Tracking
}

// JointPosition implements hand.Source.
func (s *Source) JointPosition(f hand.Finger, j hand.Joint) r3.Vec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame.JointPosition(f, j)
}

// Snapshot returns a copy of the current frame.
func (s *Source) Snapshot() hand.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}
