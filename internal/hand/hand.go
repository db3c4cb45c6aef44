// Package hand defines the hand-tracking contract the cursor consumes and the
// backends that implement it.
package hand

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownChirality is returned when a chirality name cannot be parsed.
var ErrUnknownChirality = errors.New("unknown chirality")

// Finger identifies one of the five fingers.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers = 5
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || int(f) >= NumFingers {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return fingerNames[f]
}

// Joint identifies a tracked point along a finger, from the knuckle outward.
type Joint int

const (
	// Base is the knuckle (metacarpal for the thumb).
	Base Joint = iota
	// MiddleProximal is the joint at the proximal end of the middle bone.
	MiddleProximal
	// MiddleDistal is the joint at the distal end of the middle bone.
	MiddleDistal
	// Tip is the fingertip.
	Tip
	NumJoints = 4
)

var jointNames = [NumJoints]string{"base", "middle_proximal", "middle_distal", "tip"}

func (j Joint) String() string {
	if j < 0 || int(j) >= NumJoints {
		return fmt.Sprintf("Joint(%d)", int(j))
	}
	return jointNames[j]
}

// Chirality is the handedness of a tracked hand.
type Chirality int

const (
	Left Chirality = iota
	Right
)

func (c Chirality) String() string {
	if c == Left {
		return "Left"
	}
	return "Right"
}

// MarshalText encodes the chirality as its name.
func (c Chirality) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts anything ParseChirality does.
func (c *Chirality) UnmarshalText(b []byte) error {
	v, err := ParseChirality(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseChirality parses "left" or "right", case-insensitively.
func ParseChirality(s string) (Chirality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return Left, fmt.Errorf("%w: %q", ErrUnknownChirality, s)
	}
}

// Source supplies joint positions for one hand, once per tick.
// Implementations exist per tracking backend; the cursor depends only on this.
type Source interface {
	// IsTracking reports whether the hand is currently tracked and has data.
	IsTracking() bool

	// JointPosition returns the world position, in metres, of a finger joint.
	JointPosition(f Finger, j Joint) r3.Vec
}
