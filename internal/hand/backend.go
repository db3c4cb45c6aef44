package hand

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBackendNotConfigured is returned when no tracking backend was chosen.
var ErrBackendNotConfigured = errors.New("hand tracking backend not configured")

// Backend names a hand-tracking implementation.
type Backend string

const (
	BackendMediaPipe Backend = "mediapipe"
	BackendMock      Backend = "mock"
	BackendReplay    Backend = "replay"
)

// ParseBackend parses a backend name. An empty or unknown name is a
// configuration error.
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BackendMediaPipe, BackendMock, BackendReplay:
		return b, nil
	case "":
		return "", ErrBackendNotConfigured
	default:
		return "", fmt.Errorf("%w: unknown backend %q", ErrBackendNotConfigured, s)
	}
}
