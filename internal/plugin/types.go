// Package plugin discovers external action plugins and runs them when a
// cursor selects or releases.
package plugin

import (
	"encoding/json"
	"slices"

	"github.com/ayusman/bird/internal/cursor"
)

// Manifest is the plugin.json file at the root of a plugin directory.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Request is written to the plugin's stdin as a single JSON document.
type Request struct {
	Action   string          `json:"action"`
	Event    string          `json:"event"`
	Hand     string          `json:"hand"`
	User     string          `json:"user"`
	CursorID string          `json:"cursor_id"`
	Zone     string          `json:"zone,omitempty"`
	Cursor   cursor.State    `json:"cursor"`
	Config   json.RawMessage `json:"config"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
