// Package main is a system control plugin for macOS. Volume and media keys
// fire on cursor events; volume-twist sets the volume from the cursor's
// wrist twist at the moment of selection.
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
)

// Request is the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Hand   string          `json:"hand"`
	Cursor CursorState     `json:"cursor"`
	Config json.RawMessage `json:"config"`
}

// CursorState is the subset of the cursor snapshot this plugin reads.
type CursorState struct {
	Twist    float64 `json:"twist"`
	Selected bool    `json:"selected"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type actionHandler func(req Request) error

var actionHandlers = map[string]actionHandler{
	"volume-up":        keyScript(`set volume output volume ((output volume of (get volume settings)) + 10)`),
	"volume-down":      keyScript(`set volume output volume ((output volume of (get volume settings)) - 10)`),
	"volume-mute":      keyScript(`set volume output muted (not (output muted of (get volume settings)))`),
	"volume-twist":     volumeTwist,
	"media-play-pause": keyCode(100),
	"media-next":       keyCode(101),
	"media-prev":       keyCode(98),
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}
	if err := handler(req); err != nil {
		writeResponse(fmt.Errorf("action %s failed: %w", req.Action, err))
		return
	}
	writeResponse(nil)
}

// TwistVolume maps a twist in degrees to a volume percentage: -90 is
// silent, +90 is full.
func TwistVolume(twist float64) int {
	v := (twist + 90) / 180 * 100
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func volumeTwist(req Request) error {
	return runAppleScript(fmt.Sprintf(`set volume output volume %d`, TwistVolume(req.Cursor.Twist)))
}

func keyScript(script string) actionHandler {
	return func(Request) error { return runAppleScript(script) }
}

func keyCode(code int) actionHandler {
	return keyScript(fmt.Sprintf("tell application \"System Events\"\n\tkey code %d\nend tell", code))
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
