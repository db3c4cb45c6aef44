// Package main is a keyboard plugin for macOS. It types a key or shortcut
// when a bound cursor selects or releases, via AppleScript.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request is the input from the plugin executor. Only the fields this
// plugin reads are declared.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Hand   string          `json:"hand"`
	Config json.RawMessage `json:"config"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// KeyConfig is the binding config: the key and optional modifiers.
type KeyConfig struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err), nil)
		return
	}

	switch req.Action {
	case "keystroke", "shortcut":
		script, err := keystrokeScript(req.Action, req.Config)
		if err == nil {
			err = runAppleScript(script)
		}
		if err != nil {
			writeResponse(fmt.Errorf("%s on %s %s: %w", req.Action, req.Hand, req.Event, err), nil)
			return
		}
		data, _ := json.Marshal(map[string]string{"event": req.Event, "hand": req.Hand})
		writeResponse(nil, data)
	default:
		writeResponse(fmt.Errorf("unknown action: %s", req.Action), nil)
	}
}

func keystrokeScript(action string, config json.RawMessage) (string, error) {
	var c KeyConfig
	if len(config) > 0 {
		if err := json.Unmarshal(config, &c); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if c.Key == "" {
		return "", errors.New("key is required")
	}

	var mods []string
	for _, m := range c.Modifiers {
		if am, ok := modifierMap[strings.ToLower(m)]; ok {
			mods = append(mods, am)
		}
	}
	if action == "shortcut" && len(mods) == 0 {
		return "", errors.New("shortcut needs at least one modifier")
	}

	key := strings.ReplaceAll(c.Key, `"`, `\"`)
	if len(mods) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key), nil
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`,
		key, strings.Join(mods, ", ")), nil
}

func writeResponse(err error, data json.RawMessage) {
	resp := Response{Success: err == nil, Data: data}
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
