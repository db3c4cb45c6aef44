package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ayusman/bird/internal/cursor"
	"gonum.org/v1/gonum/spatial/r3"
)

// writeScriptPlugin writes a shell-script plugin with a manifest under root.
func writeScriptPlugin(t *testing.T, root, name, script string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	exe := filepath.Join(dir, "run.sh")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	manifest := Manifest{Name: name, Version: "1.0.0", Executable: "run.sh", Actions: actions}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	return &Plugin{Manifest: manifest, Path: dir, Executable: exe}
}

func TestExecutor_Execute(t *testing.T) {
	p := writeScriptPlugin(t, t.TempDir(), "ok",
		`echo '{"success":true,"data":{"message":"hello world"}}'`+"\n", "press")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: "press"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("expected success, got %+v", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %q", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	p := writeScriptPlugin(t, t.TempDir(), "echo",
		"INPUT=$(cat)\necho \"{\\\"success\\\":true,\\\"data\\\":$INPUT}\"\n", "press")

	req := &Request{
		Action:   "press",
		Event:    "select",
		Hand:     "Right",
		User:     "DefaultUser",
		CursorID: "c-1",
		Cursor:   cursor.State{Position: r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, Selected: true, JustSelected: true},
		Config:   json.RawMessage(`{"key":"space"}`),
	}

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to decode echoed request: %v", err)
	}
	if got.Event != "select" || got.Hand != "Right" || got.CursorID != "c-1" {
		t.Errorf("unexpected echoed request %+v", got)
	}
	if got.Cursor.Position != req.Cursor.Position || !got.Cursor.JustSelected {
		t.Errorf("cursor state lost in transit: %+v", got.Cursor)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := writeScriptPlugin(t, t.TempDir(), "slow", "sleep 10\necho '{\"success\":true}'\n", "slow")

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{Action: "slow"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	p := writeScriptPlugin(t, t.TempDir(), "fail",
		`echo '{"success":false,"error":"something went wrong"}'`+"\n", "fail")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: "fail"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success || resp.Error != "something went wrong" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"invalid json", "echo 'not valid json'\n"},
		{"non-zero exit", "echo 'Error: something failed' >&2\nexit 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeScriptPlugin(t, t.TempDir(), "bad", tt.script, "bad")
			_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Action: "bad"})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(3 * time.Second).Timeout(); got != 3*time.Second {
		t.Errorf("expected 3s, got %v", got)
	}
	if got := NewExecutor(0).Timeout(); got != 5*time.Second {
		t.Errorf("expected default 5s, got %v", got)
	}
}
