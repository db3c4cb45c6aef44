package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ayusman/bird/internal/app"
	"github.com/ayusman/bird/internal/fixtures"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/plugin"
	"github.com/ayusman/bird/internal/server"
	"github.com/ayusman/bird/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// installPlugin writes a plugin that saves each request to request.json.
func installPlugin(t *testing.T, dir, name string, actions ...string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := filepath.Join(dir, name)
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "request.json")
	script := "#!/bin/sh\ncat > \"" + out + "\"\necho '{\"success\": true}'\n"
	if err := os.WriteFile(filepath.Join(root, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(plugin.Manifest{Name: name, Version: "1.0.0", Executable: "run.sh", Actions: actions})
	if err := os.WriteFile(filepath.Join(root, plugin.ManifestFile), data, 0644); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestE2E_SelectDispatchesBinding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s := newStore(t)
	pluginDir := t.TempDir()
	out := installPlugin(t, pluginDir, "keys", "keystroke")

	cfg := app.DefaultConfig()
	cfg.Store = s
	cfg.PluginDir = pluginDir
	cfg.Backend = hand.BackendReplay
	cfg.Hands = []hand.Chirality{hand.Right}

	application, err := app.New(cfg)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Stop()
	if err := application.DiscoverPlugins(); err != nil {
		t.Fatalf("DiscoverPlugins() error = %v", err)
	}

	srv := server.New(server.Config{
		Store:    s,
		Registry: application.Registry(),
		Plugins:  application.PluginManager(),
	})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	t.Run("BindSelect", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/bindings", "application/json",
			strings.NewReader(`{"event": "select", "hand": "right", "plugin_name": "keys", "action_name": "keystroke", "config": {"key": "space"}}`))
		if err != nil {
			t.Fatalf("create binding error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("UnknownActionRejected", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/bindings", "application/json",
			strings.NewReader(`{"event": "release", "plugin_name": "keys", "action_name": "shortcut"}`))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})

	t.Run("ClickRunsPlugin", func(t *testing.T) {
		click := fixtures.Click()
		if err := application.LoadPlayback(hand.Right, click); err != nil {
			t.Fatal(err)
		}
		var selects int
		for range click {
			for _, e := range application.StepOnce(nil) {
				if e.Kind == app.EventSelect {
					selects++
				}
			}
		}
		application.WaitDispatch()

		if selects != 1 {
			t.Fatalf("selects = %d, want 1", selects)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("plugin did not run: %v", err)
		}
		var req plugin.Request
		if err := json.Unmarshal(data, &req); err != nil {
			t.Fatal(err)
		}
		if req.Action != "keystroke" || req.Event != "select" || req.Hand != "Right" {
			t.Errorf("unexpected request %+v", req)
		}
	})

	t.Run("CursorListed", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/cursors")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var list struct {
			Cursors []struct {
				Hand     string `json:"hand"`
				Tracking bool   `json:"tracking"`
				Ticks    uint64 `json:"ticks"`
				State    struct {
					Selected bool `json:"selected"`
				} `json:"state"`
			} `json:"cursors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatal(err)
		}
		if len(list.Cursors) != 1 {
			t.Fatalf("expected 1 cursor, got %d", len(list.Cursors))
		}
		c := list.Cursors[0]
		if c.Hand != "Right" || !c.Tracking || c.Ticks != 5 || c.State.Selected {
			t.Errorf("unexpected cursor %+v", c)
		}
	})
}

func TestE2E_RecordingReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s := newStore(t)
	srv := server.New(server.Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	resp, err := client.Post(ts.URL+"/api/recordings", "application/json",
		strings.NewReader(`{"name": "click", "hand": "right", "tick_hz": 30}`))
	if err != nil {
		t.Fatalf("create recording error = %v", err)
	}
	var rec struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&rec)
	resp.Body.Close()

	body, _ := json.Marshal(map[string][]hand.Frame{"frames": fixtures.Click()})
	resp, err = client.Post(ts.URL+"/api/recordings/"+rec.ID+"/frames", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("append frames error = %v", err)
	}
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/api/recordings/" + rec.ID + "/frames")
	if err != nil {
		t.Fatalf("get frames error = %v", err)
	}
	var got struct {
		Frames []hand.Frame `json:"frames"`
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()

	if len(got.Frames) != 5 {
		t.Fatalf("frames = %d, want 5", len(got.Frames))
	}

	ticks, err := app.Replay(got.Frames, app.DefaultConfig().Cursor)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if !ticks[1].State.JustSelected || !ticks[3].State.JustDeselected {
		t.Error("replayed recording should select on tick 1 and release on tick 3")
	}
}

func TestE2E_ProfileTuning(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s := newStore(t)
	srv := server.New(server.Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/api/profiles", "application/json",
		strings.NewReader(`{"name": "firm", "select_depth": 0.012, "release_depth": 0.010}`))
	if err != nil {
		t.Fatalf("create profile error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	p, err := s.Profiles().GetByName("firm")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}

	// An 8 mm press selects with the default tuning but not with "firm".
	ticks, err := app.Replay(fixtures.Click(), p.CursorConfig())
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	for _, tick := range ticks {
		if tick.State.Selected {
			t.Fatalf("tick %d selected with a firm profile", tick.Index)
		}
	}
}
