package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/plugin"
	"github.com/ayusman/bird/internal/registry"
)

// newTrackedRegistry registers one cursor per hand and publishes a tick of
// the cupped preset for each.
func newTrackedRegistry(t *testing.T, hands ...hand.Chirality) (*registry.Registry, []string) {
	t.Helper()

	reg := registry.New()
	var ids []string
	for _, ch := range hands {
		src := hand.NewMockSource()
		src.SetFrame(hand.CuppedHandFrame())
		c, err := cursor.New(src, cursor.DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		e, err := reg.Register("", ch, c)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.Update(); err != nil {
			t.Fatal(err)
		}
		if err := reg.Publish(e.ID); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}
	return reg, ids
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	reg, _ := newTrackedRegistry(t, hand.Left, hand.Right)

	tests := []struct {
		name    string
		config  Config
		cursors any
	}{
		{"without registry", Config{}, nil},
		{"with registry", Config{Registry: reg}, float64(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.config)
			defer s.Close()

			rec := serve(s, http.MethodGet, "/api/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}

			var response map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response["status"] != "ok" {
				t.Errorf("expected status 'ok', got %v", response["status"])
			}
			if response["cursors"] != tt.cursors {
				t.Errorf("expected cursors %v, got %v", tt.cursors, response["cursors"])
			}
		})
	}

	t.Run("only allows GET method", func(t *testing.T) {
		s := New(Config{})
		if rec := serve(s, http.MethodPost, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestServer_CursorRoutes(t *testing.T) {
	reg, ids := newTrackedRegistry(t, hand.Left, hand.Right)
	s := New(Config{Registry: reg})
	defer s.Close()

	t.Run("lists published cursors", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/cursors")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response struct {
			Cursors []registry.Entry `json:"cursors"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Cursors) != 2 {
			t.Fatalf("expected 2 cursors, got %d", len(response.Cursors))
		}
		for _, e := range response.Cursors {
			if !e.Tracking || e.Ticks != 1 {
				t.Errorf("%s cursor not published: tracking=%v ticks=%d", e.Hand, e.Tracking, e.Ticks)
			}
		}
	})

	t.Run("gets one cursor by id", func(t *testing.T) {
		rec := serve(s, http.MethodGet, "/api/cursors/"+ids[1])
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var e registry.Entry
		if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if e.ID != ids[1] || e.Hand != hand.Right.String() {
			t.Errorf("expected right cursor %s, got %s %s", ids[1], e.Hand, e.ID)
		}
	})

	t.Run("stream path reaches the hub", func(t *testing.T) {
		// A plain GET fails the websocket handshake instead of being looked
		// up as a cursor id.
		rec := serve(s, http.MethodGet, "/api/cursors/stream")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected handshake status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestServer_RoutesNeedDependencies(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/", "/api/cursors", "/api/cursors/stream", "/api/profiles", "/api/recordings", "/api/bindings", "/api/plugins", "/api/stream"} {
		if rec := serve(s, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404 without its dependency, got %d", path, rec.Code)
		}
	}
}

func TestServer_Viewer(t *testing.T) {
	dir := t.TempDir()
	page := "<html><body>bird viewer</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	s := New(Config{StaticDir: dir})
	rec := serve(s, http.MethodGet, "/")
	if rec.Code != http.StatusOK || rec.Body.String() != page {
		t.Errorf("expected viewer page, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_Plugins(t *testing.T) {
	dir := t.TempDir()
	pdir := filepath.Join(dir, "keyboard")
	os.MkdirAll(pdir, 0755)
	manifest := `{"name":"keyboard","version":"1.0.0","executable":"keyboard","actions":["keystroke"]}`
	os.WriteFile(filepath.Join(pdir, plugin.ManifestFile), []byte(manifest), 0644)

	mgr := plugin.NewManager(dir, nil)
	if err := mgr.Discover(); err != nil {
		t.Fatal(err)
	}

	s := New(Config{Plugins: mgr})
	rec := serve(s, http.MethodGet, "/api/plugins")

	var response struct {
		Plugins []pluginResponse `json:"plugins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Plugins) != 1 || response.Plugins[0].Actions[0] != "keystroke" {
		t.Errorf("unexpected plugins %+v", response.Plugins)
	}
}
