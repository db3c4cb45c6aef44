package api

import (
	"net/http"
	"testing"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/registry"
)

func newTestRegistry(t *testing.T) (*registry.Registry, registry.Entry) {
	t.Helper()

	src := hand.NewMockSource()
	src.SetFrame(hand.CuppedHandFrame())
	c, err := cursor.New(src, cursor.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Update(); err != nil {
		t.Fatal(err)
	}

	reg := registry.New()
	e, err := reg.Register("alice", hand.Right, c)
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Publish(e.ID); err != nil {
		t.Fatal(err)
	}
	return reg, e
}

func TestCursorHandler_List(t *testing.T) {
	reg, e := newTestRegistry(t)
	h := NewCursorHandler(reg)

	var list listCursorsResponse
	if rec := do(t, h, http.MethodGet, "/api/cursors", "", &list); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(list.Cursors) != 1 || list.Cursors[0].ID != e.ID {
		t.Fatalf("unexpected cursors %+v", list.Cursors)
	}
	if !list.Cursors[0].Tracking || list.Cursors[0].Hand != "Right" {
		t.Errorf("snapshot not published: %+v", list.Cursors[0])
	}
	if len(list.Cursors[0].Debug.FitPoints) != hand.NumFitPoints {
		t.Errorf("expected %d fit points, got %d", hand.NumFitPoints, len(list.Cursors[0].Debug.FitPoints))
	}

	var none listCursorsResponse
	do(t, h, http.MethodGet, "/api/cursors?user=bob", "", &none)
	if none.Cursors == nil || len(none.Cursors) != 0 {
		t.Errorf("expected an empty list for bob, got %+v", none.Cursors)
	}
}

func TestCursorHandler_GetAndSetUser(t *testing.T) {
	reg, e := newTestRegistry(t)
	h := NewCursorHandler(reg)

	var got registry.Entry
	if rec := do(t, h, http.MethodGet, "/api/cursors/"+e.ID, "", &got); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.User != "alice" {
		t.Errorf("expected alice, got %s", got.User)
	}

	var moved registry.Entry
	if rec := do(t, h, http.MethodPut, "/api/cursors/"+e.ID+"/user", `{"user":"bob"}`, &moved); rec.Code != http.StatusOK {
		t.Fatalf("set user: expected 200, got %d", rec.Code)
	}
	if moved.User != "bob" {
		t.Errorf("expected bob, got %s", moved.User)
	}

	if rec := do(t, h, http.MethodGet, "/api/cursors/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/cursors/missing/user", `{"user":"x"}`, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/cursors/"+e.ID, "", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
