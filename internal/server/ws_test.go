package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/registry"
)

func TestCursorHub_Broadcasts(t *testing.T) {
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
	e, err := reg.Register("", hand.Right, c)
	if err != nil {
		t.Fatal(err)
	}
	reg.Publish(e.ID)

	srv := New(Config{Registry: reg, StreamInterval: 10 * time.Millisecond})
	defer srv.Close()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/cursors/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error = %v", err)
	}

	var msg CursorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(msg.Cursors) != 1 || msg.Cursors[0].ID != e.ID {
		t.Fatalf("unexpected cursors %+v", msg.Cursors)
	}
	if msg.Cursors[0].State != c.State() {
		t.Error("broadcast state should match the published cursor state")
	}
	if msg.Timestamp == 0 {
		t.Error("expected a timestamp")
	}
}

func TestCursorHub_CloseIsIdempotent(t *testing.T) {
	h := NewCursorHub(registry.New(), 0)
	if h.interval != defaultStreamInterval {
		t.Errorf("expected default interval, got %v", h.interval)
	}
	h.Close()
	h.Close()
	if h.Clients() != 0 {
		t.Errorf("expected no clients, got %d", h.Clients())
	}
}
