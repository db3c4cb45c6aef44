package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeFrames struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeFrames) JPEG() ([]byte, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == 1 {
		return nil, 0, errors.New("no frame captured yet")
	}
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, 7, nil
}

func TestStreamHandler_WritesParts(t *testing.T) {
	ts := httptest.NewServer(NewStreamHandler(&fakeFrames{}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("unexpected Content-Type %s", ct)
	}

	r := bufio.NewReader(resp.Body)
	var header []string
	for len(header) < 4 {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read error = %v", err)
		}
		header = append(header, strings.TrimRight(line, "\r\n"))
	}
	if header[0] != "--frame" || header[1] != "Content-Type: image/jpeg" || header[2] != "Content-Length: 4" {
		t.Errorf("unexpected part header %q", header)
	}

	body := make([]byte, 4)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("read body error = %v", err)
	}
	if body[0] != 0xFF || body[1] != 0xD8 {
		t.Error("expected the JPEG bytes")
	}
}

func TestStreamHandler_OnlyGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()
	NewStreamHandler(&fakeFrames{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
