package store

import (
	"errors"
	"testing"

	"github.com/ayusman/bird/internal/hand"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRecordingRepository_CreateAndGet(t *testing.T) {
	repo := newTestStore(t).Recordings()

	rec := &Recording{ID: "rec-1", Name: "pinch", Hand: hand.Right, TickHz: 30}
	if err := repo.Create(rec); err != nil {
		t.Fatalf("failed to create recording: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	got, err := repo.GetByID("rec-1")
	if err != nil {
		t.Fatalf("failed to get recording: %v", err)
	}
	if got.Hand != hand.Right || got.TickHz != 30 || got.Frames != 0 {
		t.Errorf("unexpected recording %+v", got)
	}

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordingRepository_AppendFrames(t *testing.T) {
	repo := newTestStore(t).Recordings()

	if err := repo.Create(&Recording{ID: "rec-1", Name: "sweep", Hand: hand.Left, TickHz: 30}); err != nil {
		t.Fatal(err)
	}

	base := hand.CuppedHandFrame()
	first := []hand.Frame{base, base.Translate(r3.Vec{X: 0.01})}
	second := []hand.Frame{{}, base.Translate(r3.Vec{X: 0.02})}

	if err := repo.AppendFrames("rec-1", first); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := repo.AppendFrames("rec-1", second); err != nil {
		t.Fatalf("second append: %v", err)
	}

	rec, _ := repo.GetByID("rec-1")
	if rec.Frames != 4 {
		t.Errorf("expected 4 frames, got %d", rec.Frames)
	}

	frames, err := repo.Frames("rec-1")
	if err != nil {
		t.Fatalf("failed to read frames: %v", err)
	}
	want := append(first, second...)
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d differs after round trip", i)
		}
	}
	if frames[2].Tracking {
		t.Error("lost-tracking frame should stay untracked")
	}
}

func TestRecordingRepository_AppendToMissing(t *testing.T) {
	repo := newTestStore(t).Recordings()

	err := repo.AppendFrames("missing", []hand.Frame{hand.CuppedHandFrame()})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Frames("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordingRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	repo := s.Recordings()

	if err := repo.Create(&Recording{ID: "rec-1", Name: "a", Hand: hand.Left, TickHz: 30}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AppendFrames("rec-1", []hand.Frame{hand.CuppedHandFrame()}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete("rec-1"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM recording_frames`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected frames to be deleted with the recording, %d left", n)
	}

	if err := repo.Delete("rec-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordingRepository_List(t *testing.T) {
	repo := newTestStore(t).Recordings()

	for _, id := range []string{"a", "b"} {
		if err := repo.Create(&Recording{ID: id, Name: id, Hand: hand.Left, TickHz: 30}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 recordings, got %d", len(recs))
	}
}
