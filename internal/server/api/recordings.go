package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayusman/bird/internal/hand"
	"github.com/ayusman/bird/internal/store"
)

// RecordingHandler serves /api/recordings and /api/recordings/{id}/frames.
type RecordingHandler struct {
	store *store.Store
}

// NewRecordingHandler creates a new RecordingHandler with the given store.
func NewRecordingHandler(s *store.Store) *RecordingHandler {
	return &RecordingHandler{store: s}
}

func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/recordings")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "frames":
		switch r.Method {
		case http.MethodGet:
			h.frames(w, r, parts[0])
		case http.MethodPost:
			h.appendFrames(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

type createRecordingRequest struct {
	Name   string `json:"name"`
	Hand   string `json:"hand"`
	TickHz int    `json:"tick_hz"`
}

type recordingResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Hand      string `json:"hand"`
	TickHz    int    `json:"tick_hz"`
	Frames    int    `json:"frames"`
	CreatedAt string `json:"created_at"`
}

type listRecordingsResponse struct {
	Recordings []recordingResponse `json:"recordings"`
}

type framesBody struct {
	Frames []hand.Frame `json:"frames"`
}

func toRecordingResponse(rec *store.Recording) recordingResponse {
	return recordingResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		Hand:      rec.Hand.String(),
		TickHz:    rec.TickHz,
		Frames:    rec.Frames,
		CreatedAt: rec.CreatedAt.Format(timeFormat),
	}
}

func (h *RecordingHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.Recordings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}

	response := listRecordingsResponse{Recordings: make([]recordingResponse, 0, len(recs))}
	for _, rec := range recs {
		response.Recordings = append(response.Recordings, toRecordingResponse(rec))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *RecordingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Recordings().GetByID(id)
	if err != nil {
		recordingError(w, err, "Failed to get recording")
		return
	}
	writeJSON(w, http.StatusOK, toRecordingResponse(rec))
}

func (h *RecordingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	chirality, err := hand.ParseChirality(req.Hand)
	if err != nil {
		writeError(w, http.StatusBadRequest, "hand must be left or right")
		return
	}
	if req.TickHz <= 0 {
		writeError(w, http.StatusBadRequest, "tick_hz must be positive")
		return
	}

	rec := &store.Recording{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Hand:   chirality,
		TickHz: req.TickHz,
	}
	if err := h.store.Recordings().Create(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create recording")
		return
	}
	writeJSON(w, http.StatusCreated, toRecordingResponse(rec))
}

func (h *RecordingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Recordings().Delete(id); err != nil {
		recordingError(w, err, "Failed to delete recording")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordingHandler) frames(w http.ResponseWriter, r *http.Request, id string) {
	frames, err := h.store.Recordings().Frames(id)
	if err != nil {
		recordingError(w, err, "Failed to read frames")
		return
	}
	if frames == nil {
		frames = []hand.Frame{}
	}
	writeJSON(w, http.StatusOK, framesBody{Frames: frames})
}

func (h *RecordingHandler) appendFrames(w http.ResponseWriter, r *http.Request, id string) {
	var body framesBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.store.Recordings().AppendFrames(id, body.Frames); err != nil {
		recordingError(w, err, "Failed to append frames")
		return
	}

	rec, err := h.store.Recordings().GetByID(id)
	if err != nil {
		recordingError(w, err, "Failed to get recording")
		return
	}
	writeJSON(w, http.StatusOK, toRecordingResponse(rec))
}

func recordingError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Recording not found")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}
