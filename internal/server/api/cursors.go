package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/bird/internal/registry"
)

// CursorHandler serves the live cursors of a registry:
//
//	GET /api/cursors            every cursor, oldest first
//	GET /api/cursors?user=name  one user's cursors
//	GET /api/cursors/{id}       a single cursor
//	PUT /api/cursors/{id}/user  reassign a cursor, body {"user": "..."}
type CursorHandler struct {
	registry *registry.Registry
}

// NewCursorHandler creates a CursorHandler over reg.
func NewCursorHandler(reg *registry.Registry) *CursorHandler {
	return &CursorHandler{registry: reg}
}

type listCursorsResponse struct {
	Cursors []registry.Entry `json:"cursors"`
}

type setUserRequest struct {
	User string `json:"user"`
}

func (h *CursorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/cursors")

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "user" && r.Method == http.MethodPut:
		h.setUser(w, r, parts[0])
	case len(parts) <= 2:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (h *CursorHandler) list(w http.ResponseWriter, r *http.Request) {
	var entries []registry.Entry
	if user := r.URL.Query().Get("user"); user != "" {
		entries = h.registry.ForUser(user)
	} else {
		entries = h.registry.All()
	}
	if entries == nil {
		entries = []registry.Entry{}
	}
	writeJSON(w, http.StatusOK, listCursorsResponse{Cursors: entries})
}

func (h *CursorHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	e, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Cursor not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *CursorHandler) setUser(w http.ResponseWriter, r *http.Request, id string) {
	var req setUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.registry.SetUser(id, req.User); err != nil {
		switch {
		case errors.Is(err, registry.ErrNotFound):
			writeError(w, http.StatusNotFound, "Cursor not found")
		case errors.Is(err, registry.ErrDuplicate):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to set user")
		}
		return
	}

	e, _ := h.registry.Get(id)
	writeJSON(w, http.StatusOK, e)
}
