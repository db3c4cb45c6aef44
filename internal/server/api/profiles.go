package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayusman/bird/internal/cursor"
	"github.com/ayusman/bird/internal/store"
)

// ProfileHandler serves /api/profiles.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/profiles")

	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodPut:
			h.update(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

// profileRequest fields are optional. Missing tuning values take the
// cursor defaults on create and keep their stored value on update.
type profileRequest struct {
	Name            string   `json:"name"`
	ProcessVariance *float64 `json:"process_variance"`
	RScale          *float64 `json:"r_scale"`
	SelectDepth     *float64 `json:"select_depth"`
	ReleaseDepth    *float64 `json:"release_depth"`
	Near            *float64 `json:"near"`
	Far             *float64 `json:"far"`
	TwistReverse    *bool    `json:"twist_reverse"`
}

func (req profileRequest) apply(p *store.Profile) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	set(&p.ProcessVariance, req.ProcessVariance)
	set(&p.RScale, req.RScale)
	set(&p.SelectDepth, req.SelectDepth)
	set(&p.ReleaseDepth, req.ReleaseDepth)
	set(&p.Near, req.Near)
	set(&p.Far, req.Far)
	if req.TwistReverse != nil {
		p.TwistReverse = *req.TwistReverse
	}
}

type profileResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ProcessVariance float64 `json:"process_variance"`
	RScale          float64 `json:"r_scale"`
	SelectDepth     float64 `json:"select_depth"`
	ReleaseDepth    float64 `json:"release_depth"`
	Near            float64 `json:"near"`
	Far             float64 `json:"far"`
	TwistReverse    bool    `json:"twist_reverse"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

func toProfileResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:              p.ID,
		Name:            p.Name,
		ProcessVariance: p.ProcessVariance,
		RScale:          p.RScale,
		SelectDepth:     p.SelectDepth,
		ReleaseDepth:    p.ReleaseDepth,
		Near:            p.Near,
		Far:             p.Far,
		TwistReverse:    p.TwistReverse,
		CreatedAt:       p.CreatedAt.Format(timeFormat),
		UpdatedAt:       p.UpdatedAt.Format(timeFormat),
	}
}

func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{Profiles: make([]profileResponse, 0, len(profiles))}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.notFoundOr(w, err, "Failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := h.store.Profiles().GetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	p := store.ProfileFromConfig(uuid.New().String(), req.Name, cursor.DefaultConfig())
	req.apply(p)

	if err := h.store.Profiles().Create(p); err != nil {
		h.invalidOr(w, err, "Failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(p))
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.notFoundOr(w, err, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.apply(p)

	if err := h.store.Profiles().Update(p); err != nil {
		h.invalidOr(w, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		h.notFoundOr(w, err, "Failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) notFoundOr(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func (h *ProfileHandler) invalidOr(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, cursor.ErrInvalidConfig) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.notFoundOr(w, err, msg)
}
