// Package api provides the HTTP handlers for the sign vocabulary, training
// samples and translation history.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/swaram/internal/store"
)

// Reloader rebuilds the classifiers after the vocabulary or templates change.
type Reloader interface {
	Reload() error
}

// SignHandler handles HTTP requests for sign resources.
type SignHandler struct {
	store    *store.Store
	reloader Reloader
}

// NewSignHandler creates a new SignHandler. reloader may be nil.
func NewSignHandler(s *store.Store, reloader Reloader) *SignHandler {
	return &SignHandler{store: s, reloader: reloader}
}

// ServeHTTP routes /api/signs and /api/signs/{id}.
func (h *SignHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/signs")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type signRequest struct {
	Label     string  `json:"label"`
	Mode      string  `json:"mode"`
	Tolerance float64 `json:"tolerance"`
}

type signResponse struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Mode      string  `json:"mode"`
	Tolerance float64 `json:"tolerance"`
	Samples   int     `json:"samples"`
	Trained   bool    `json:"trained"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type listSignsResponse struct {
	Signs []signResponse `json:"signs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func (h *SignHandler) toResponse(g *store.Sign) signResponse {
	_, err := h.store.Templates().Get(g.ID)
	return signResponse{
		ID:        g.ID,
		Label:     g.Label,
		Mode:      string(g.Mode),
		Tolerance: g.Tolerance,
		Samples:   g.Samples,
		Trained:   err == nil,
		CreatedAt: g.CreatedAt.Format(timeLayout),
		UpdatedAt: g.UpdatedAt.Format(timeLayout),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func validMode(m store.SignMode) bool {
	return m == store.SignModeHands || m == store.SignModeLips
}

// reload refreshes the classifiers; a failure is logged, the write already
// succeeded.
func (h *SignHandler) reload() {
	reload(h.reloader)
}

func reload(r Reloader) {
	if r == nil {
		return
	}
	if err := r.Reload(); err != nil {
		slog.Error("failed to reload classifiers", "err", err)
	}
}

func (h *SignHandler) list(w http.ResponseWriter, r *http.Request) {
	signs, err := h.store.Signs().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list signs")
		return
	}

	response := listSignsResponse{Signs: make([]signResponse, 0, len(signs))}
	for _, g := range signs {
		response.Signs = append(response.Signs, h.toResponse(g))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *SignHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sign, err := h.store.Signs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sign")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(sign))
}

func (h *SignHandler) create(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Label) == "" {
		writeError(w, http.StatusBadRequest, "Label is required")
		return
	}

	mode := store.SignMode(req.Mode)
	if mode == "" {
		mode = store.SignModeHands
	}
	if !validMode(mode) {
		writeError(w, http.StatusBadRequest, "Invalid mode")
		return
	}

	if _, err := h.store.Signs().GetByLabel(req.Label, mode); err == nil {
		writeError(w, http.StatusConflict, "Sign already exists")
		return
	}

	sign := &store.Sign{
		ID:        uuid.New().String(),
		Label:     req.Label,
		Mode:      mode,
		Tolerance: req.Tolerance,
	}
	if err := h.store.Signs().Create(sign); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create sign")
		return
	}

	h.reload()
	writeJSON(w, http.StatusCreated, h.toResponse(sign))
}

func (h *SignHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	sign, err := h.store.Signs().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sign")
		return
	}

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Label != "" {
		sign.Label = req.Label
	}
	if req.Mode != "" {
		mode := store.SignMode(req.Mode)
		if !validMode(mode) {
			writeError(w, http.StatusBadRequest, "Invalid mode")
			return
		}
		sign.Mode = mode
	}
	if req.Tolerance != 0 {
		sign.Tolerance = req.Tolerance
	}

	if err := h.store.Signs().Update(sign); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update sign")
		return
	}

	h.reload()
	writeJSON(w, http.StatusOK, h.toResponse(sign))
}

func (h *SignHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Signs().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete sign")
		return
	}

	h.reload()
	w.WriteHeader(http.StatusNoContent)
}
