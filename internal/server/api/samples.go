package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayusman/swaram/internal/detector"
	"github.com/ayusman/swaram/internal/gesture"
	"github.com/ayusman/swaram/internal/store"
)

// SamplesHandler handles recorded samples and training for a sign.
type SamplesHandler struct {
	store    *store.Store
	trainer  *gesture.Trainer
	reloader Reloader
}

// NewSamplesHandler creates a new SamplesHandler. reloader may be nil.
func NewSamplesHandler(s *store.Store, reloader Reloader) *SamplesHandler {
	return &SamplesHandler{store: s, trainer: gesture.NewTrainer(), reloader: reloader}
}

// ServeHTTP routes /api/signs/{id}/samples and /api/signs/{id}/train.
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/signs/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	signID := parts[0]

	switch parts[1] {
	case "samples":
		switch r.Method {
		case http.MethodGet:
			h.list(w, r, signID)
		case http.MethodPost:
			h.create(w, r, signID)
		case http.MethodDelete:
			h.clear(w, r, signID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "train":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.train(w, r, signID)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

type sampleResponse struct {
	ID          int64           `json:"id"`
	SignID      string          `json:"sign_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

type trainResponse struct {
	SignID    string  `json:"sign_id"`
	Frames    int     `json:"frames"`
	Samples   int     `json:"samples"`
	Tolerance float64 `json:"tolerance"`
}

// lookup writes the error response and returns nil when the sign is missing.
func (h *SamplesHandler) lookup(w http.ResponseWriter, signID string) *store.Sign {
	sign, err := h.store.Signs().GetByID(signID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sign not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, "Failed to get sign")
		return nil
	}
	return sign
}

func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, signID string) {
	samples, err := h.store.Samples().GetBySignID(signID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{Samples: make([]sampleResponse, 0, len(samples))}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			SignID:      s.SignID,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   s.CreatedAt.Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, signID string) {
	sign := h.lookup(w, signID)
	if sign == nil {
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}
	for i, raw := range req.Samples {
		if err := checkSample(raw, sign.Mode); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Sample %d: %v", i, err))
			return
		}
	}

	if err := h.store.Samples().Create(signID, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *SamplesHandler) clear(w http.ResponseWriter, r *http.Request, signID string) {
	if h.lookup(w, signID) == nil {
		return
	}
	if err := h.store.Samples().DeleteBySignID(signID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// train averages the recorded samples into a template, stores it and
// reloads the classifiers.
func (h *SamplesHandler) train(w http.ResponseWriter, r *http.Request, signID string) {
	sign := h.lookup(w, signID)
	if sign == nil {
		return
	}

	samples, err := h.store.Samples().GetBySignID(signID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load samples")
		return
	}
	if len(samples) == 0 {
		writeError(w, http.StatusBadRequest, "No samples recorded")
		return
	}

	raw := make([]json.RawMessage, len(samples))
	for i, s := range samples {
		raw[i] = s.Data
	}

	frames, err := h.trainer.Train(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tolerance := sign.Tolerance
	if tolerance <= 0 {
		tolerance = h.trainer.Tolerance(frames, raw)
	}

	if err := h.store.Templates().Save(&store.Template{SignID: signID, Frames: frames, Tolerance: tolerance}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save template")
		return
	}

	reload(h.reloader)
	writeJSON(w, http.StatusOK, trainResponse{
		SignID:    signID,
		Frames:    len(frames),
		Samples:   len(samples),
		Tolerance: tolerance,
	})
}

// checkSample rejects samples whose frames do not fit the sign's mode.
func checkSample(raw json.RawMessage, mode store.SignMode) error {
	var sample gesture.Sample
	if err := json.Unmarshal(raw, &sample); err != nil {
		return fmt.Errorf("invalid sample: %w", err)
	}
	if len(sample.Frames) < 2 {
		return errors.New("at least two frames are required")
	}
	want := detector.FeatureSize(detector.Mode(mode))
	for i, f := range sample.Frames {
		if len(f) != want {
			return fmt.Errorf("frame %d has %d features, want %d", i, len(f), want)
		}
	}
	return nil
}
