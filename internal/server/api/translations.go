package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/swaram/internal/store"
)

const maxHistory = 500

// TranslationsHandler serves the history of flushed sentences.
type TranslationsHandler struct {
	store *store.Store
}

// NewTranslationsHandler creates a new TranslationsHandler.
func NewTranslationsHandler(s *store.Store) *TranslationsHandler {
	return &TranslationsHandler{store: s}
}

type listTranslationsResponse struct {
	Translations []*store.Translation `json:"translations"`
	Total        int                  `json:"total"`
}

// ServeHTTP handles GET /api/translations?session=&limit=.
func (h *TranslationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxHistory)
	}

	translations, err := h.store.Translations().Recent(r.URL.Query().Get("session"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list translations")
		return
	}
	total, err := h.store.Translations().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count translations")
		return
	}

	if translations == nil {
		translations = []*store.Translation{}
	}
	writeJSON(w, http.StatusOK, listTranslationsResponse{Translations: translations, Total: total})
}
