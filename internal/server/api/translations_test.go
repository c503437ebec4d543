package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ayusman/swaram/internal/store"
)

func TestTranslationsHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewTranslationsHandler(s)

	t.Run("empty", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/translations", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var resp listTranslationsResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Translations == nil || len(resp.Translations) != 0 || resp.Total != 0 {
			t.Errorf("expected empty list, got %+v", resp)
		}
	})

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, text := range []string{"നമസ്കാരം", "നന്ദി", "വീട്"} {
		err := s.Translations().Create(&store.Translation{
			ID: text, Text: text, Confidence: 0.9, Kind: "sign", Mode: "sign",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	t.Run("limit", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/translations?limit=2", "")
		var resp listTranslationsResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if len(resp.Translations) != 2 || resp.Total != 3 {
			t.Fatalf("expected 2 of 3, got %d of %d", len(resp.Translations), resp.Total)
		}
		if resp.Translations[0].Text != "വീട്" {
			t.Errorf("expected newest first, got %q", resp.Translations[0].Text)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/translations?limit=-1", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := do(t, handler, http.MethodPost, "/api/translations", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
