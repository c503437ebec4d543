package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ayusman/swaram/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// countingReloader records how often the classifiers were rebuilt.
type countingReloader struct{ n atomic.Int32 }

func (c *countingReloader) Reload() error {
	c.n.Add(1)
	return nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignHandler_Create(t *testing.T) {
	s := newTestStore(t)
	reloader := &countingReloader{}
	handler := NewSignHandler(s, reloader)

	rec := do(t, handler, http.MethodPost, "/api/signs", `{"label": "നന്ദി"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created signResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" || created.Label != "നന്ദി" {
		t.Errorf("unexpected sign: %+v", created)
	}
	if created.Mode != "sign" {
		t.Errorf("expected default mode sign, got %q", created.Mode)
	}
	if created.Trained {
		t.Error("new sign should not be trained")
	}
	if reloader.n.Load() != 1 {
		t.Errorf("expected one reload, got %d", reloader.n.Load())
	}

	t.Run("duplicate", func(t *testing.T) {
		rec := do(t, handler, http.MethodPost, "/api/signs", `{"label": "നന്ദി", "mode": "sign"}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"invalid json", `{"label":`},
			{"missing label", `{"mode": "sign"}`},
			{"blank label", `{"label": "  "}`},
			{"invalid mode", `{"label": "x", "mode": "both"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := do(t, handler, http.MethodPost, "/api/signs", tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
				}
			})
		}
	})
}

func TestSignHandler_ListGetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	handler := NewSignHandler(s, nil)

	if err := s.Signs().Create(&store.Sign{ID: "s1", Label: "വീട്", Mode: store.SignModeHands}); err != nil {
		t.Fatalf("failed to create sign: %v", err)
	}
	if err := s.Signs().Create(&store.Sign{ID: "s2", Label: "വീട്", Mode: store.SignModeLips}); err != nil {
		t.Fatalf("failed to create sign: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/signs", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		var resp listSignsResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if len(resp.Signs) != 2 {
			t.Errorf("expected 2 signs, got %d", len(resp.Signs))
		}
	})

	t.Run("get", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/signs/s2", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var resp signResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Mode != "lip" {
			t.Errorf("expected lip mode, got %q", resp.Mode)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/signs/nope", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := do(t, handler, http.MethodPut, "/api/signs/s1", `{"label": "ആശുപത്രി", "tolerance": 0.4}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		got, _ := s.Signs().GetByID("s1")
		if got.Label != "ആശുപത്രി" || got.Tolerance != 0.4 {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("update invalid mode", func(t *testing.T) {
		rec := do(t, handler, http.MethodPut, "/api/signs/s1", `{"mode": "face"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(t, handler, http.MethodDelete, "/api/signs/s1", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}
		rec = do(t, handler, http.MethodDelete, "/api/signs/s1", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d on second delete, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := do(t, handler, http.MethodPatch, "/api/signs", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
