package store

import (
	"errors"
	"testing"
	"time"
)

func TestTemplateRepository(t *testing.T) {
	s := newTestStore(t)
	for _, sign := range []*Sign{
		{ID: "hands-1", Label: "സഹായം", Mode: SignModeHands},
		{ID: "lips-1", Label: "സഹായം", Mode: SignModeLips},
	} {
		if err := s.Signs().Create(sign); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}
	repo := s.Templates()

	if _, err := repo.Get("hands-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before training, got %v", err)
	}

	tmpl := &Template{SignID: "hands-1", Frames: [][]float64{{0.1, 0.2}, {0.3, 0.4}}, Tolerance: 0.5}
	if err := repo.Save(tmpl); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := repo.Get("hands-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Label != "സഹായം" || got.Mode != SignModeHands {
		t.Errorf("unexpected join result: %+v", got)
	}
	if len(got.Frames) != 2 || got.Frames[1][1] != 0.4 {
		t.Errorf("frames not round-tripped: %v", got.Frames)
	}

	t.Run("save replaces", func(t *testing.T) {
		tmpl.Frames = [][]float64{{1}}
		tmpl.Tolerance = 0.9
		if err := repo.Save(tmpl); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		got, _ := repo.Get("hands-1")
		if len(got.Frames) != 1 || got.Tolerance != 0.9 {
			t.Errorf("template not replaced: %+v", got)
		}
	})

	t.Run("list by mode", func(t *testing.T) {
		if err := repo.Save(&Template{SignID: "lips-1", Frames: [][]float64{{2}}}); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		hands, err := repo.ListByMode(SignModeHands)
		if err != nil {
			t.Fatalf("ListByMode() failed: %v", err)
		}
		if len(hands) != 1 || hands[0].SignID != "hands-1" {
			t.Errorf("unexpected hand templates: %+v", hands)
		}
		lips, _ := repo.ListByMode(SignModeLips)
		if len(lips) != 1 || lips[0].SignID != "lips-1" {
			t.Errorf("unexpected lip templates: %+v", lips)
		}
	})

	t.Run("cascade on sign delete", func(t *testing.T) {
		if err := s.Signs().Delete("hands-1"); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, err := repo.Get("hands-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("template should be removed with its sign, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "sess-1", RemoteAddr: "127.0.0.1:5000"}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("Create() should stamp StartedAt")
	}

	if err := repo.SetClient("sess-1", "flutter", "android"); err != nil {
		t.Fatalf("SetClient() failed: %v", err)
	}
	if err := repo.SetClient("missing", "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := repo.Get("sess-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Client != "flutter" || got.Platform != "android" {
		t.Errorf("handshake not stored: %+v", got)
	}
	if got.EndedAt != nil {
		t.Error("open session should have no end time")
	}

	if err := repo.End("sess-1", 120); err != nil {
		t.Fatalf("End() failed: %v", err)
	}
	got, _ = repo.Get("sess-1")
	if got.EndedAt == nil || got.Frames != 120 {
		t.Errorf("session not closed: %+v", got)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTranslationRepository(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sessions().Create(&Session{ID: "sess-1"}); err != nil {
		t.Fatalf("Create() session failed: %v", err)
	}
	repo := s.Translations()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []*Translation{
		{ID: "t1", SessionID: "sess-1", Text: "നമസ്കാരം", Confidence: 0.9, Kind: "sign", Mode: "sign", CreatedAt: base},
		{ID: "t2", SessionID: "sess-1", Text: "നന്ദി", Confidence: 0.95, Kind: "sign", Mode: "sign", CreatedAt: base.Add(time.Second)},
		{ID: "t3", Text: "വീട്", Confidence: 0.8, Kind: "lip", Mode: "lip", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create(%s) failed: %v", e.ID, err)
		}
	}

	t.Run("recent newest first", func(t *testing.T) {
		got, err := repo.Recent("", 2)
		if err != nil {
			t.Fatalf("Recent() failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "t3" || got[1].ID != "t2" {
			t.Errorf("unexpected order: %+v", got)
		}
		if got[0].SessionID != "" {
			t.Errorf("sessionless translation should have empty session, got %q", got[0].SessionID)
		}
	})

	t.Run("filter by session", func(t *testing.T) {
		got, err := repo.Recent("sess-1", 0)
		if err != nil {
			t.Fatalf("Recent() failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 translations for session, got %d", len(got))
		}
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.Count()
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3, got %d", n)
		}
	})
}
