package config

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := zap.NewNop().Sugar()
	s, err := Open(filepath.Join(t.TempDir(), "config.json"), log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenSeedsDefault(t *testing.T) {
	s := newTestStore(t)
	cfg := s.Snapshot()
	if len(cfg.Pages) != 1 {
		t.Fatalf("expected 1 seed page, got %d", len(cfg.Pages))
	}
	if cfg.Pages[0].Buttons["5"].Command != "__NEXT_PAGE__" {
		t.Fatalf("expected key 5 to be next-page, got %+v", cfg.Pages[0].Buttons["5"])
	}
}

func TestDeleteLastPageFails(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeletePage(0); err == nil {
		t.Fatal("expected error deleting the only page")
	}
}

func TestDeletePageClampsCurrentPage(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddPage("Second"); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if err := s.SetPage(1); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if err := s.DeletePage(1); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if s.Snapshot().CurrentPage != 0 {
		t.Fatalf("expected currentPage clamped to 0, got %d", s.Snapshot().CurrentPage)
	}
}

func TestSetBrightnessValidatesRange(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetBrightnessLevel(150); err == nil {
		t.Fatal("expected error for out-of-range brightness")
	}
	if err := s.SetBrightnessLevel(75); err != nil {
		t.Fatalf("SetBrightnessLevel: %v", err)
	}
	if got := s.Snapshot().Brightness; got != 75 {
		t.Fatalf("expected brightness 75, got %d", got)
	}
}

func TestResetConfigClearsIcons(t *testing.T) {
	s := newTestStore(t)
	_ = s.UpdateButton(0, "1", ButtonConfig{Label: "x", Icon: "foo.png"})
	if err := s.ResetConfig(); err != nil {
		t.Fatalf("ResetConfig: %v", err)
	}
	cfg := s.Snapshot()
	if cfg.Pages[0].Buttons["1"].Icon != "" {
		t.Fatalf("expected reset to clear icon, got %+v", cfg.Pages[0].Buttons["1"])
	}
}
