package session

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/matthewpi/redragon-deck/internal/action"
	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/obs"
	"github.com/matthewpi/redragon-deck/internal/refresh"
	"github.com/matthewpi/redragon-deck/internal/twitch"
	"github.com/matthewpi/redragon-deck/internal/widget"
)

// Exercising SEARCH/LOAD/SERVE/RECONNECT end to end needs a real USB
// device; these tests only cover the state that does not require one.

func TestNewSessionStartsDisconnected(t *testing.T) {
	log := zap.NewNop().Sugar()
	store, err := config.Open(filepath.Join(t.TempDir(), "config.json"), log)
	if err != nil {
		t.Fatalf("config.Open: %v", err)
	}
	sig := refresh.New()
	widgets := widget.NewEngine(obs.NewCache(), twitch.NewCache())
	dispatcher := action.New(store, sig, widgets, nil, nil, nil, log)

	s := New(store, t.TempDir(), dispatcher, widgets, sig, log)
	if s.Connected() {
		t.Fatal("expected a freshly constructed session to report disconnected")
	}
}
