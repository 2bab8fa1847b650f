package action

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/obs"
	"github.com/matthewpi/redragon-deck/internal/refresh"
	"github.com/matthewpi/redragon-deck/internal/twitch"
	"github.com/matthewpi/redragon-deck/internal/widget"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *config.Store, *refresh.Signal) {
	t.Helper()
	log := zap.NewNop().Sugar()
	store, err := config.Open(filepath.Join(t.TempDir(), "config.json"), log)
	if err != nil {
		t.Fatalf("config.Open: %v", err)
	}
	sig := refresh.New()
	widgets := widget.NewEngine(obs.NewCache(), twitch.NewCache())
	d := New(store, sig, widgets, nil, nil, nil, log)
	return d, store, sig
}

func TestDispatchNextPageCyclesAndSignalsRefresh(t *testing.T) {
	d, store, sig := newTestDispatcher(t)
	if _, err := store.AddPage("Second"); err != nil {
		t.Fatalf("AddPage: %v", err)
	}

	d.Dispatch(5) // key 5 on the default page is __NEXT_PAGE__
	if store.Snapshot().CurrentPage != 1 {
		t.Fatalf("expected currentPage 1, got %d", store.Snapshot().CurrentPage)
	}
	if !sig.Pending() {
		t.Fatal("expected a refresh signal")
	}
}

func TestRunPrevPageWraps(t *testing.T) {
	d, store, sig := newTestDispatcher(t)
	if _, err := store.AddPage("Second"); err != nil {
		t.Fatalf("AddPage: %v", err)
	}

	d.run("__PREV_PAGE__")
	if store.Snapshot().CurrentPage != 1 {
		t.Fatalf("expected wrap to last page (1), got %d", store.Snapshot().CurrentPage)
	}
	sig.Pending()

	d.run("__PREV_PAGE__")
	if store.Snapshot().CurrentPage != 0 {
		t.Fatalf("expected page 0, got %d", store.Snapshot().CurrentPage)
	}
}

func TestRunPageNSetsIndexWithinRange(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	if _, err := store.AddPage("Second"); err != nil {
		t.Fatalf("AddPage: %v", err)
	}

	d.run("__PAGE_1__")
	if store.Snapshot().CurrentPage != 1 {
		t.Fatalf("expected page 1, got %d", store.Snapshot().CurrentPage)
	}

	d.run("__PAGE_9__")
	if store.Snapshot().CurrentPage != 1 {
		t.Fatalf("out-of-range page should be a no-op, got %d", store.Snapshot().CurrentPage)
	}
}

func TestWidgetCommandSignalsRefreshWithoutBlocking(t *testing.T) {
	d, _, sig := newTestDispatcher(t)
	d.run("__CLOCK__")
	if !sig.Pending() {
		t.Fatal("expected widget command to raise a refresh signal")
	}
}

func TestUnconfiguredOBSCommandDoesNotPanic(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	done := make(chan struct{})
	go func() {
		d.execute("__OBS_STREAM__")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("execute did not return")
	}
}

func TestMultiRunsStepsInOrderWithDelay(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	start := time.Now()
	d.execute("__MULTI___DELAY_50;;__DELAY_50")
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("expected at least 100ms of delay steps, elapsed %s", elapsed)
	}
}
