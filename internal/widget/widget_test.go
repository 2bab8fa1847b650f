package widget

import (
	"testing"
	"time"

	"github.com/matthewpi/redragon-deck/internal/obs"
	"github.com/matthewpi/redragon-deck/internal/twitch"
)

func newTestEngine() *Engine {
	return NewEngine(obs.NewCache(), twitch.NewCache())
}

func TestIsWidgetCommand(t *testing.T) {
	yes := []string{"__CLOCK__", "__CLOCK_S__", "__DATE__", "__WEEKDAY__", "__CPU__", "__RAM__", "__TEMP__", "__TIMER_5__", "__OBS_STATUS__", "__TWITCH_VIEWERS__", "__TWITCH_FOLLOWERS__"}
	for _, c := range yes {
		if !IsWidgetCommand(c) {
			t.Fatalf("expected %q to be a widget command", c)
		}
	}
	no := []string{"__NEXT_PAGE__", "notepad", "__KEY_ctrl+c"}
	for _, c := range no {
		if IsWidgetCommand(c) {
			t.Fatalf("expected %q to not be a widget command", c)
		}
	}
}

func TestTimerToggleAndText(t *testing.T) {
	e := newTestEngine()
	if got := e.Text("__TIMER_1__"); got != "00:00" {
		t.Fatalf("expected idle timer to read 00:00, got %q", got)
	}

	e.HandleTimerPress("__TIMER_1__")
	got := e.Text("__TIMER_1__")
	if got == "00:00" || got == "DONE!" {
		t.Fatalf("expected a running countdown, got %q", got)
	}

	// Toggling again resets to idle.
	e.HandleTimerPress("__TIMER_1__")
	if got := e.Text("__TIMER_1__"); got != "00:00" {
		t.Fatalf("expected reset timer to read 00:00, got %q", got)
	}
}

func TestTimerReportsDoneExactlyOnce(t *testing.T) {
	e := newTestEngine()
	ts := e.timerFor("__TIMER_TEST__")
	ts.start.Store(time.Now().Add(-2 * time.Second).Unix())
	ts.duration.Store(1)

	first := ts.Text()
	if first != "DONE!" {
		t.Fatalf("expected DONE! on first read past expiry, got %q", first)
	}
	second := ts.Text()
	if second != "00:00" {
		t.Fatalf("expected 00:00 on subsequent read, got %q", second)
	}

	// A completed timer must reset to idle so the next press starts a
	// fresh countdown instead of being read as "stop a running timer".
	ts.Toggle(1)
	if got := ts.Text(); got == "00:00" || got == "DONE!" {
		t.Fatalf("expected a fresh running countdown after restart, got %q", got)
	}
}

func TestObsStatusText(t *testing.T) {
	e := newTestEngine()
	if got := e.Text("__OBS_STATUS__"); got != "OBS OFF" {
		t.Fatalf("expected OBS OFF when disconnected, got %q", got)
	}

	e.obs.SetConnected(true)
	e.obs.SetStreamState(true)
	if got := e.Text("__OBS_STATUS__"); got != "LIVE/---" {
		t.Fatalf("expected LIVE/---, got %q", got)
	}
}

func TestTwitchViewersText(t *testing.T) {
	e := newTestEngine()
	if got := e.Text("__TWITCH_VIEWERS__"); got != "TWITCH" {
		t.Fatalf("expected TWITCH when unconfigured, got %q", got)
	}

	e.twitch.SetConfigured(true)
	if got := e.Text("__TWITCH_VIEWERS__"); got != "OFFLINE" {
		t.Fatalf("expected OFFLINE, got %q", got)
	}

	e.twitch.SetLive(true, 42)
	if got := e.Text("__TWITCH_VIEWERS__"); got != "42v" {
		t.Fatalf("expected 42v, got %q", got)
	}
}
