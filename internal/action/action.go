// Package action classifies a ButtonConfig's command string and
// dispatches its effect: page navigation and widget commands (handled
// synchronously, since they must complete before the device session
// re-enters LOAD), or any other class (handled in a detached goroutine so
// it can never block the device loop).
package action

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/keysynth"
	"github.com/matthewpi/redragon-deck/internal/obs"
	"github.com/matthewpi/redragon-deck/internal/refresh"
	"github.com/matthewpi/redragon-deck/internal/twitch"
	"github.com/matthewpi/redragon-deck/internal/widget"
)

const interStepPause = 100 * time.Millisecond

// Dispatcher wires a button press to its effect. OBS/Twitch/KeySynth are
// optional: a nil client means that integration is unconfigured, and
// commands naming it are logged and dropped rather than panicking.
type Dispatcher struct {
	log *zap.SugaredLogger

	store   *config.Store
	refresh *refresh.Signal
	widgets *widget.Engine

	obsClient    *obs.Client
	twitchClient *twitch.Client
	synth        *keysynth.Synth
}

// New constructs a Dispatcher. obsClient, twitchClient, and synth may be
// nil when those integrations are not configured.
func New(store *config.Store, sig *refresh.Signal, widgets *widget.Engine, obsClient *obs.Client, twitchClient *twitch.Client, synth *keysynth.Synth, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		log:          log,
		store:        store,
		refresh:      sig,
		widgets:      widgets,
		obsClient:    obsClient,
		twitchClient: twitchClient,
		synth:        synth,
	}
}

// Dispatch looks up keyID's command on the current page and runs it. A
// missing button or empty command is a silent no-op.
func (d *Dispatcher) Dispatch(keyID int) {
	cfg := d.store.Snapshot()
	page := cfg.CurrentPagePtr()
	btn := page.Button(keyID)
	if btn.Command == "" {
		return
	}
	d.run(btn.Command)
}

// RunCommand classifies and dispatches an arbitrary command string, the
// same way a button press would. It backs the command surface's
// run_command RPC, letting the GUI trigger any action class ad hoc.
func (d *Dispatcher) RunCommand(cmd string) {
	if cmd == "" {
		return
	}
	d.run(cmd)
}

// run classifies cmd and either executes it inline (page navigation and
// widget commands, which must never be delayed behind a goroutine
// schedule) or hands it to execute on a detached goroutine so it cannot
// block the device loop.
func (d *Dispatcher) run(cmd string) {
	switch {
	case cmd == "__NEXT_PAGE__":
		d.navigate(func(cur, n int) int { return (cur + 1) % n })
		return
	case cmd == "__PREV_PAGE__":
		d.navigate(func(cur, n int) int { return (cur - 1 + n) % n })
		return
	case strings.HasPrefix(cmd, "__PAGE_"):
		d.navigateToIndex(cmd)
		return
	case widget.IsWidgetCommand(cmd):
		d.handleWidget(cmd)
		return
	}

	go d.execute(cmd)
}

// execute classifies and runs every non-navigation, non-widget command
// class synchronously: __MULTI_ steps are dispatched through this same
// function in sequence, so a step naming a nested action never spawns a
// further goroutine of its own.
func (d *Dispatcher) execute(cmd string) {
	switch {
	case cmd == "__NEXT_PAGE__", cmd == "__PREV_PAGE__", strings.HasPrefix(cmd, "__PAGE_"), widget.IsWidgetCommand(cmd):
		d.run(cmd)
	case strings.HasPrefix(cmd, "__MULTI_"):
		d.runMulti(strings.TrimPrefix(cmd, "__MULTI_"))
	default:
		d.execEffect(cmd)
	}
}

func (d *Dispatcher) navigate(next func(cur, n int) int) {
	cfg := d.store.Snapshot()
	n := len(cfg.Pages)
	if n == 0 {
		return
	}
	if err := d.store.SetPage(next(cfg.CurrentPage, n)); err != nil {
		d.log.Warnw("action: page navigation failed", "error", err)
		return
	}
	d.refresh.Raise()
}

func (d *Dispatcher) navigateToIndex(cmd string) {
	trimmed := strings.TrimPrefix(cmd, "__PAGE_")
	trimmed = strings.TrimSuffix(trimmed, "__")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return
	}
	cfg := d.store.Snapshot()
	if n < 0 || n >= len(cfg.Pages) {
		return
	}
	if err := d.store.SetPage(n); err != nil {
		d.log.Warnw("action: set page failed", "error", err)
		return
	}
	d.refresh.Raise()
}

func (d *Dispatcher) handleWidget(cmd string) {
	if strings.HasPrefix(cmd, "__TIMER") {
		d.widgets.HandleTimerPress(cmd)
	}
	d.refresh.Raise()
}

// execEffect executes every non-navigation, non-multi, non-widget
// command class. It assumes it is already running off the device loop's
// goroutine.
func (d *Dispatcher) execEffect(cmd string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch {
	case cmd == "__OBS_STREAM__":
		d.withOBS(func(c *obs.Client) error { return c.ToggleStream() })
	case cmd == "__OBS_RECORD__":
		d.withOBS(func(c *obs.Client) error { return c.ToggleRecord() })
	case cmd == "__OBS_MUTE__":
		d.withOBS(func(c *obs.Client) error { return c.ToggleMute("Mic/Aux") })
	case strings.HasPrefix(cmd, "__OBS_SCENE_"):
		scene := strings.TrimSuffix(strings.TrimPrefix(cmd, "__OBS_SCENE_"), "__")
		d.withOBS(func(c *obs.Client) error { return c.SetCurrentScene(scene) })
	case cmd == "__TWITCH_CLIP__":
		d.withTwitch(func(c *twitch.Client) error { return c.CreateClip(ctx) })
	case strings.HasPrefix(cmd, "__TWITCH_AD_"):
		d.dispatchTwitchAd(ctx, cmd)
	case strings.HasPrefix(cmd, "__TWITCH_CHAT_"):
		msg := strings.TrimSuffix(strings.TrimPrefix(cmd, "__TWITCH_CHAT_"), "__")
		d.withTwitch(func(c *twitch.Client) error { return c.SendChatMessage(ctx, msg) })
	case strings.HasPrefix(cmd, "__URL_"):
		url := strings.TrimSuffix(strings.TrimPrefix(cmd, "__URL_"), "__")
		d.execShell("xdg-open", url)
	case strings.HasPrefix(cmd, "__KEY_"):
		combo := strings.TrimSuffix(strings.TrimPrefix(cmd, "__KEY_"), "__")
		d.withSynth(func(s *keysynth.Synth) error { return s.PressChord(combo) })
	case strings.HasPrefix(cmd, "__TYPE_"):
		text := strings.TrimSuffix(strings.TrimPrefix(cmd, "__TYPE_"), "__")
		d.withSynth(func(s *keysynth.Synth) error { return s.TypeText(text) })
	default:
		d.execSh(cmd)
	}
}

func (d *Dispatcher) dispatchTwitchAd(ctx context.Context, cmd string) {
	trimmed := strings.TrimPrefix(cmd, "__TWITCH_AD_")
	trimmed = strings.TrimSuffix(trimmed, "__")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		d.log.Warnw("action: bad twitch ad length", "command", cmd)
		return
	}
	d.withTwitch(func(c *twitch.Client) error { return c.StartCommercial(ctx, n) })
}

func (d *Dispatcher) withOBS(fn func(*obs.Client) error) {
	if d.obsClient == nil {
		d.log.Warnw("action: OBS command received but OBS is not configured")
		return
	}
	if err := fn(d.obsClient); err != nil {
		d.log.Warnw("action: obs request failed", "error", err)
	}
}

func (d *Dispatcher) withTwitch(fn func(*twitch.Client) error) {
	if d.twitchClient == nil {
		d.log.Warnw("action: twitch command received but twitch is not configured")
		return
	}
	if err := fn(d.twitchClient); err != nil {
		d.log.Warnw("action: twitch request failed", "error", err)
	}
}

func (d *Dispatcher) withSynth(fn func(*keysynth.Synth) error) {
	if d.synth == nil {
		d.log.Warnw("action: key/type command received but keysynth is not configured")
		return
	}
	if err := fn(d.synth); err != nil {
		d.log.Warnw("action: key synthesis failed", "error", err)
	}
}

func (d *Dispatcher) execShell(name string, args ...string) {
	if err := exec.Command(name, args...).Run(); err != nil {
		d.log.Warnw("action: command failed", "name", name, "error", err)
	}
}

// execSh runs cmd through the host shell, matching the original
// implementation's sh -c dispatch: actions are authored by the user who
// configures their own pad, so this is an intentional host-shell
// interface rather than an injection surface.
func (d *Dispatcher) execSh(cmd string) {
	if err := exec.Command("sh", "-c", cmd).Run(); err != nil {
		d.log.Warnw("action: shell command failed", "command", cmd, "error", err)
	}
}

// runMulti splits a __MULTI_ payload on the literal ";;" separator and
// runs each trimmed, non-empty step in order, honoring __DELAY_<ms>
// steps and pausing 100ms between every step.
func (d *Dispatcher) runMulti(payload string) {
	steps := strings.Split(payload, ";;")
	for i, step := range steps {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}
		if strings.HasPrefix(step, "__DELAY_") {
			d.delay(step)
		} else {
			d.execute(step)
		}
		if i < len(steps)-1 {
			time.Sleep(interStepPause)
		}
	}
}

func (d *Dispatcher) delay(step string) {
	trimmed := strings.TrimPrefix(step, "__DELAY_")
	trimmed = strings.TrimSuffix(trimmed, "__")
	ms, err := strconv.Atoi(trimmed)
	if err != nil {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
