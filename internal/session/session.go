// Package session runs the single long-lived loop that owns the USB
// handle: search for the pad, load the current page onto it, serve
// keypresses and periodic widget redraws, and reconnect on failure.
package session

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/matthewpi/redragon-deck/internal/action"
	"github.com/matthewpi/redragon-deck/internal/codec"
	"github.com/matthewpi/redragon-deck/internal/config"
	"github.com/matthewpi/redragon-deck/internal/hidscan"
	"github.com/matthewpi/redragon-deck/internal/refresh"
	"github.com/matthewpi/redragon-deck/internal/render"
	"github.com/matthewpi/redragon-deck/internal/transport"
	"github.com/matthewpi/redragon-deck/internal/widget"
)

const (
	searchInterval    = 2 * time.Second
	reconnectInterval = time.Second
	// widgetTickEvery matches spec.md's "every 10 iterations of the 100ms
	// poll loop" cadence, roughly one second of wall clock.
	widgetTickEvery = 10
)

// Session owns the device connection for the process lifetime.
type Session struct {
	log *zap.SugaredLogger

	store      *config.Store
	iconsDir   string
	dispatcher *action.Dispatcher
	widgets    *widget.Engine
	refresh    *refresh.Signal

	// connected reports whether the device is currently held open, read
	// by the command surface's get_status/connect_device handlers.
	connected atomic.Bool
}

// New constructs a Session. Run must be called to start the loop.
func New(store *config.Store, iconsDir string, dispatcher *action.Dispatcher, widgets *widget.Engine, sig *refresh.Signal, log *zap.SugaredLogger) *Session {
	return &Session{log: log, store: store, iconsDir: iconsDir, dispatcher: dispatcher, widgets: widgets, refresh: sig}
}

// Connected reports whether the device is currently open and being served.
func (s *Session) Connected() bool {
	return s.connected.Load()
}

// Run blocks forever, cycling SEARCH -> LOAD -> SERVE -> RECONNECT.
func (s *Session) Run() {
	for {
		if !hidscan.Present(transport.VendorID, transport.ProductID) {
			time.Sleep(searchInterval)
			continue
		}

		dev, err := transport.Open()
		if err != nil {
			s.log.Debugw("session: open failed, will retry", "error", err)
			time.Sleep(searchInterval)
			continue
		}

		s.connected.Store(true)
		s.serve(dev)
		s.connected.Store(false)

		dev.Close()
		time.Sleep(reconnectInterval)
	}
}

// serve performs LOAD followed by the SERVE poll loop, returning when
// the device needs to be reconnected.
func (s *Session) serve(dev *transport.Device) {
	if err := s.load(dev); err != nil {
		s.log.Warnw("session: initial load failed", "error", err)
		return
	}

	tick := 0
	for {
		if s.refresh.Pending() {
			if err := s.load(dev); err != nil {
				s.log.Warnw("session: reload failed", "error", err)
				return
			}
			tick = 0
			continue
		}

		tick++
		if tick >= widgetTickEvery {
			tick = 0
			if err := s.refreshWidgets(dev); err != nil {
				s.log.Warnw("session: widget refresh failed", "error", err)
				return
			}
		}

		report, err := dev.ReadReport()
		if err != nil {
			if err == transport.ErrTimeout {
				continue
			}
			s.log.Debugw("session: read error, reconnecting", "error", err)
			return
		}

		ev, err := codec.ParseKeyEvent(report)
		if err != nil {
			continue
		}
		if ev.Pressed {
			s.dispatcher.Dispatch(ev.LogicalKey)
		}
	}
}

// load takes a fresh snapshot of the config store and pushes the current page onto
// the device: wake, clear, brightness, then every non-blank button.
func (s *Session) load(dev *transport.Device) error {
	cfg := s.store.Snapshot()
	page := cfg.CurrentPagePtr()

	for _, pkt := range []([]byte){codec.WakeDisplay(), codec.ClearAll(), codec.SetBrightness(cfg.Brightness)} {
		if err := dev.Send(pkt); err != nil {
			return err
		}
	}

	for keyID := codec.MinKeyID; keyID <= codec.MaxKeyID; keyID++ {
		btn := page.Button(keyID)
		if btn.IsBlank() {
			continue
		}
		if err := s.uploadButton(dev, keyID, btn); err != nil {
			return err
		}
	}
	return nil
}

// refreshWidgets re-renders and re-uploads only the buttons on the
// current page whose command is a widget command, without touching the
// rest of the page.
func (s *Session) refreshWidgets(dev *transport.Device) error {
	cfg := s.store.Snapshot()
	page := cfg.CurrentPagePtr()

	for keyID := codec.MinKeyID; keyID <= codec.MaxKeyID; keyID++ {
		btn := page.Button(keyID)
		if !widget.IsWidgetCommand(btn.Command) {
			continue
		}
		btn.Label = s.widgets.Text(btn.Command)
		if err := s.uploadButton(dev, keyID, btn); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) uploadButton(dev *transport.Device, keyID int, btn config.ButtonConfig) error {
	jpg, err := render.Button(btn, s.iconsDir)
	if err != nil {
		return err
	}

	announce, err := codec.AnnounceImage(len(jpg), keyID)
	if err != nil {
		return err
	}
	if err := dev.Send(announce); err != nil {
		return err
	}
	for _, chunk := range codec.ChunkRaw(jpg) {
		if err := dev.Send(chunk); err != nil {
			return err
		}
	}
	return dev.Send(codec.Commit())
}

