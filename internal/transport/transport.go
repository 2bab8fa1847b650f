// Package transport opens the Redragon SS-550 pad over USB and exposes
// the two primitives the device session needs: sending a framed/raw
// command packet out endpoint 0x01, and reading a keypress report off
// endpoint 0x82.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// VendorID and ProductID identify the pad.
	VendorID  = 0x0200
	ProductID = 0x1000

	interfaceNum = 0
	altSetting   = 0

	outEndpointAddr = 0x01
	inEndpointAddr  = 0x82

	// WriteTimeout bounds a single outbound transfer.
	WriteTimeout = time.Second
	// ReadTimeout bounds a single inbound poll; it is intentionally short
	// so the device session loop can interleave refresh checks between
	// polls without blocking indefinitely on an idle keyboard.
	ReadTimeout = 100 * time.Millisecond
)

// ErrTimeout wraps a read/write deadline expiring without data, letting
// callers distinguish "nothing happened yet" from a genuine I/O failure
// that should trigger a reconnect.
var ErrTimeout = errors.New("transport: operation timed out")

// Device is an open handle to the pad's USB interface.
type Device struct {
	ctx   *gousb.Context
	dev   *gousb.Device
	cfg   *gousb.Config
	intf  *gousb.Interface
	inEp  *gousb.InEndpoint
	outEp *gousb.OutEndpoint
}

// Open finds and claims the pad's interface, detaching any kernel driver
// already bound to it. The caller owns the returned Device and must call
// Close.
func Open() (*Device, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(VendorID, ProductID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("transport: open device: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("transport: device %04x:%04x not found", VendorID, ProductID)
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("transport: set auto-detach: %w", err)
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("transport: active config: %w", err)
	}

	cfg, err := dev.Config(cfgNum)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("transport: open config %d: %w", cfgNum, err)
	}

	intf, err := cfg.Interface(interfaceNum, altSetting)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("transport: claim interface %d: %w", interfaceNum, err)
	}

	inEp, err := intf.InEndpoint(inEndpointAddr & 0x0f)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("transport: in endpoint %#x: %w", inEndpointAddr, err)
	}

	outEp, err := intf.OutEndpoint(outEndpointAddr)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("transport: out endpoint %#x: %w", outEndpointAddr, err)
	}

	return &Device{ctx: ctx, dev: dev, cfg: cfg, intf: intf, inEp: inEp, outEp: outEp}, nil
}

// Close releases the interface, configuration, device and context, in
// that order.
func (d *Device) Close() error {
	var errs error
	if d.intf != nil {
		d.intf.Close()
	}
	if d.cfg != nil {
		if err := d.cfg.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if d.dev != nil {
		if err := d.dev.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if d.ctx != nil {
		if err := d.ctx.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

// Send writes a single packet (framed command or raw image chunk) to the
// pad's OUT endpoint.
func (d *Device) Send(packet []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), WriteTimeout)
	defer cancel()
	_, err := d.outEp.WriteContext(ctx, packet)
	if err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// ReadReport polls the IN endpoint once for a keypress report. A timeout
// with no data is reported as ErrTimeout, not a generic error, so the
// device session can tell "idle" from "disconnected".
func (d *Device) ReadReport() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ReadTimeout)
	defer cancel()

	buf := make([]byte, d.inEp.Desc.MaxPacketSize)
	n, err := d.inEp.ReadContext(ctx, buf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("transport: read: %w", err)
	}
	return buf[:n], nil
}
