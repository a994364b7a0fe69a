//go:build tinygo

// Package mpr121 drives touch channels on an MPR121 capacitive keypad.  The
// chip does its own filtering and baseline tracking; Scan watches its touch
// status report and fires the push and release callbacks on each change.
// ReadRaw is the electrode's filtered data and Read its baseline, both as
// 10-bit ADC counts.
//
// Datasheet: https://cdn-shop.adafruit.com/datasheets/MPR121.pdf
package mpr121

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/merliot/touchpad"
	"tinygo.org/x/drivers"
	dev "tinygo.org/x/drivers/mpr121"
)

// NumChannels is the number of electrodes on the chip
const NumChannels = 12

// DefaultScanPeriod is the delay between touch status reads
const DefaultScanPeriod = 5 * time.Millisecond

var (
	ErrChannel     = errors.New("no such electrode")
	ErrSensitivity = errors.New("sensitivity out of range")
	ErrInUse       = errors.New("electrode already created")
	ErrHandle      = errors.New("unknown handle")
	ErrKind        = errors.New("unknown callback kind")
)

type electrode struct {
	channel uint8
	push    touchpad.Callback
	release touchpad.Callback
}

// Driver implements touchpad.Driver on an MPR121
type Driver struct {
	mu         sync.Mutex
	bus        drivers.I2C
	dev        *dev.Device
	address    uint8
	configured bool
	electrodes [NumChannels]*electrode
	last       dev.Report
	ScanPeriod time.Duration
}

// New returns a driver for the chip at address on bus (0 for
// DefaultAddress).  The I2C bus must already be configured.
func New(bus drivers.I2C, address uint8) *Driver {
	if address == 0 {
		address = DefaultAddress
	}
	return &Driver{
		bus:        bus,
		dev:        dev.New(bus),
		address:    address,
		ScanPeriod: DefaultScanPeriod,
	}
}

// thresholds maps the sensitivity ratio onto the chip's touch and release
// thresholds.  The release threshold is half the touch threshold.
func thresholds(sensitivity float64) (touch, release uint8) {
	t := sensitivity * 255
	if t < 2 {
		t = 2
	}
	if t > 255 {
		t = 255
	}
	touch = uint8(t)
	return touch, touch / 2
}

func (d *Driver) Create(channel int, sensitivity float64) (touchpad.Handle, error) {
	if channel < 0 || channel >= NumChannels {
		return nil, fmt.Errorf("%w: %d", ErrChannel, channel)
	}
	if sensitivity <= 0 || sensitivity >= 1 {
		return nil, fmt.Errorf("%w: %g", ErrSensitivity, sensitivity)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.electrodes[channel] != nil {
		return nil, fmt.Errorf("%w: %d", ErrInUse, channel)
	}

	touch, release := thresholds(sensitivity)
	if !d.configured {
		err := d.dev.Configure(dev.Config{
			Address:          d.address,
			TouchThreshold:   touch,
			ReleaseThreshold: release,
			AutoConfig:       true,
		})
		if err != nil {
			return nil, err
		}
		d.configured = true
	} else if err := d.dev.SetThreshold(uint8(channel), touch, release); err != nil {
		return nil, err
	}

	e := &electrode{channel: uint8(channel)}
	d.electrodes[channel] = e
	return e, nil
}

func (d *Driver) lookup(h touchpad.Handle) (*electrode, error) {
	e, ok := h.(*electrode)
	if !ok || e == nil || int(e.channel) >= NumChannels || d.electrodes[e.channel] != e {
		return nil, ErrHandle
	}
	return e, nil
}

func (d *Driver) Subscribe(h touchpad.Handle, kind touchpad.Kind, cb touchpad.Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return err
	}
	switch kind {
	case touchpad.Push:
		e.push = cb
	case touchpad.Release:
		e.release = cb
	default:
		return fmt.Errorf("%w: %d", ErrKind, kind)
	}
	return nil
}

func (d *Driver) ChannelIndex(h touchpad.Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return -1
	}
	return int(e.channel)
}

// ReadRaw returns the electrode's filtered data
func (d *Driver) ReadRaw(h touchpad.Handle) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return 0, err
	}
	return readFiltered(d.bus, d.address, e.channel)
}

// Read returns the electrode's baseline, the chip's slow-tracking filter
// of the filtered data
func (d *Driver) Read(h touchpad.Handle) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return 0, err
	}
	return readBaseline(d.bus, d.address, e.channel)
}

// Scan reads the touch status until ctx is done, calling the subscribed
// callbacks on each change.  Callbacks run on the Scan goroutine.
func (d *Driver) Scan(ctx context.Context) error {
	ticker := time.NewTicker(d.ScanPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		d.mu.Lock()
		report, err := d.dev.Status()
		if err != nil {
			d.mu.Unlock()
			continue
		}
		changed := report ^ d.last
		d.last = report
		var fire []func()
		for _, e := range d.electrodes {
			if e == nil || changed&(1<<e.channel) == 0 {
				continue
			}
			cb := e.release
			if report.Touched(e.channel) {
				cb = e.push
			}
			if cb != nil {
				e := e
				fire = append(fire, func() { cb(e) })
			}
		}
		d.mu.Unlock()

		for _, f := range fire {
			f()
		}
	}
}
