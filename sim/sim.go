// Package sim is a software touch pad.  A touch is simulated by raising the
// channel's value past its trigger; push and release callbacks fire from the
// goroutine that calls Touch or Untouch, standing in for the driver's
// interrupt context.
package sim

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/merliot/touchpad"
)

// NumChannels is the number of touch channels on the simulated chip
const NumChannels = 10

// NormalValue is the untouched reading of every channel
const NormalValue uint16 = 1000

var (
	ErrChannel     = errors.New("no such channel")
	ErrSensitivity = errors.New("sensitivity out of range")
	ErrInUse       = errors.New("channel already created")
	ErrHandle      = errors.New("unknown handle")
	ErrKind        = errors.New("unknown callback kind")
	ErrNotCreated  = errors.New("channel not created")
)

type pad struct {
	channel     int
	sensitivity float64
	value       uint16
	touched     bool
	push        touchpad.Callback
	release     touchpad.Callback
	readErr     error
}

// trigger is the first value counted as a touch
func (p *pad) trigger() uint16 {
	return NormalValue + uint16(math.Round(float64(NormalValue)*p.sensitivity))
}

// Driver is a simulated touch-pad driver.  It implements touchpad.Driver.
type Driver struct {
	mu   sync.Mutex
	pads [NumChannels]*pad
}

func New() *Driver {
	return &Driver{}
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

	if d.pads[channel] != nil {
		return nil, fmt.Errorf("%w: %d", ErrInUse, channel)
	}
	p := &pad{channel: channel, sensitivity: sensitivity, value: NormalValue}
	d.pads[channel] = p
	return p, nil
}

func (d *Driver) lookup(h touchpad.Handle) (*pad, error) {
	p, ok := h.(*pad)
	if !ok || p == nil || p.channel < 0 || p.channel >= NumChannels || d.pads[p.channel] != p {
		return nil, ErrHandle
	}
	return p, nil
}

func (d *Driver) Subscribe(h touchpad.Handle, kind touchpad.Kind, cb touchpad.Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(h)
	if err != nil {
		return err
	}
	switch kind {
	case touchpad.Push:
		p.push = cb
	case touchpad.Release:
		p.release = cb
	default:
		return fmt.Errorf("%w: %d", ErrKind, kind)
	}
	return nil
}

// ChannelIndex returns -1 for a handle this driver didn't create
func (d *Driver) ChannelIndex(h touchpad.Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(h)
	if err != nil {
		return -1
	}
	return p.channel
}

func (d *Driver) ReadRaw(h touchpad.Handle) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(h)
	if err != nil {
		return 0, err
	}
	if p.readErr != nil {
		return 0, p.readErr
	}
	return p.value, nil
}

// Read returns the raw value; the simulated sensor has no noise to filter
func (d *Driver) Read(h touchpad.Handle) (uint16, error) {
	return d.ReadRaw(h)
}

// Touch the channel: its value rises to the trigger and the push callback
// fires.  Touching a touched channel does nothing.
func (d *Driver) Touch(channel int) error {
	d.mu.Lock()
	p, err := d.pad(channel)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	cb := p.push
	if p.touched {
		cb = nil
	}
	p.touched = true
	if p.value < p.trigger() {
		p.value = p.trigger()
	}
	d.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return nil
}

// Untouch the channel: its value falls back to normal and the release
// callback fires.  Untouching an untouched channel does nothing.
func (d *Driver) Untouch(channel int) error {
	d.mu.Lock()
	p, err := d.pad(channel)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	cb := p.release
	if !p.touched {
		cb = nil
	}
	p.touched = false
	p.value = NormalValue
	d.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return nil
}

// SetRaw sets the channel's value.  Crossing the trigger in either direction
// is a touch or untouch.
func (d *Driver) SetRaw(channel int, value uint16) error {
	d.mu.Lock()
	p, err := d.pad(channel)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	touched := value >= p.trigger()
	was := p.touched
	d.mu.Unlock()

	switch {
	case touched && !was:
		err = d.Touch(channel)
	case !touched && was:
		err = d.Untouch(channel)
	}
	if err != nil {
		return err
	}

	d.mu.Lock()
	p.value = value
	d.mu.Unlock()
	return nil
}

// FailReads makes reads of channel return err.  A nil err clears it.
func (d *Driver) FailReads(channel int, err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, perr := d.pad(channel)
	if perr != nil {
		return perr
	}
	p.readErr = err
	return nil
}

// Touched reports whether channel is currently touched
func (d *Driver) Touched(channel int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.pad(channel)
	return err == nil && p.touched
}

func (d *Driver) pad(channel int) (*pad, error) {
	if channel < 0 || channel >= NumChannels {
		return nil, fmt.Errorf("%w: %d", ErrChannel, channel)
	}
	p := d.pads[channel]
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotCreated, channel)
	}
	return p, nil
}
