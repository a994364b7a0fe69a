package touchpad

import (
	"errors"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

// fakeDriver records subscriptions and lets a test fire them
type fakeDriver struct {
	mu           sync.Mutex
	createErr    error
	nilHandle    bool
	subscribeErr map[Kind]error
	readErr      error
	raw          uint16
	filtered     uint16
	channel      int
	callbacks    map[Kind]Callback
	reads        int
}

type fakeHandle struct{ channel int }

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		raw:          1000,
		filtered:     998,
		subscribeErr: map[Kind]error{},
		callbacks:    map[Kind]Callback{},
	}
}

func (d *fakeDriver) Create(channel int, sensitivity float64) (Handle, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	if d.nilHandle {
		return nil, nil
	}
	d.channel = channel
	return &fakeHandle{channel}, nil
}

func (d *fakeDriver) Subscribe(h Handle, kind Kind, cb Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.subscribeErr[kind]; err != nil {
		return err
	}
	d.callbacks[kind] = cb
	return nil
}

func (d *fakeDriver) ChannelIndex(h Handle) int {
	if fh, ok := h.(*fakeHandle); ok {
		return fh.channel
	}
	return -1
}

func (d *fakeDriver) ReadRaw(h Handle) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	return d.raw, d.readErr
}

func (d *fakeDriver) Read(h Handle) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	return d.filtered, d.readErr
}

func (d *fakeDriver) fire(kind Kind, channel int) {
	d.mu.Lock()
	cb := d.callbacks[kind]
	d.mu.Unlock()
	cb(&fakeHandle{channel})
}

func (d *fakeDriver) readCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads
}

func (d *fakeDriver) failReads(err error) {
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}

func TestDriverInitError(t *testing.T) {
	c := qt.New(t)
	cause := errors.New("ESP_ERR_INVALID_ARG")
	err := error(&DriverInitError{Op: "create", Channel: 9, Err: cause})
	c.Assert(err, qt.ErrorMatches, "touch pad create channel 9: ESP_ERR_INVALID_ARG")
	c.Assert(err, qt.ErrorIs, cause)
}

func TestReadError(t *testing.T) {
	c := qt.New(t)
	cause := errors.New("timeout")
	err := error(&ReadError{Channel: 2, Err: cause})
	c.Assert(err, qt.ErrorMatches, "touch pad read channel 2: timeout")
	c.Assert(err, qt.ErrorIs, cause)
}
