package touchpad

import (
	"fmt"
)

// Handle identifies one touch channel.  It is owned by the driver that
// created it; the pipeline only hands it back to that driver.
type Handle any

// Callback is called by a driver on a push or release transition, with the
// handle of the channel that transitioned.  Callbacks run in the driver's
// context and must return quickly.
type Callback func(Handle)

// Driver is a touch-pad driver.  Sampling, filtering and calibration all
// happen behind this interface.
type Driver interface {
	// Create a handle for channel with the given sensitivity ratio
	Create(channel int, sensitivity float64) (Handle, error)
	// Subscribe cb to kind transitions on h
	Subscribe(h Handle, kind Kind, cb Callback) error
	// ChannelIndex returns the channel index of h
	ChannelIndex(h Handle) int
	// ReadRaw reads the unfiltered sensor value of h
	ReadRaw(h Handle) (uint16, error)
	// Read reads the filtered sensor value of h
	Read(h Handle) (uint16, error)
}

// Notifier receives touch transitions by channel index
type Notifier interface {
	OnPush(channel int)
	OnRelease(channel int)
}

// DriverInitError is a failure to create or subscribe a channel at startup.
// The pipeline can't run without a handle, so it is fatal.
type DriverInitError struct {
	Op      string
	Channel int
	Err     error
}

func (e *DriverInitError) Error() string {
	return fmt.Sprintf("touch pad %s channel %d: %s", e.Op, e.Channel, e.Err)
}

func (e *DriverInitError) Unwrap() error {
	return e.Err
}

// ReadError is a failed sensor read while polling
type ReadError struct {
	Channel int
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("touch pad read channel %d: %s", e.Channel, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
