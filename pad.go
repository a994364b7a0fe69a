package touchpad

import (
	"fmt"
	"time"
)

// Options configure a Pipeline
type Options struct {
	Id    string
	Model string
	Name  string
	// Channel is the touch channel index (TOUCH_PAD_NUM9 on the reference
	// board)
	Channel int
	// Sensitivity is the trigger ratio handed to the driver, see
	// Sensitivity()
	Sensitivity  float64
	QueueSize    int
	PollInterval time.Duration
	Output       Output
}

// Reference board values: a touch reads ~1050 against a ~1000 baseline
const (
	DefaultChannel      = 9
	DefaultTriggerValue = 1050.0
	DefaultNormalValue  = 1000.0
)

// DefaultOptions returns the reference board setup
func DefaultOptions() Options {
	return Options{
		Id:           "touchpad",
		Model:        "touchpad",
		Name:         "touchpad",
		Channel:      DefaultChannel,
		Sensitivity:  Sensitivity(DefaultTriggerValue, DefaultNormalValue),
		QueueSize:    DefaultQueueSize,
		PollInterval: DefaultPollInterval,
		Output:       OutputRaw,
	}
}

// Sensitivity is the ratio of the touched value's rise over the untouched
// value
func Sensitivity(trigger, normal float64) float64 {
	return (trigger - normal) / normal
}

// Validate checks the identity and ranges of o
func (o Options) Validate() error {
	if !ValidId(o.Id) || !ValidId(o.Model) || !ValidId(o.Name) {
		return fmt.Errorf("something invalid: %s", o)
	}
	if o.Channel < 0 {
		return fmt.Errorf("invalid channel %d", o.Channel)
	}
	if o.Sensitivity <= 0 {
		return fmt.Errorf("invalid sensitivity %g", o.Sensitivity)
	}
	switch o.Output {
	case OutputRaw, OutputFiltered:
	default:
		return fmt.Errorf("invalid output %q", o.Output)
	}
	return nil
}

func (o Options) String() string {
	return "[Id: " + o.Id + ", Model: " + o.Model + ", Name: " + o.Name + "]"
}

// A valid ID is a non-empty string with only [a-z], [A-Z], [0-9], or
// underscore characters.
func ValidId(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			(r != '_') {
			return false
		}
	}
	return len(s) > 0
}
