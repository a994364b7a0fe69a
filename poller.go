package touchpad

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Output selects which sensor value the poller reads
type Output string

const (
	OutputRaw      Output = "raw"
	OutputFiltered Output = "filtered"
)

// DefaultPollInterval is the delay between sensor reads
const DefaultPollInterval = 10 * time.Millisecond

// Poller reads a channel's sensor value on an interval and logs it at debug
// level.  A failed read is logged and skipped.
type Poller struct {
	driver   Driver
	handle   Handle
	channel  int
	output   Output
	interval time.Duration
	log      logrus.FieldLogger
	value    atomic.Uint32
	failures atomic.Uint64
}

func newPoller(d Driver, h Handle, opts Options, log logrus.FieldLogger) *Poller {
	tag := "RAW"
	if opts.Output == OutputFiltered {
		tag = "FLT"
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		driver:   d,
		handle:   h,
		channel:  opts.Channel,
		output:   opts.Output,
		interval: interval,
		log:      log.WithField("tag", tag),
	}
}

// Run polls until ctx is done, then returns ctx.Err()
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll() error {
	read := p.driver.ReadRaw
	if p.output == OutputFiltered {
		read = p.driver.Read
	}

	value, err := read(p.handle)
	if err != nil {
		p.failures.Add(1)
		err = &ReadError{Channel: p.channel, Err: err}
		p.log.WithError(err).Error("tp read failed")
		return err
	}

	p.value.Store(uint32(value))
	p.log.Debugf("tp read = %d", value)
	return nil
}

// Value is the last successfully read sensor value
func (p *Poller) Value() uint16 {
	return uint16(p.value.Load())
}

// Failures is the number of failed reads
func (p *Poller) Failures() uint64 {
	return p.failures.Load()
}
