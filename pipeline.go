package touchpad

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pipeline connects a driver channel to a consumer through a bounded queue.
//
//	driver callback -> Adapter -> Queue -> Consumer -> log, Handlers
//
// A Poller reads the channel's sensor value alongside.
type Pipeline struct {
	opts     Options
	log      logrus.FieldLogger
	driver   Driver
	handle   Handle
	queue    *Queue
	adapter  *Adapter
	poller   *Poller
	mu       mutex
	handlers []Handler
	running  bool
}

// State is a snapshot of the pipeline, sent as the reply to "get/state"
type State struct {
	Path        string
	Id          string
	Model       string
	Name        string
	Channel     int
	Sensitivity float64
	Output      Output
	Value       uint16
	Queued      int
	Capacity    int
	Dropped     uint64
	ReadErrors  uint64
}

// New creates the channel handle on d and subscribes the push and release
// callbacks.  Driver failures are returned as *DriverInitError.
func New(d Driver, opts Options, log logrus.FieldLogger) (*Pipeline, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		opts:   opts,
		log:    log,
		driver: d,
		queue:  NewQueue(opts.QueueSize),
	}
	p.adapter = NewAdapter(p.queue, d)

	h, err := d.Create(opts.Channel, opts.Sensitivity)
	if err != nil {
		return nil, &DriverInitError{Op: "create", Channel: opts.Channel, Err: err}
	}
	if h == nil {
		return nil, &DriverInitError{Op: "create", Channel: opts.Channel,
			Err: errors.New("nil handle")}
	}
	p.handle = h

	for _, kind := range []Kind{Push, Release} {
		if err := d.Subscribe(h, kind, p.adapter.Callback(kind)); err != nil {
			return nil, &DriverInitError{Op: "subscribe " + kind.String(),
				Channel: opts.Channel, Err: err}
		}
	}

	p.poller = newPoller(d, h, opts, log)

	log.WithField("pad", opts.String()).Infof("touch pad channel %d, sensitivity %g, queue %d",
		opts.Channel, opts.Sensitivity, p.queue.Cap())

	return p, nil
}

// AddHandler adds user code run for each event.  Handlers added after Run
// starts are ignored.
func (p *Pipeline) AddHandler(h Handler) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.log.Warn("handler added to running touch pipeline; ignored")
		return false
	}
	p.handlers = append(p.handlers, h)
	return true
}

// Run the consumer and poller until ctx is done.  Returns nil once ctx is
// done.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("touch pipeline already running")
	}
	p.running = true
	handlers := append([]Handler(nil), p.handlers...)
	p.mu.Unlock()

	consumer := NewConsumer(p.queue, p.log, handlers...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(gctx) })
	g.Go(func() error { return p.poller.Run(gctx) })
	err := g.Wait()

	p.log.WithField("dropped", p.queue.Dropped()).Info("touch pipeline stopped")

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Adapter is the event source; drivers may also be handed it as a Notifier
func (p *Pipeline) Adapter() *Adapter {
	return p.adapter
}

// Queue between the driver and the consumer
func (p *Pipeline) Queue() *Queue {
	return p.queue
}

// Handle of the pipeline's channel
func (p *Pipeline) Handle() Handle {
	return p.handle
}

// Dropped is the number of events lost to a full queue
func (p *Pipeline) Dropped() uint64 {
	return p.queue.Dropped()
}

// State returns a snapshot of the pipeline
func (p *Pipeline) State() State {
	return State{
		Path:        "state",
		Id:          p.opts.Id,
		Model:       p.opts.Model,
		Name:        p.opts.Name,
		Channel:     p.opts.Channel,
		Sensitivity: p.opts.Sensitivity,
		Output:      p.opts.Output,
		Value:       p.poller.Value(),
		Queued:      p.queue.Len(),
		Capacity:    p.queue.Cap(),
		Dropped:     p.queue.Dropped(),
		ReadErrors:  p.poller.Failures(),
	}
}
