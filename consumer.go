package touchpad

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Handler is user code run by the consumer for each push or release
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a func to Handler
type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(evt Event) {
	f(evt)
}

// Consumer drains the queue and dispatches on event kind.  It keeps no state
// between events.
type Consumer struct {
	queue    *Queue
	log      logrus.FieldLogger
	handlers []Handler
}

// NewConsumer returns a consumer of q.  Handlers run in order after the event
// is logged.
func NewConsumer(q *Queue, log logrus.FieldLogger, handlers ...Handler) *Consumer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Consumer{
		queue:    q,
		log:      log.WithField("tag", "touch_button"),
		handlers: handlers,
	}
}

// Run blocks handling events until ctx is done, then returns ctx.Err()
func (c *Consumer) Run(ctx context.Context) error {
	for {
		evt, err := c.queue.Receive(ctx)
		if err != nil {
			return err
		}
		c.dispatch(evt)
	}
}

func (c *Consumer) dispatch(evt Event) {
	switch evt.Kind {
	case Push:
		c.log.Infof("push touch pad num %d", evt.Channel)
	case Release:
		c.log.Warnf("release touch pad num %d", evt.Channel)
	default:
		return
	}
	for _, h := range c.handlers {
		h.HandleEvent(evt)
	}
}
