package touchpad

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
)

var _ Notifier = (*Adapter)(nil)

func receiveAll(c *qt.C, q *Queue) []Event {
	var evts []Event
	for q.Len() > 0 {
		evt, err := q.Receive(context.Background())
		c.Assert(err, qt.IsNil)
		evts = append(evts, evt)
	}
	return evts
}

func TestAdapterNotifier(t *testing.T) {
	c := qt.New(t)
	q := NewQueue(DefaultQueueSize)
	a := NewAdapter(q, newFakeDriver())

	a.OnPush(3)
	a.OnPush(5)
	a.OnRelease(3)

	c.Assert(receiveAll(c, q), qt.DeepEquals, []Event{
		PushEvent(3), PushEvent(5), ReleaseEvent(3),
	})
}

func TestAdapterCallback(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	q := NewQueue(DefaultQueueSize)
	a := NewAdapter(q, d)

	a.Callback(Push)(&fakeHandle{7})
	a.Callback(Release)(&fakeHandle{7})
	// unknown kinds produce a callback that does nothing
	a.Callback(Kind(0))(&fakeHandle{7})

	c.Assert(receiveAll(c, q), qt.DeepEquals, []Event{
		PushEvent(7), ReleaseEvent(7),
	})
}

func TestAdapterFull(t *testing.T) {
	c := qt.New(t)
	q := NewQueue(2)
	a := NewAdapter(q, newFakeDriver())

	for i := 0; i < 5; i++ {
		a.OnPush(i)
	}
	c.Assert(q.Dropped(), qt.Equals, uint64(3))
	c.Assert(receiveAll(c, q), qt.DeepEquals, []Event{PushEvent(0), PushEvent(1)})
}
