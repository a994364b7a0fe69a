package touchpad

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewCreateError(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	d.createErr = errors.New("ESP_ERR_INVALID_STATE")

	_, err := New(d, DefaultOptions(), logrus.New())

	var ierr *DriverInitError
	c.Assert(err, qt.ErrorAs, &ierr)
	c.Assert(ierr.Op, qt.Equals, "create")
	c.Assert(ierr.Channel, qt.Equals, 9)
	c.Assert(err, qt.ErrorIs, d.createErr)
}

func TestNewNilHandle(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	d.nilHandle = true

	_, err := New(d, DefaultOptions(), logrus.New())

	var ierr *DriverInitError
	c.Assert(err, qt.ErrorAs, &ierr)
	c.Assert(err, qt.ErrorMatches, "touch pad create channel 9: nil handle")
}

func TestNewSubscribeError(t *testing.T) {
	for _, kind := range []Kind{Push, Release} {
		t.Run(kind.String(), func(t *testing.T) {
			c := qt.New(t)
			d := newFakeDriver()
			d.subscribeErr[kind] = errors.New("no slot")

			_, err := New(d, DefaultOptions(), logrus.New())

			var ierr *DriverInitError
			c.Assert(err, qt.ErrorAs, &ierr)
			c.Assert(ierr.Op, qt.Equals, "subscribe "+kind.String())
		})
	}
}

func TestNewInvalidOptions(t *testing.T) {
	c := qt.New(t)
	opts := DefaultOptions()
	opts.Id = ""
	_, err := New(newFakeDriver(), opts, nil)
	c.Assert(err, qt.ErrorMatches, "something invalid: .*")
}

func TestNewSubscribesBoth(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	p, err := New(d, DefaultOptions(), logrus.New())
	c.Assert(err, qt.IsNil)
	c.Assert(d.callbacks, qt.HasLen, 2)
	c.Assert(d.ChannelIndex(p.Handle()), qt.Equals, 9)
}

func TestPipelineRun(t *testing.T) {
	c := qt.New(t)
	log, hook := test.NewNullLogger()
	d := newFakeDriver()

	p, err := New(d, DefaultOptions(), log)
	c.Assert(err, qt.IsNil)

	got := make(chan Event, 10)
	c.Assert(p.AddHandler(HandlerFunc(func(evt Event) { got <- evt })), qt.IsTrue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	d.fire(Push, 9)
	d.fire(Release, 9)

	for _, want := range []Event{PushEvent(9), ReleaseEvent(9)} {
		select {
		case evt := <-got:
			c.Assert(evt, qt.Equals, want)
		case <-time.After(time.Second):
			c.Fatalf("no %s", want)
		}
	}

	// handlers can't be added once running
	c.Assert(p.AddHandler(HandlerFunc(func(Event) {})), qt.IsFalse)

	cancel()
	c.Assert(<-done, qt.IsNil)
	c.Assert(hook.LastEntry().Message, qt.Equals, "touch pipeline stopped")
}

func TestPipelineRunTwice(t *testing.T) {
	c := qt.New(t)
	p, err := New(newFakeDriver(), DefaultOptions(), logrus.New())
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for {
		p.mu.Lock()
		running := p.running
		p.mu.Unlock()
		if running || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	c.Assert(p.Run(ctx), qt.ErrorMatches, "touch pipeline already running")
}

func TestPipelineOverflow(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	p, err := New(d, DefaultOptions(), logrus.New())
	c.Assert(err, qt.IsNil)

	// nothing consumes until Run
	for i := 0; i < 15; i++ {
		d.fire(Push, 9)
	}
	c.Assert(p.Queue().Len(), qt.Equals, DefaultQueueSize)
	c.Assert(p.Dropped(), qt.Equals, uint64(5))
}

func TestPipelineState(t *testing.T) {
	c := qt.New(t)
	d := newFakeDriver()
	p, err := New(d, DefaultOptions(), logrus.New())
	c.Assert(err, qt.IsNil)

	c.Assert(p.poller.poll(), qt.IsNil)
	d.fire(Push, 9)
	d.failReads(errors.New("bus fault"))
	p.poller.poll()

	c.Assert(p.State(), qt.DeepEquals, State{
		Path:        "state",
		Id:          "touchpad",
		Model:       "touchpad",
		Name:        "touchpad",
		Channel:     9,
		Sensitivity: 0.05,
		Output:      OutputRaw,
		Value:       1000,
		Queued:      1,
		Capacity:    10,
		Dropped:     0,
		ReadErrors:  1,
	})
}
