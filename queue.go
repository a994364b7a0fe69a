package touchpad

import (
	"context"
	"sync/atomic"
)

// DefaultQueueSize is the number of events the queue holds before dropping
const DefaultQueueSize = 10

// Queue is a bounded FIFO of touch events shared by one producer (the driver
// callback context) and one consumer.  Sending never blocks; an event sent to
// a full queue is dropped and counted.
type Queue struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewQueue returns a queue holding size events.  A size less than one gets
// DefaultQueueSize.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

// TrySend enqueues evt without waiting.  Returns false if the queue was full
// and the event was dropped.
func (q *Queue) TrySend(evt Event) bool {
	select {
	case q.ch <- evt:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Receive blocks until an event is available or ctx is done.  When ctx is
// done, ctx.Err() is returned.
func (q *Queue) Receive(ctx context.Context) (Event, error) {
	select {
	case evt := <-q.ch:
		return evt, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Len is the number of events waiting
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap is the queue capacity
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Dropped is the number of events dropped on a full queue
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
