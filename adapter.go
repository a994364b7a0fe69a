package touchpad

// Adapter turns driver callbacks into events on a Queue.  It is the only
// producer on the queue.  It must not log, block or do I/O: it runs in the
// driver's callback context.
type Adapter struct {
	queue  *Queue
	driver Driver
}

// NewAdapter returns an adapter sending to q and resolving handles with d
func NewAdapter(q *Queue, d Driver) *Adapter {
	return &Adapter{queue: q, driver: d}
}

// OnPush enqueues a Push event.  Dropped if the queue is full.
func (a *Adapter) OnPush(channel int) {
	a.queue.TrySend(PushEvent(channel))
}

// OnRelease enqueues a Release event.  Dropped if the queue is full.
func (a *Adapter) OnRelease(channel int) {
	a.queue.TrySend(ReleaseEvent(channel))
}

// Callback returns the driver callback for kind
func (a *Adapter) Callback(kind Kind) Callback {
	switch kind {
	case Push:
		return func(h Handle) { a.OnPush(a.driver.ChannelIndex(h)) }
	case Release:
		return func(h Handle) { a.OnRelease(a.driver.ChannelIndex(h)) }
	}
	return func(Handle) {}
}
