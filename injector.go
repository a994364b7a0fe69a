package touchpad

// Injector is the pad's own socket on the bus.  Touch events handed to it by
// the consumer are broadcast to the other sockets.
type Injector struct {
	socket
}

func NewInjector(name string, bus *Bus) *Injector {
	i := &Injector{socket{name, "", 0, bus}}
	bus.attach(i)
	return i
}

// Inject a packet into the bus as if it arrived on a socket
func (i *Injector) Inject(pkt *Packet) {
	pkt.bus, pkt.src = i.bus, i
	i.bus.receive(pkt)
}

// HandleEvent broadcasts evt.  It returns once every socket has taken the
// packet or failed; a failed send is logged and skipped.
func (i *Injector) HandleEvent(evt Event) {
	pkt := &Packet{bus: i.bus, src: i}
	pkt.Marshal(evt.Msg()).Broadcast()
}
