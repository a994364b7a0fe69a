package touchpad

import (
	"github.com/sirupsen/logrus"
)

var defaultMaxSockets = 20

// Bus carries packets between the pad and its sockets.  Touch events are
// broadcast to every broadcast-ready socket; packets arriving on a socket
// are dispatched by their Path to the bus handlers.  A socket has a tag, and
// the bus segregates the sockets by tag.  Think of a tag as a VLAN.  The
// empty tag "" is the default tag on the bus.
type Bus struct {
	name       string
	log        logrus.FieldLogger
	socketsMu  rwMutex
	sockets    map[Socketer]bool
	socketQ    chan bool
	plugged    bool
	handlersMu rwMutex
	handlers   map[string]func(*Packet)
	connect    func(Socketer)
	disconnect func(Socketer)
}

// NewBus returns a new bus with connect and disconnect callbacks
func NewBus(name string, log logrus.FieldLogger, connect, disconnect func(Socketer)) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if connect == nil {
		connect = func(Socketer) { /* don't notify */ }
	}
	if disconnect == nil {
		disconnect = func(Socketer) { /* don't notify */ }
	}
	return &Bus{
		name:       name,
		log:        log.WithField("bus", name),
		sockets:    make(map[Socketer]bool),
		socketQ:    make(chan bool, defaultMaxSockets),
		handlers:   make(map[string]func(*Packet)),
		connect:    connect,
		disconnect: disconnect,
	}
}

// Handle sets the packet handler for a packet path
func (b *Bus) Handle(path string, handler func(*Packet)) bool {
	if handler == nil {
		panic("handler is nil")
	}
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	if _, ok := b.handlers[path]; !ok {
		b.handlers[path] = handler
		return true
	}
	return false
}

// Unhandle removes the packet handler for the packet path
func (b *Bus) Unhandle(path string) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	delete(b.handlers, path)
}

func (b *Bus) Name() string {
	return b.name
}

// MaxSockets sets the maximum number of socket connections that can be made to
// the bus.  Any socket connection attempts past the maximum will block until
// other sockets drop.  The limit is fixed once the first socket is plugged
// in; later calls return false.  The injector is not counted.
func (b *Bus) MaxSockets(maxSockets int) bool {
	if maxSockets < 1 {
		return false
	}
	b.socketsMu.Lock()
	defer b.socketsMu.Unlock()
	if b.plugged {
		return false
	}
	b.socketQ = make(chan bool, maxSockets)
	return true
}

// Sockets is the number of sockets plugged into the bus
func (b *Bus) Sockets() int {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	return len(b.sockets)
}

// plugin the socket to the bus, blocking while all socketQ slots are taken
func (b *Bus) plugin(s Socketer) {
	b.log.Debugf("plugin %s", s)

	b.socketsMu.Lock()
	b.plugged = true
	socketQ := b.socketQ
	b.socketsMu.Unlock()

	// block here when socketQ is full
	socketQ <- true

	b.socketsMu.Lock()
	b.sockets[s] = true
	b.socketsMu.Unlock()

	// call connect callback
	b.connect(s)
}

// attach plugs in the socket without taking a socketQ slot.  In sockets,
// true marks a socket holding a slot.
func (b *Bus) attach(s Socketer) {
	b.log.Debugf("attach %s", s)

	b.socketsMu.Lock()
	b.sockets[s] = false
	b.socketsMu.Unlock()

	b.connect(s)
}

// unplug the socket from the bus
func (b *Bus) unplug(s Socketer) {
	b.log.Debugf("unplug %s", s)

	b.socketsMu.Lock()
	slotted, ok := b.sockets[s]
	if !ok {
		b.socketsMu.Unlock()
		return
	}
	delete(b.sockets, s)
	socketQ := b.socketQ
	b.socketsMu.Unlock()

	// call disconnect callback
	b.disconnect(s)

	// release one from the socketQ
	if slotted {
		<-socketQ
	}
}

// broadcast packet to all sockets with matching tag, skipping the source
// socket src
func (b *Bus) broadcast(pkt *Packet) {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	for sock := range b.sockets {
		if pkt.src != sock &&
			pkt.src.Tag() == sock.Tag() &&
			sock.TestFlag(SocketFlagBcast) {
			if err := sock.Send(pkt); err != nil {
				b.log.WithError(err).Warnf("broadcast to %s", sock)
			}
		}
	}
}

// receive will call the packet handler for the packet path
func (b *Bus) receive(pkt *Packet) {
	b.log.Debugf("recv %s", pkt)
	path := pkt.Path()
	b.handlersMu.RLock()
	handler, ok := b.handlers[path]
	b.handlersMu.RUnlock()
	if ok {
		handler(pkt)
	}
}
