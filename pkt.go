package touchpad

import (
	"encoding/json"
)

// Packet is sent and received on a bus via a socket.  The message is JSON
// with a Path field naming the packet handler.
type Packet struct {
	bus     *Bus
	src     Socketer
	message []byte
}

// Bytes returns the packet message
func (p *Packet) Bytes() []byte {
	return p.message
}

func (p *Packet) String() string {
	return string(p.message)
}

// Path of the packet message, or "" if the message has none
func (p *Packet) Path() string {
	var msg struct{ Path string }
	if err := json.Unmarshal(p.message, &msg); err != nil {
		return ""
	}
	return msg.Path
}

// Reply sends the packet back to sender
func (p *Packet) Reply() *Packet {
	if p.src == nil {
		return p
	}
	if err := p.src.Send(p); err != nil && p.bus != nil {
		p.bus.log.WithError(err).Warnf("reply to %s", p.src)
	}
	return p
}

// Broadcast the packet to all other matching-tagged sockets on the bus.  The
// source socket is excluded.
func (p *Packet) Broadcast() *Packet {
	if p.bus == nil || p.src == nil {
		return p
	}
	p.bus.broadcast(p)
	return p
}

// Unmarshal the packet message as JSON into v
func (p *Packet) Unmarshal(v any) *Packet {
	if err := json.Unmarshal(p.message, v); err != nil && p.bus != nil {
		p.bus.log.WithError(err).Warn("JSON unmarshal")
	}
	return p
}

// Marshal the packet message as JSON from v
func (p *Packet) Marshal(v any) *Packet {
	var err error
	p.message, err = json.Marshal(v)
	if err != nil && p.bus != nil {
		p.bus.log.WithError(err).Warn("JSON marshal")
	}
	return p
}
