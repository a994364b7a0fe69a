package touchpad

// Socketer is one end attached to the bus: a websocket client, a hub
// connection, or the pad's own injector.
type Socketer interface {
	// Close the socket
	Close()
	// Send the pkt on the socket
	Send(*Packet) error
	// Name of socket
	String() string
	// Tag returns the socket tag.  Events are only broadcast between
	// sockets with the same tag.
	Tag() string
	SetTag(string)
	SetFlag(uint32)
	TestFlag(uint32) bool
}

const (
	// SocketFlagBcast marks a socket that wants touch events.  Sockets
	// without it only get replies.
	SocketFlagBcast uint32 = 1 << iota
	// SocketFlagState marks a socket that is sent the pad state when it
	// is plugged in.
	SocketFlagState
)

// socket is the common part of every Socketer
type socket struct {
	name  string
	tag   string
	flags uint32
	bus   *Bus
}

func (s *socket) Close()                    {}
func (s *socket) Send(*Packet) error        { return nil }
func (s *socket) String() string            { return s.name }
func (s *socket) Tag() string               { return s.tag }
func (s *socket) SetTag(tag string)         { s.tag = tag }
func (s *socket) SetFlag(flag uint32)       { s.flags |= flag }
func (s *socket) TestFlag(flag uint32) bool { return s.flags&flag != 0 }
