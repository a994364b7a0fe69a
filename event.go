package touchpad

import (
	"fmt"
)

// Kind is the touch transition reported by a driver
type Kind uint8

const (
	// Push is contact made on a channel
	Push Kind = iota + 1
	// Release is contact broken on a channel
	Release
)

func (k Kind) String() string {
	switch k {
	case Push:
		return "push"
	case Release:
		return "release"
	}
	return "unknown"
}

// MarshalText encodes the kind as "push" or "release"
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Push, Release:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid touch event kind %d", uint8(k))
}

// UnmarshalText decodes "push" or "release"
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "push":
		*k = Push
	case "release":
		*k = Release
	default:
		return fmt.Errorf("invalid touch event kind %q", text)
	}
	return nil
}

// Event is one push or release transition on a channel.  Events are small
// values and are copied into the queue.
type Event struct {
	Kind    Kind
	Channel int
}

// PushEvent returns a Push event for channel
func PushEvent(channel int) Event {
	return Event{Kind: Push, Channel: channel}
}

// ReleaseEvent returns a Release event for channel
func ReleaseEvent(channel int) Event {
	return Event{Kind: Release, Channel: channel}
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Kind, e.Channel)
}

// EventMsg is the JSON form of an Event on the bus and on MQTT
type EventMsg struct {
	Path    string
	Kind    Kind
	Channel int
}

// Msg wraps the event for the wire
func (e Event) Msg() EventMsg {
	return EventMsg{Path: "event", Kind: e.Kind, Channel: e.Channel}
}

// Event unwraps the wire form
func (m EventMsg) Event() Event {
	return Event{Kind: m.Kind, Channel: m.Channel}
}
