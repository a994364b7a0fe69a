// Package mqtt publishes touch events to an MQTT broker.  Host builds use
// the paho client; TinyGo builds use natiu-mqtt.
package mqtt

import (
	"encoding/json"

	"github.com/merliot/touchpad"
	"github.com/sirupsen/logrus"
)

// Publisher sends a payload to a topic
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Handler publishes each touch event as JSON to <prefix>/<id>/event.  It is a
// touchpad.Handler.  Publish failures are logged and the event is dropped.
type Handler struct {
	pub   Publisher
	topic string
	log   logrus.FieldLogger
}

// NewHandler returns a handler for pad id publishing on pub
func NewHandler(pub Publisher, prefix, id string, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	topic := prefix + "/" + id + "/event"
	return &Handler{
		pub:   pub,
		topic: topic,
		log:   log.WithField("topic", topic),
	}
}

// Topic events are published to
func (h *Handler) Topic() string {
	return h.topic
}

func (h *Handler) HandleEvent(evt touchpad.Event) {
	payload, err := json.Marshal(evt.Msg())
	if err != nil {
		h.log.WithError(err).Warn("JSON marshal")
		return
	}
	if err := h.pub.Publish(h.topic, payload); err != nil {
		h.log.WithError(err).Warnf("publish %s", evt)
	}
}
