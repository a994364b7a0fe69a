//go:build tinygo

package mqtt

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	mqtt "github.com/soypat/natiu-mqtt"
)

// Client publishes with QoS 0 through a natiu-mqtt client over TCP
type Client struct {
	client *mqtt.Client
	conn   net.Conn
	flags  mqtt.PacketFlags
}

// Dial connects to broker (tcp://host:1883 or host:1883) as clientID
func Dial(ctx context.Context, broker, clientID string) (*Client, error) {
	addr := strings.TrimPrefix(broker, "tcp://")

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("mqtt dial %s: %w", addr, err)
	}

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 256)},
		OnPub: func(_ mqtt.Header, _ mqtt.VariablesPublish, r io.Reader) error {
			// nothing is subscribed
			return nil
		},
	})

	var varConn mqtt.VariablesConnect
	varConn.SetDefaultMQTT([]byte(clientID))
	if err := client.Connect(ctx, conn, &varConn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mqtt connect %s: %w", addr, err)
	}

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Client{client: client, conn: conn, flags: flags}, nil
}

func (c *Client) Publish(topic string, payload []byte) error {
	vp := mqtt.VariablesPublish{TopicName: []byte(topic)}
	return c.client.PublishPayload(c.flags, vp, payload)
}

func (c *Client) Close() {
	c.conn.Close()
}
