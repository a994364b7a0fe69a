//go:build !tinygo

package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = time.Second

// Client publishes with QoS 0 through a paho client
type Client struct {
	client paho.Client
}

// Dial connects to broker (tcp://host:1883) as clientID.  The client
// reconnects on its own after the first connect.
func Dial(ctx context.Context, broker, clientID string) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	c := paho.NewClient(opts)
	tok := c.Connect()

	select {
	case <-tok.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return &Client{client: c}, nil
}

func (c *Client) Publish(topic string, payload []byte) error {
	tok := c.client.Publish(topic, 0, false, payload)
	if !tok.WaitTimeout(publishTimeout) {
		return errors.New("publish timeout")
	}
	return tok.Error()
}

func (c *Client) Close() {
	c.client.Disconnect(250)
}
