package touchpad

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/net/websocket"
)

// webSocket wraps a websocket.Conn and implements the Socketer interface
type webSocket struct {
	socket
	mu            mutex
	url           *url.URL
	conn          *websocket.Conn
	closing       atomic.Bool
	pingPeriod    time.Duration
	pingSent      time.Time
	pongReceived  bool
	writeDeadline time.Duration
}

const (
	pingPeriodMin        = time.Second
	defaultWriteDeadline = time.Second
)

var pingMsg = []byte("ping")
var pongMsg = []byte("pong")

func newWebSocket(url *url.URL, remoteAddr string, bus *Bus) *webSocket {
	w := &webSocket{writeDeadline: defaultWriteDeadline}

	var name string
	if remoteAddr == "" {
		name = "ws:localhost::" + url.String()
	} else {
		name = "ws:" + url.String() + "::" + remoteAddr
	}

	w.socket = socket{name, "", 0, bus}
	w.url = url

	/* param ping-period */
	period, _ := strconv.Atoi(url.Query().Get("ping-period"))
	w.pingPeriod = time.Duration(period) * time.Second
	if w.pingPeriod < pingPeriodMin {
		w.pingPeriod = pingPeriodMin
	}

	return w
}

func (w *webSocket) Close() {
	w.closing.Store(true)
}

func (w *webSocket) Send(pkt *Packet) error {
	return w.send(pkt.message)
}

func (w *webSocket) send(message []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return errors.New("send on nil connection")
	}
	w.conn.SetWriteDeadline(time.Now().Add(w.writeDeadline))
	return websocket.Message.Send(w.conn, string(message))
}

func (w *webSocket) newConfig(user, passwd string) (*websocket.Config, error) {
	url := w.url.String()
	origin := "http://localhost/"

	config, err := websocket.NewConfig(url, origin)
	if err != nil {
		return nil, err
	}

	if user != "" {
		// Set the basic auth header for the request
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(user, passwd)
		config.Header = req.Header
	}

	return config, nil
}

func (w *webSocket) connect(conn *websocket.Conn) {
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	w.bus.plugin(w)
}

func (w *webSocket) disconnect() {
	w.bus.unplug(w)
	w.mu.Lock()
	w.conn = nil
	w.mu.Unlock()
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// serve is the websocket.Handler for a client connected to the server
func (w *webSocket) serve(conn *websocket.Conn) {
	w.connect(conn)
	w.serveServer(conn)
	w.disconnect()
}

func (w *webSocket) serveServer(conn *websocket.Conn) {
	log := w.bus.log.WithField("socket", w.String())

	pingCheck := w.pingPeriod + (4 * time.Second)
	lastRecv := time.Now()

	for {
		var pkt = &Packet{bus: w.bus, src: w}

		if w.closing.Load() {
			log.Info("closing")
			return
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		err := websocket.Message.Receive(conn, &pkt.message)
		if err == nil {
			lastRecv = time.Now()
			if bytes.Equal(pkt.message, pingMsg) {
				// Received ping, send pong
				if err := w.send(pongMsg); err != nil {
					log.WithError(err).Warn("error sending pong, disconnecting")
					return
				}
			} else {
				w.bus.receive(pkt)
			}
			continue
		}

		if isTimeout(err) {
			if time.Since(lastRecv) > pingCheck {
				log.Warnf("timeout after %s, disconnecting", time.Since(lastRecv))
				return
			}
			continue
		}

		log.WithError(err).Info("disconnecting")
		return
	}
}

func (w *webSocket) ping() error {
	w.pongReceived = false
	w.pingSent = time.Now()
	return w.send(pingMsg)
}

// announced sends the announcement and waits for any reply as its ack
func (w *webSocket) announced(conn *websocket.Conn, announce *Packet) bool {
	var pkt = &Packet{bus: w.bus, src: w}

	if err := w.Send(announce); err != nil {
		w.bus.log.WithError(err).Warn("error sending announcement")
		return false
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if err := websocket.Message.Receive(conn, &pkt.message); err != nil {
		return false
	}
	w.bus.receive(pkt)
	return true
}

// Dial the url until ctx is done, serving the connection each time it is
// made.  announce is sent first on every connection.
func (w *webSocket) Dial(ctx context.Context, user, passwd string, announce func() *Packet) error {
	cfg, err := w.newConfig(user, passwd)
	if err != nil {
		return fmt.Errorf("configuring websocket %s: %w", w, err)
	}

	for {
		conn, err := websocket.DialConfig(cfg)
		if err == nil {
			w.connect(conn)
			if w.announced(conn, announce()) {
				w.serveClient(ctx, conn)
			}
			w.disconnect()
			conn.Close()
		} else {
			w.bus.log.WithError(err).Warnf("dial %s", w)
		}

		// try again in a second
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (w *webSocket) serveClient(ctx context.Context, conn *websocket.Conn) {
	log := w.bus.log.WithField("socket", w.String())

	if err := w.ping(); err != nil {
		return
	}

	for {
		var pkt = &Packet{bus: w.bus, src: w}

		if w.closing.Load() || ctx.Err() != nil {
			log.Info("closing")
			return
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		err := websocket.Message.Receive(conn, &pkt.message)
		if err == nil {
			if bytes.Equal(pkt.message, pongMsg) {
				w.pongReceived = true
			} else {
				w.bus.receive(pkt)
			}
		} else if !isTimeout(err) {
			log.WithError(err).Info("disconnecting")
			return
		}

		if time.Now().After(w.pingSent.Add(w.pingPeriod)) {
			if !w.pongReceived {
				log.Warn("no pong; disconnecting")
				return
			}
			if err := w.ping(); err != nil {
				return
			}
		}
	}
}
