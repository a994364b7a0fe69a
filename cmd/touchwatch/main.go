// touchwatch connects to a touch pad's websocket and logs its events
//
//	touchwatch -url ws://localhost:8080/ws -user user -passwd passwd
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/merliot/touchpad"
	"github.com/sirupsen/logrus"
)

const pingPeriod = 2 * time.Second

func main() {
	url := flag.String("url", "ws://localhost:8080/ws?state=1", "touch pad websocket URL")
	user := flag.String("user", "", "basic auth user")
	passwd := flag.String("passwd", "", "basic auth password")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := watch(ctx, *url, *user, *passwd, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func watch(ctx context.Context, url, user, passwd string, log logrus.FieldLogger) error {
	header := http.Header{}
	if user != "" {
		req, _ := http.NewRequest("GET", url, nil)
		req.SetBasicAuth(user, passwd)
		header = req.Header
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Infof("connected to %s", url)

	// The pad drops connections that go quiet, so keep pinging
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		show(data, log)
	}
}

func show(data []byte, log logrus.FieldLogger) {
	var msg struct{ Path string }
	if err := json.Unmarshal(data, &msg); err != nil {
		// ping replies
		return
	}

	switch msg.Path {
	case "event":
		var evt touchpad.EventMsg
		if err := json.Unmarshal(data, &evt); err != nil {
			log.WithError(err).Warn("bad event")
			return
		}
		switch evt.Kind {
		case touchpad.Push:
			log.Infof("push touch pad num %d", evt.Channel)
		case touchpad.Release:
			log.Warnf("release touch pad num %d", evt.Channel)
		}
	case "state":
		var state touchpad.State
		json.Unmarshal(data, &state)
		log.WithFields(logrus.Fields{
			"id":      state.Id,
			"channel": state.Channel,
			"value":   state.Value,
			"dropped": state.Dropped,
		}).Info("state")
	}
}
