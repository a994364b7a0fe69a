// touchpad runs the touch pipeline on a simulated pad, serving events over
// HTTP/websocket and optionally publishing them to MQTT.  The pad is driven
// by a script (see sim.RunScript), from a file or stdin.
//
//	echo "tap 9 200ms" | touchpad -script - -log debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merliot/touchpad"
	"github.com/merliot/touchpad/config"
	"github.com/merliot/touchpad/mqtt"
	"github.com/merliot/touchpad/sim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		defaults := config.Defaults()
		fs := defaults.FlagSet("touchpad", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.PrintDefaults()
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "touchpad:", err)
		os.Exit(2)
	}

	log := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	driver := sim.New()

	pipeline, err := touchpad.New(driver, cfg.Options(), log)
	if err != nil {
		return err
	}

	if cfg.MQTT.Broker != "" {
		dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mqtt.Dial(dctx, cfg.MQTT.Broker, cfg.MQTT.ClientID)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		handler := mqtt.NewHandler(client, cfg.MQTT.Topic, cfg.Pad.Id, log)
		pipeline.AddHandler(handler)
		log.Infof("publishing touch events to %s on %s", handler.Topic(), cfg.MQTT.Broker)
	}

	var server *touchpad.Server
	if cfg.Server.Addr != "" || cfg.Server.Dial != "" {
		server = touchpad.NewServer(pipeline, log)
		server.BasicAuth(cfg.Server.User, cfg.Server.Passwd)
		if !server.MaxSockets(cfg.Server.MaxSockets) {
			log.Warnf("max sockets %d not set", cfg.Server.MaxSockets)
		}
		server.Addr = cfg.Server.Addr
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return pipeline.Run(ctx) })

	if server != nil && cfg.Server.Addr != "" {
		if cfg.Server.TLSHost != "" {
			g.Go(func() error {
				go func() {
					<-ctx.Done()
					server.Shutdown(context.Background())
				}()
				return ignoreClosed(server.ServeTLS(cfg.Server.TLSHost))
			})
		} else {
			g.Go(func() error { return server.Run(ctx) })
		}
		log.Infof("serving touch pad on %s", serving(cfg))
	}

	if server != nil && cfg.Server.Dial != "" {
		g.Go(func() error {
			return server.Dial(ctx, cfg.Server.User, cfg.Server.Passwd, cfg.Server.Dial)
		})
	}

	if cfg.Sim.Script != "" {
		g.Go(func() error {
			return runScript(ctx, driver, cfg.Sim.Script, log)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runScript(ctx context.Context, driver *sim.Driver, path string, log logrus.FieldLogger) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := driver.RunScript(ctx, r); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("script %s: %w", path, err)
	}
	log.Infof("script %s done", path)
	return nil
}

// serving is where the server listens.  autocert always listens on :443.
func serving(cfg *config.Config) string {
	if cfg.Server.TLSHost != "" {
		return "https://" + cfg.Server.TLSHost + ":443"
	}
	return cfg.Server.Addr
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
