// Package config loads the touchpad configuration: defaults, then a TOML
// file, then TOUCHPAD_* environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/shlex"
	"github.com/google/uuid"
	"github.com/merliot/touchpad"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for a touch pad
type Config struct {
	Pad    PadConfig    `toml:"pad"`
	Server ServerConfig `toml:"server"`
	MQTT   MQTTConfig   `toml:"mqtt"`
	Log    LogConfig    `toml:"log"`
	Sim    SimConfig    `toml:"sim"`
}

type PadConfig struct {
	Id           string        `toml:"id"`
	Model        string        `toml:"model"`
	Name         string        `toml:"name"`
	Channel      int           `toml:"channel"`
	Trigger      float64       `toml:"trigger"`
	Normal       float64       `toml:"normal"`
	QueueSize    int           `toml:"queue_size"`
	PollInterval time.Duration `toml:"poll_interval"`
	Output       string        `toml:"output"`
}

type ServerConfig struct {
	Addr       string `toml:"addr"`
	User       string `toml:"user"`
	Passwd     string `toml:"passwd"`
	TLSHost    string `toml:"tls_host"`
	Dial       string `toml:"dial"`
	MaxSockets int    `toml:"max_sockets"`
}

type MQTTConfig struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type SimConfig struct {
	Script string `toml:"script"`
}

// Defaults is the reference board setup: channel 9, trigger 1050 over a
// 1000 baseline, 10 queue slots, 10ms polls of the raw value.
func Defaults() Config {
	return Config{
		Pad: PadConfig{
			Id:           "touchpad",
			Model:        "touchpad",
			Name:         "touchpad",
			Channel:      touchpad.DefaultChannel,
			Trigger:      touchpad.DefaultTriggerValue,
			Normal:       touchpad.DefaultNormalValue,
			QueueSize:    touchpad.DefaultQueueSize,
			PollInterval: touchpad.DefaultPollInterval,
			Output:       string(touchpad.OutputRaw),
		},
		Server: ServerConfig{
			Addr:       ":8080",
			MaxSockets: 20,
		},
		MQTT: MQTTConfig{
			Topic: "touchpad",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML config file (if it exists) and applies environment
// variable overrides, then flags from TOUCHPAD_ARGS, then args.
//
// Config file resolution: TOUCHPAD_CONFIG env var → ./touchpad.toml → skip.
func Load(args []string) (*Config, error) {
	cfg := Defaults()

	if path := configPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, fmt.Errorf("config file %s: %w", path, err)
			}
		} else if os.Getenv("TOUCHPAD_CONFIG") != "" {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	extra, err := shlex.Split(os.Getenv("TOUCHPAD_ARGS"))
	if err != nil {
		return nil, fmt.Errorf("TOUCHPAD_ARGS: %w", err)
	}
	fs := cfg.FlagSet("touchpad", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(append(extra, args...)); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode reads TOML from r over the defaults.  No env or flags.
func Decode(r io.Reader) (*Config, error) {
	cfg := Defaults()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.fill()
	return &cfg, cfg.Validate()
}

func configPath() string {
	if p := os.Getenv("TOUCHPAD_CONFIG"); p != "" {
		return p
	}
	return "touchpad.toml"
}

// FlagSet returns flags bound to c's fields
func (c *Config) FlagSet(name string, handling flag.ErrorHandling) *flag.FlagSet {
	fs := flag.NewFlagSet(name, handling)
	fs.StringVar(&c.Pad.Id, "id", c.Pad.Id, "pad id")
	fs.StringVar(&c.Pad.Model, "model", c.Pad.Model, "pad model")
	fs.StringVar(&c.Pad.Name, "name", c.Pad.Name, "pad name")
	fs.IntVar(&c.Pad.Channel, "channel", c.Pad.Channel, "touch channel")
	fs.Float64Var(&c.Pad.Trigger, "trigger", c.Pad.Trigger, "touched sensor value")
	fs.Float64Var(&c.Pad.Normal, "normal", c.Pad.Normal, "untouched sensor value")
	fs.IntVar(&c.Pad.QueueSize, "queue", c.Pad.QueueSize, "event queue size")
	fs.DurationVar(&c.Pad.PollInterval, "poll", c.Pad.PollInterval, "sensor poll interval")
	fs.StringVar(&c.Pad.Output, "output", c.Pad.Output, "polled value: raw or filtered")
	fs.StringVar(&c.Server.Addr, "addr", c.Server.Addr, "HTTP listen address, empty to disable")
	fs.StringVar(&c.Server.User, "user", c.Server.User, "basic auth user")
	fs.StringVar(&c.Server.Passwd, "passwd", c.Server.Passwd, "basic auth password")
	fs.StringVar(&c.Server.TLSHost, "tls-host", c.Server.TLSHost, "serve HTTPS for host with autocert")
	fs.StringVar(&c.Server.Dial, "dial", c.Server.Dial, "hub websocket URL to stream events to")
	fs.IntVar(&c.Server.MaxSockets, "max-sockets", c.Server.MaxSockets, "websocket connection limit")
	fs.StringVar(&c.MQTT.Broker, "mqtt", c.MQTT.Broker, "MQTT broker URL, empty to disable")
	fs.StringVar(&c.MQTT.Topic, "mqtt-topic", c.MQTT.Topic, "MQTT topic prefix")
	fs.StringVar(&c.MQTT.ClientID, "mqtt-client-id", c.MQTT.ClientID, "MQTT client id")
	fs.StringVar(&c.Log.Level, "log", c.Log.Level, "log level: debug, info, warn or error")
	fs.StringVar(&c.Sim.Script, "script", c.Sim.Script, "simulated touch script, - for stdin")
	return fs
}

func (c *Config) fill() {
	if c.MQTT.Broker != "" && c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "touchpad-" + uuid.NewString()
	}
	c.Pad.Output = strings.ToLower(c.Pad.Output)
	c.Log.Level = strings.ToLower(c.Log.Level)
}

// Options for the touch pipeline
func (c *Config) Options() touchpad.Options {
	return touchpad.Options{
		Id:           c.Pad.Id,
		Model:        c.Pad.Model,
		Name:         c.Pad.Name,
		Channel:      c.Pad.Channel,
		Sensitivity:  touchpad.Sensitivity(c.Pad.Trigger, c.Pad.Normal),
		QueueSize:    c.Pad.QueueSize,
		PollInterval: c.Pad.PollInterval,
		Output:       touchpad.Output(c.Pad.Output),
	}
}

// Validate checks that the pad can be created from c
func (c *Config) Validate() error {
	if c.Pad.Normal <= 0 {
		return fmt.Errorf("normal value %g must be positive", c.Pad.Normal)
	}
	if c.Pad.Trigger <= c.Pad.Normal {
		return fmt.Errorf("trigger value %g must be above normal value %g",
			c.Pad.Trigger, c.Pad.Normal)
	}
	if c.Pad.QueueSize < 1 {
		return fmt.Errorf("queue size %d must be at least 1", c.Pad.QueueSize)
	}
	if c.Pad.PollInterval <= 0 {
		return fmt.Errorf("poll interval %s must be positive", c.Pad.PollInterval)
	}
	if err := c.Options().Validate(); err != nil {
		return err
	}
	if c.Server.MaxSockets < 1 {
		return fmt.Errorf("max sockets %d must be at least 1", c.Server.MaxSockets)
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return errors.New("mqtt topic is empty")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Logger returns a text logger at the configured level
func (c *Config) Logger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
		log.WithField("configured_level", c.Log.Level).Warn("invalid log level, using info")
	}
	log.SetLevel(level)
	return log
}
