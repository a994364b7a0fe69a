package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/merliot/touchpad"
	"github.com/sirupsen/logrus"
)

// isolate runs Load away from any touchpad.toml or TOUCHPAD_* variables
func isolate(c *qt.C) {
	dir := c.TempDir()
	cwd, err := os.Getwd()
	c.Assert(err, qt.IsNil)
	c.Assert(os.Chdir(dir), qt.IsNil)
	c.Cleanup(func() { os.Chdir(cwd) })
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "TOUCHPAD_") {
			c.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	c := qt.New(t)
	isolate(c)

	cfg, err := Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(*cfg, qt.DeepEquals, Defaults())

	opts := cfg.Options()
	c.Assert(opts, qt.DeepEquals, touchpad.DefaultOptions())
}

func TestDecode(t *testing.T) {
	c := qt.New(t)
	cfg, err := Decode(strings.NewReader(`
[pad]
id = "kitchen"
channel = 4
trigger = 1100.0
poll_interval = "20ms"
output = "FILTERED"

[server]
addr = ":9090"
user = "admin"

[mqtt]
broker = "tcp://localhost:1883"

[log]
level = "DEBUG"
`))
	c.Assert(err, qt.IsNil)

	c.Assert(cfg.Pad.Id, qt.Equals, "kitchen")
	c.Assert(cfg.Pad.Model, qt.Equals, "touchpad")
	c.Assert(cfg.Pad.Channel, qt.Equals, 4)
	c.Assert(cfg.Pad.PollInterval, qt.Equals, 20*time.Millisecond)
	c.Assert(cfg.Pad.Output, qt.Equals, "filtered")
	c.Assert(cfg.Server.Addr, qt.Equals, ":9090")
	c.Assert(cfg.Server.User, qt.Equals, "admin")
	c.Assert(cfg.Log.Level, qt.Equals, "debug")
	c.Assert(cfg.Options().Sensitivity, qt.Equals, 0.1)

	// broker without client id gets a generated one
	c.Assert(cfg.MQTT.ClientID, qt.Matches, `touchpad-[0-9a-f-]{36}`)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		err  string
	}{
		{"syntax", `[pad`, "toml: .*"},
		{"trigger", "[pad]\ntrigger = 900.0", "trigger value 900 must be above normal value 1000"},
		{"normal", "[pad]\nnormal = 0.0", "normal value 0 must be positive"},
		{"queue", "[pad]\nqueue_size = 0", "queue size 0 must be at least 1"},
		{"poll", "[pad]\npoll_interval = \"0s\"", "poll interval 0s must be positive"},
		{"id", "[pad]\nid = \"my pad\"", "something invalid: .*"},
		{"output", "[pad]\noutput = \"both\"", `invalid output "both"`},
		{"sockets", "[server]\nmax_sockets = 0", "max sockets 0 must be at least 1"},
		{"topic", "[mqtt]\nbroker = \"tcp://b:1883\"\ntopic = \"\"", "mqtt topic is empty"},
		{"level", "[log]\nlevel = \"loud\"", `not a valid logrus Level: "loud"`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			_, err := Decode(strings.NewReader(test.toml))
			c.Assert(err, qt.ErrorMatches, test.err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	c := qt.New(t)
	isolate(c)

	path := filepath.Join(c.TempDir(), "pad.toml")
	c.Assert(os.WriteFile(path, []byte("[pad]\nname = \"hall\"\n"), 0644), qt.IsNil)
	c.Setenv("TOUCHPAD_CONFIG", path)

	cfg, err := Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Pad.Name, qt.Equals, "hall")
}

func TestLoadMissingFile(t *testing.T) {
	c := qt.New(t)
	isolate(c)
	c.Setenv("TOUCHPAD_CONFIG", filepath.Join(c.TempDir(), "nope.toml"))

	_, err := Load(nil)
	c.Assert(err, qt.ErrorMatches, "config file: .*")
}

func TestLoadLocalFile(t *testing.T) {
	c := qt.New(t)
	isolate(c)
	c.Assert(os.WriteFile("touchpad.toml", []byte("[server]\naddr = \":7070\"\n"), 0644), qt.IsNil)

	cfg, err := Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Server.Addr, qt.Equals, ":7070")
}

func TestLoadEnv(t *testing.T) {
	c := qt.New(t)
	isolate(c)
	c.Setenv("TOUCHPAD_ID", "porch")
	c.Setenv("TOUCHPAD_CHANNEL", "2")
	c.Setenv("TOUCHPAD_TRIGGER", "1200")
	c.Setenv("TOUCHPAD_POLL_INTERVAL", "50ms")
	c.Setenv("TOUCHPAD_MQTT_BROKER", "tcp://broker:1883")
	c.Setenv("TOUCHPAD_MQTT_CLIENT_ID", "porch-pad")

	cfg, err := Load(nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Pad.Id, qt.Equals, "porch")
	c.Assert(cfg.Pad.Channel, qt.Equals, 2)
	c.Assert(cfg.Pad.Trigger, qt.Equals, 1200.0)
	c.Assert(cfg.Pad.PollInterval, qt.Equals, 50*time.Millisecond)
	c.Assert(cfg.MQTT.Broker, qt.Equals, "tcp://broker:1883")
	c.Assert(cfg.MQTT.ClientID, qt.Equals, "porch-pad")
}

func TestLoadEnvInvalid(t *testing.T) {
	for _, name := range []string{
		"TOUCHPAD_CHANNEL", "TOUCHPAD_QUEUE_SIZE", "TOUCHPAD_MAX_SOCKETS",
		"TOUCHPAD_TRIGGER", "TOUCHPAD_NORMAL", "TOUCHPAD_POLL_INTERVAL",
	} {
		t.Run(name, func(t *testing.T) {
			c := qt.New(t)
			isolate(c)
			c.Setenv(name, "lots")
			_, err := Load(nil)
			c.Assert(err, qt.ErrorMatches, name+": .*")
		})
	}
}

func TestLoadFlags(t *testing.T) {
	c := qt.New(t)
	isolate(c)
	c.Setenv("TOUCHPAD_ID", "env")
	c.Setenv("TOUCHPAD_ARGS", `-name "front door" -queue 4`)

	_, err := Load(nil)
	c.Assert(err, qt.ErrorMatches, "something invalid: .*")

	c.Setenv("TOUCHPAD_ARGS", `-name front_door -queue 4`)
	cfg, err := Load([]string{"-id", "flag", "-log", "warn"})
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Pad.Id, qt.Equals, "flag")
	c.Assert(cfg.Pad.Name, qt.Equals, "front_door")
	c.Assert(cfg.Pad.QueueSize, qt.Equals, 4)
	c.Assert(cfg.Log.Level, qt.Equals, "warn")
}

func TestLoadBadFlags(t *testing.T) {
	c := qt.New(t)
	isolate(c)

	_, err := Load([]string{"-bogus"})
	c.Assert(err, qt.ErrorMatches, "flags: .*")

	_, err = Load([]string{"-h"})
	c.Assert(err, qt.ErrorIs, flag.ErrHelp)

	c.Setenv("TOUCHPAD_ARGS", `-name "unterminated`)
	_, err = Load(nil)
	c.Assert(err, qt.ErrorMatches, "TOUCHPAD_ARGS: .*")
}

func TestGetEnv(t *testing.T) {
	c := qt.New(t)
	c.Setenv("TOUCHPAD_TEST_VAR", "")
	c.Assert(GetEnv("TOUCHPAD_TEST_VAR", "dflt"), qt.Equals, "")
	os.Unsetenv("TOUCHPAD_TEST_VAR")
	c.Assert(GetEnv("TOUCHPAD_TEST_VAR", "dflt"), qt.Equals, "dflt")
}

func TestLogger(t *testing.T) {
	c := qt.New(t)
	cfg := Defaults()
	cfg.Log.Level = "debug"
	var out strings.Builder
	log := cfg.Logger(&out)
	c.Assert(log.GetLevel(), qt.Equals, logrus.DebugLevel)

	log.Debug("hello")
	c.Assert(out.String(), qt.Contains, "msg=hello")
}
