package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of the named variable, or defaultValue if unset
func GetEnv(name string, defaultValue string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	return value
}

func applyEnv(cfg *Config) error {
	cfg.Pad.Id = GetEnv("TOUCHPAD_ID", cfg.Pad.Id)
	cfg.Pad.Model = GetEnv("TOUCHPAD_MODEL", cfg.Pad.Model)
	cfg.Pad.Name = GetEnv("TOUCHPAD_NAME", cfg.Pad.Name)
	cfg.Pad.Output = GetEnv("TOUCHPAD_OUTPUT", cfg.Pad.Output)

	cfg.Server.Addr = GetEnv("TOUCHPAD_ADDR", cfg.Server.Addr)
	cfg.Server.User = GetEnv("TOUCHPAD_USER", cfg.Server.User)
	cfg.Server.Passwd = GetEnv("TOUCHPAD_PASSWD", cfg.Server.Passwd)
	cfg.Server.TLSHost = GetEnv("TOUCHPAD_TLS_HOST", cfg.Server.TLSHost)
	cfg.Server.Dial = GetEnv("TOUCHPAD_DIAL", cfg.Server.Dial)

	cfg.MQTT.Broker = GetEnv("TOUCHPAD_MQTT_BROKER", cfg.MQTT.Broker)
	cfg.MQTT.Topic = GetEnv("TOUCHPAD_MQTT_TOPIC", cfg.MQTT.Topic)
	cfg.MQTT.ClientID = GetEnv("TOUCHPAD_MQTT_CLIENT_ID", cfg.MQTT.ClientID)

	cfg.Log.Level = GetEnv("TOUCHPAD_LOG_LEVEL", cfg.Log.Level)
	cfg.Sim.Script = GetEnv("TOUCHPAD_SCRIPT", cfg.Sim.Script)

	ints := []struct {
		name string
		dst  *int
	}{
		{"TOUCHPAD_CHANNEL", &cfg.Pad.Channel},
		{"TOUCHPAD_QUEUE_SIZE", &cfg.Pad.QueueSize},
		{"TOUCHPAD_MAX_SOCKETS", &cfg.Server.MaxSockets},
	}
	for _, v := range ints {
		if s, ok := os.LookupEnv(v.name); ok {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("%s: %w", v.name, err)
			}
			*v.dst = n
		}
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"TOUCHPAD_TRIGGER", &cfg.Pad.Trigger},
		{"TOUCHPAD_NORMAL", &cfg.Pad.Normal},
	}
	for _, v := range floats {
		if s, ok := os.LookupEnv(v.name); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", v.name, err)
			}
			*v.dst = f
		}
	}

	if s, ok := os.LookupEnv("TOUCHPAD_POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("TOUCHPAD_POLL_INTERVAL: %w", err)
		}
		cfg.Pad.PollInterval = d
	}

	return nil
}
