//go:build tinygo

// touchpad-tiny runs the touch pipeline on a microcontroller with an MPR121
// keypad on I2C0.  Wifi and MQTT are set at build time:
//
//	tinygo flash -target pico -ldflags '-X main.ssid=... -X main.pass=... -X main.broker=host:1883' ./cmd/touchpad-tiny
package main

import (
	"context"
	"machine"

	"github.com/merliot/touchpad"
	"github.com/merliot/touchpad/mpr121"
	"github.com/merliot/touchpad/mqtt"
	"github.com/merliot/touchpad/tinynet"
	"github.com/sirupsen/logrus"
)

var (
	ssid   string
	pass   string
	broker string
)

func main() {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	ctx := context.Background()

	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		log.Fatal(err)
	}

	keypad := mpr121.New(machine.I2C0, 0)

	opts := touchpad.DefaultOptions()
	pipeline, err := touchpad.New(keypad, opts, log)
	if err != nil {
		log.Fatal(err)
	}

	if term := newTerminal(); term != nil {
		term.Printf("touch pad %s channel %d", opts.Id, opts.Channel)
		pipeline.AddHandler(term)
	}

	if err := tinynet.NetConnect(ssid, pass); err != nil {
		log.WithError(err).Warn("no network")
	} else if broker != "" {
		client, err := mqtt.Dial(ctx, broker, opts.Id)
		if err != nil {
			log.WithError(err).Warn("no MQTT")
		} else {
			pipeline.AddHandler(mqtt.NewHandler(client, "touchpad", opts.Id, log))
		}
	}

	go keypad.Scan(ctx)

	pipeline.Run(ctx)
}
