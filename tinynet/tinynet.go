//go:build tinygo

// Package tinynet joins the board's wifi network
package tinynet

import (
	"errors"
	"time"
)

var (
	ErrNoSSID  = errors.New("no wifi ssid")
	ErrNoRadio = errors.New("board has no wifi radio")
)

// NetConnect joins ssid.  The ssid and passphrase are usually set at build
// time with -ldflags.
func NetConnect(ssid, pass string) error {
	if ssid == "" {
		return ErrNoSSID
	}
	// wait a bit for serial
	time.Sleep(2 * time.Second)
	return netConnect(ssid, pass)
}
