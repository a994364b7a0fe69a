//go:build pico

package tinynet

import (
	"github.com/soypat/cyw43439"
	"tinygo.org/x/drivers/netlink"
)

func netConnect(ssid, pass string) error {
	spi, cs, wlreg, irq := cyw43439.PicoWSpi(0)
	var link netlink.Netlinker = cyw43439.NewDevice(spi, cs, wlreg, irq, irq)

	return link.NetConnect(&netlink.ConnectParams{
		Ssid:       ssid,
		Passphrase: pass,
	})
}
