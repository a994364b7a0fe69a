//go:build wioterminal

package main

import (
	"machine"

	"github.com/merliot/touchpad/display"
	"tinygo.org/x/drivers/ili9341"
)

func newTerminal() *display.Terminal {
	machine.SPI3.Configure(machine.SPIConfig{
		SCK:       machine.LCD_SCK_PIN,
		SDO:       machine.LCD_SDO_PIN,
		SDI:       machine.LCD_SDI_PIN,
		Frequency: 40000000,
	})

	backlight := machine.LCD_BACKLIGHT
	backlight.Configure(machine.PinConfig{Mode: machine.PinOutput})

	lcd := ili9341.NewSPI(machine.SPI3, machine.LCD_DC, machine.LCD_SS_PIN, machine.LCD_RESET)
	lcd.Configure(ili9341.Config{})
	lcd.SetRotation(ili9341.Rotation270)
	backlight.High()

	return display.New(lcd)
}
