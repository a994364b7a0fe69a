package mpr121

import (
	"tinygo.org/x/drivers"
)

// DefaultAddress is the chip's I2C address with ADDR tied to ground
const DefaultAddress = 0x5A

const (
	regFilteredData = 0x04 // 2 bytes per electrode, 10-bit little endian
	regBaseline     = 0x1E // 1 byte per electrode, upper 8 of 10 bits
)

// readFiltered reads electrode ch's filtered ADC count
func readFiltered(bus drivers.I2C, address, ch uint8) (uint16, error) {
	data := []byte{0, 0}
	if err := bus.Tx(uint16(address), []byte{regFilteredData + 2*ch}, data); err != nil {
		return 0, err
	}
	return (uint16(data[1])<<8 | uint16(data[0])) & 0x3FF, nil
}

// readBaseline reads electrode ch's baseline, scaled to the filtered data's
// 10 bits
func readBaseline(bus drivers.I2C, address, ch uint8) (uint16, error) {
	data := []byte{0}
	if err := bus.Tx(uint16(address), []byte{regBaseline + ch}, data); err != nil {
		return 0, err
	}
	return uint16(data[0]) << 2, nil
}
