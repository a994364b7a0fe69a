package mpr121

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

// fakeBus is an MPR121 register file
type fakeBus struct {
	regs    [0x80]byte
	address uint8
	err     error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	b.address = uint8(addr)
	copy(r, b.regs[w[0]:])
	return nil
}

func TestReadFiltered(t *testing.T) {
	c := qt.New(t)
	bus := &fakeBus{}
	// electrode 9: 0x2d6 = 726, high byte carries junk above bit 1
	bus.regs[0x04+18] = 0xd6
	bus.regs[0x04+19] = 0xfe

	value, err := readFiltered(bus, DefaultAddress, 9)
	c.Assert(err, qt.IsNil)
	c.Assert(value, qt.Equals, uint16(726))
	c.Assert(bus.address, qt.Equals, uint8(DefaultAddress))
}

func TestReadBaseline(t *testing.T) {
	c := qt.New(t)
	bus := &fakeBus{}
	bus.regs[0x1E+9] = 0xb5

	value, err := readBaseline(bus, DefaultAddress, 9)
	c.Assert(err, qt.IsNil)
	c.Assert(value, qt.Equals, uint16(0xb5<<2))
}

func TestReadError(t *testing.T) {
	c := qt.New(t)
	bus := &fakeBus{err: errors.New("nack")}

	_, err := readFiltered(bus, DefaultAddress, 0)
	c.Assert(err, qt.ErrorMatches, "nack")
	_, err = readBaseline(bus, DefaultAddress, 0)
	c.Assert(err, qt.ErrorMatches, "nack")
}
