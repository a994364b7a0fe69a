//go:build tinygo

// Package display shows touch events on a terminal drawn on the board's
// screen.
package display

import (
	"fmt"

	"github.com/merliot/touchpad"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// Terminal is a touchpad.Handler printing one line per event
type Terminal struct {
	term *tinyterm.Terminal
}

// New returns a terminal on d
func New(d tinyterm.Displayer) *Terminal {
	term := tinyterm.NewTerminal(d)
	term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	return &Terminal{term: term}
}

// Printf writes a line on the terminal
func (t *Terminal) Printf(format string, args ...any) {
	fmt.Fprintf(t.term, "\n"+format, args...)
}

func (t *Terminal) HandleEvent(evt touchpad.Event) {
	switch evt.Kind {
	case touchpad.Push:
		t.Printf("push touch pad num %d", evt.Channel)
	case touchpad.Release:
		t.Printf("release touch pad num %d", evt.Channel)
	}
}
