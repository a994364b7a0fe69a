//go:build tinygo && !wioterminal

package main

import "github.com/merliot/touchpad/display"

// no screen on this board
func newTerminal() *display.Terminal {
	return nil
}
