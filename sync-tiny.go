//go:build tinygo

package touchpad

import (
	"sync"
)

// No deadlock detection on the microcontroller

type mutex struct {
	sync.Mutex
}

type rwMutex struct {
	sync.RWMutex
}
