//go:build !tinygo

package touchpad

import (
	"time"

	sync "github.com/sasha-s/go-deadlock"
)

// Host builds run with deadlock detection on the bus and socket locks.  A
// lock held past the socket write deadline several times over is a bug.
func init() {
	sync.Opts.DeadlockTimeout = 10 * time.Second
}

type mutex struct {
	sync.Mutex
}

type rwMutex struct {
	sync.RWMutex
}
