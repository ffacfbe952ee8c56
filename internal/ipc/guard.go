// Package ipc lets the host talk to a running zenfocus instance: an HTTP
// and socket.io endpoint on a loopback port, a signal directory watched
// with fsnotify, and the matching client helpers.
package ipc

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another instance already holds the port.
var ErrAlreadyRunning = errors.New("instance already running")

const appName = "zenfocus"

// Guard holds the single-instance listener. The same listener serves the
// host API.
type Guard struct {
	listener net.Listener
	address  string
}

// Acquire binds address, or the derived loopback address when empty.
func Acquire(address string) (*Guard, error) {
	if address == "" {
		address = DefaultAddress()
	}
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w on %s", ErrAlreadyRunning, address)
	}
	return &Guard{listener: listener, address: listener.Addr().String()}, nil
}

// Release frees the lock.
func (g *Guard) Release() error {
	if g == nil || g.listener == nil {
		return nil
	}
	return g.listener.Close()
}

func (g *Guard) Listener() net.Listener {
	if g == nil {
		return nil
	}
	return g.listener
}

func (g *Guard) Address() string {
	if g == nil {
		return ""
	}
	return g.address
}

// DefaultAddress is the loopback address derived from the app name.
func DefaultAddress() string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(name string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(name))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
