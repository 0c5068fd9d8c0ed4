package transports

import (
	"fmt"
	"sync"
	"time"
)

// transport is the contract Loopback wraps and satisfies. Declared
// locally to keep this package free of upward imports; it matches the
// library's Transport interface structurally.
type transport interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error
	SetReadTimeout(timeout time.Duration) error
	Flush() error
}

// Loopback adapts a line whose transmitter is electrically looped back
// into the local receiver, as on a single-wire half-duplex UART: every
// transmitted byte reappears in the receive buffer and would otherwise
// be misread as the start of a reply.
//
// Write holds the line exclusively for the whole transmit-and-drain
// sequence: it sends the bytes, then reads back and discards exactly
// that many echoed bytes, so the next Read sees only the remote
// device's reply. The lock is released on every exit path, replacing the
// interrupt-masking bracket the equivalent firmware needs.
type Loopback struct {
	mu sync.Mutex
	t  transport
}

// NewLoopback wraps a transport whose line echoes local transmissions.
func NewLoopback(t transport) *Loopback {
	return &Loopback{t: t}
}

func (l *Loopback) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.t.Write(p)
	if err != nil {
		return n, err
	}

	// Drain our own echo before anyone listens for a reply.
	buf := make([]byte, n)
	for drained := 0; drained < n; {
		m, err := l.t.Read(buf[drained:])
		if err != nil {
			return n, fmt.Errorf("draining echo: %w", err)
		}
		if m == 0 {
			return n, fmt.Errorf("draining echo: short read, %d of %d bytes", drained, n)
		}
		drained += m
	}

	return n, nil
}

func (l *Loopback) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Read(p)
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Close()
}

func (l *Loopback) SetReadTimeout(timeout time.Duration) error {
	return l.t.SetReadTimeout(timeout)
}

func (l *Loopback) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.t.Flush()
}
