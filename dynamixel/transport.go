package dynamixel

import (
	"io"
	"time"
)

// Transport is the low-level byte link to the servo chain: one shared
// half-duplex line, alternately transmitting and receiving.
// Implementations live in the transports package; the mock there
// backs the tests.
type Transport interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds a single Read call.
	SetReadTimeout(timeout time.Duration) error

	// Flush discards buffered input, clearing stale or echoed bytes
	// before a new exchange.
	Flush() error
}
