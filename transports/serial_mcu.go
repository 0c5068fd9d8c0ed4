//go:build baremetal

package transports

import (
	"errors"
	"fmt"
	"machine"
	"time"
)

// MCUTransport drives the servo chain through a TinyGo UART.
type MCUTransport struct {
	uart    *machine.UART
	timeout time.Duration
}

// SerialConfig holds configuration for selecting a UART.
type SerialConfig struct {
	Port     string // "0" or "1"
	BaudRate int
	Timeout  time.Duration
}

// OpenSerial configures a UART with the given configuration.
func OpenSerial(cfg SerialConfig) (*MCUTransport, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 1000000
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	var uart *machine.UART
	switch cfg.Port {
	case "0":
		uart = machine.UART0
	case "1":
		uart = machine.UART1
	default:
		return nil, fmt.Errorf("unknown UART %q", cfg.Port)
	}

	uart.SetBaudRate(uint32(cfg.BaudRate))

	return &MCUTransport{uart: uart, timeout: cfg.Timeout}, nil
}

// Read blocks until at least one byte arrives or the timeout passes.
func (t *MCUTransport) Read(p []byte) (int, error) {
	deadline := time.Now().Add(t.timeout)
	for t.uart.Buffered() == 0 {
		if time.Now().After(deadline) {
			return 0, errors.New("uart read timeout")
		}
		time.Sleep(100 * time.Microsecond)
	}
	return t.uart.Read(p)
}

func (t *MCUTransport) Write(p []byte) (int, error) {
	return t.uart.Write(p)
}

func (t *MCUTransport) Close() error {
	return nil
}

func (t *MCUTransport) SetReadTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Flush drains the UART receive buffer.
func (t *MCUTransport) Flush() error {
	for t.uart.Buffered() > 0 {
		t.uart.ReadByte()
	}
	return nil
}
