//go:build !baremetal

// Package transports provides the physical links to the servo chain:
// an OS serial port, a microcontroller UART, and a mock for tests.
// The chain is electrically half-duplex; see Loopback for lines where
// the local transmitter is looped back into the receiver.
package transports

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialTransport drives the servo chain through a hardware serial
// port (typically a USB half-duplex adapter).
type SerialTransport struct {
	port     serial.Port
	portName string
	timeout  time.Duration
}

// SerialConfig holds configuration for opening a serial port.
type SerialConfig struct {
	Port     string
	BaudRate int
	Timeout  time.Duration
}

// OpenSerial opens a serial port at 8N1 with the given configuration.
func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port path is required")
	}

	if cfg.BaudRate == 0 {
		cfg.BaudRate = 1000000
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(cfg.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return &SerialTransport{
		port:     port,
		portName: cfg.Port,
		timeout:  cfg.Timeout,
	}, nil
}

func (t *SerialTransport) Read(p []byte) (int, error) {
	return t.port.Read(p)
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}

func (t *SerialTransport) SetReadTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return t.port.SetReadTimeout(timeout)
}

// Flush reads and discards whatever is sitting in the receive buffer:
// stale replies, line noise, or echoed transmit bytes.
func (t *SerialTransport) Flush() error {
	buf := make([]byte, 4096)
	t.port.SetReadTimeout(10 * time.Millisecond)
	for {
		n, err := t.port.Read(buf)
		if n == 0 || err != nil {
			break
		}
	}
	return t.port.SetReadTimeout(t.timeout)
}

// PortName returns the serial device path.
func (t *SerialTransport) PortName() string {
	return t.portName
}
