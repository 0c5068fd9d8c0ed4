package transports

import (
	"io"
	"time"
)

// MockTransport implements the transport contract for tests.
//
// Replies can be scripted two ways: a flat ReadData buffer consumed
// across reads, or a Responses queue where each entry is handed out by
// one read call — matching a bus that produces exactly one status
// packet per instruction. ReadFunc overrides both for custom behavior.
type MockTransport struct {
	ReadData    []byte
	Responses   [][]byte
	ReadErr     error
	WriteData   []byte
	WriteErr    error
	Closed      bool
	ReadTimeout time.Duration
	Flushed     int

	// EchoWrites loops transmitted bytes back into the read stream,
	// emulating a single-wire line for Loopback tests.
	EchoWrites bool

	ReadFunc func(p []byte) (int, error)
}

func (m *MockTransport) Read(p []byte) (int, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	if len(m.ReadData) == 0 && len(m.Responses) > 0 {
		m.ReadData = m.Responses[0]
		m.Responses = m.Responses[1:]
	}
	n := copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (m *MockTransport) Write(p []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.WriteData = append(m.WriteData, p...)
	if m.EchoWrites {
		m.ReadData = append(m.ReadData, p...)
	}
	return len(p), nil
}

func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

func (m *MockTransport) SetReadTimeout(timeout time.Duration) error {
	m.ReadTimeout = timeout
	return nil
}

// Flush counts invocations but keeps ReadData: tests preload replies
// before the exchange that consumes them.
func (m *MockTransport) Flush() error {
	m.Flushed++
	return nil
}

// Frames splits the captured write stream into instruction frames,
// using the length byte at offset 3 of each.
func (m *MockTransport) Frames() [][]byte {
	var frames [][]byte
	data := m.WriteData
	for len(data) >= 4 {
		total := 4 + int(data[3])
		if total > len(data) {
			break
		}
		frames = append(frames, data[:total])
		data = data[total:]
	}
	return frames
}
