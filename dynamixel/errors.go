package dynamixel

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrTimeout reports that a servo stopped answering mid-reply or
	// never answered within the bus deadline. The legacy drivers would
	// block forever in this case; here it is a distinct error.
	ErrTimeout = errors.New("bus timeout")

	// ErrNoResponse reports that not a single reply byte arrived.
	ErrNoResponse = errors.New("no response from servo")

	// ErrMalformedReply reports a status packet that failed strict
	// validation (bad header, length, or checksum).
	ErrMalformedReply = errors.New("malformed status packet")

	// ErrTruncatedReply reports a status packet too short to carry
	// even its fixed fields.
	ErrTruncatedReply = errors.New("truncated status packet")

	// ErrBroadcastRead reports a read addressed to the broadcast ID,
	// which has no single replier and is rejected rather than left
	// undefined.
	ErrBroadcastRead = errors.New("read from broadcast address")

	// ErrFrameOverflow reports parameters exceeding the transmit
	// buffer; a caller contract violation, never a runtime condition.
	ErrFrameOverflow = errors.New("instruction frame overflow")

	ErrBusClosed   = errors.New("bus is closed")
	ErrInvalidID   = errors.New("invalid servo ID")
	ErrUnsupported = errors.New("register not present on this model")
)

// CommError is a transport-level failure during an operation.
type CommError struct {
	Op  string
	Err error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}

// ServoError is a failure attributed to a specific servo: either a
// fault it reported in a status packet, or an underlying error while
// talking to it.
type ServoError struct {
	ID     int
	Op     string
	Status StatusError
	Err    error
}

func (e *ServoError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("servo %d %s failed: %s", e.ID, e.Op, e.Status.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("servo %d %s failed: %v", e.ID, e.Op, e.Err)
	}
	return fmt.Sprintf("servo %d %s failed", e.ID, e.Op)
}

func (e *ServoError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Status != 0 {
		return e.Status
	}
	return nil
}

// IsTimeout reports whether err is a bus timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// DeviceFault extracts the fault bits a servo reported, if any.
func DeviceFault(err error) (StatusError, bool) {
	var status StatusError
	if errors.As(err, &status) && status != 0 {
		return status, true
	}
	return 0, false
}
