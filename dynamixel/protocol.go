// Package dynamixel provides a Go library for driving Robotis Dynamixel
// servo actuators (AX-12 and MX-28, protocol 1.0) over a shared
// half-duplex serial line.
package dynamixel

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instruction codes per the Dynamixel 1.0 protocol.
const (
	InstPing      byte = 0x01
	InstRead      byte = 0x02
	InstWrite     byte = 0x03
	InstRegWrite  byte = 0x04
	InstReset     byte = 0x06
	InstSyncWrite byte = 0x83
)

// Special ID values.
const (
	BroadcastID = 0xFE
	MaxServoID  = 0xFD
)

// Packet header bytes.
const (
	headerByte1 = 0xFF
	headerByte2 = 0xFF
)

// MaxParameters is the largest parameter count that fits the fixed
// transmit buffer. Frames are header(2) + id(1) + length(1) +
// instruction(1) + params(n) + checksum(1), capped at 20 bytes.
const MaxParameters = 14

// statusOverhead is the wire size of a status packet with no payload.
const statusOverhead = 6

// StatusError holds the fault bits a servo reports in its status packet.
type StatusError byte

const (
	ErrInputVoltage StatusError = 1 << 0
	ErrAngleLimit   StatusError = 1 << 1
	ErrOverheating  StatusError = 1 << 2
	ErrRange        StatusError = 1 << 3
	ErrChecksum     StatusError = 1 << 4
	ErrOverload     StatusError = 1 << 5
	ErrInstruction  StatusError = 1 << 6
)

func (e StatusError) Error() string {
	if e == 0 {
		return "no error"
	}

	var msgs []string
	if e&ErrInputVoltage != 0 {
		msgs = append(msgs, "input voltage")
	}
	if e&ErrAngleLimit != 0 {
		msgs = append(msgs, "angle limit")
	}
	if e&ErrOverheating != 0 {
		msgs = append(msgs, "overheating")
	}
	if e&ErrRange != 0 {
		msgs = append(msgs, "range")
	}
	if e&ErrChecksum != 0 {
		msgs = append(msgs, "checksum")
	}
	if e&ErrOverload != 0 {
		msgs = append(msgs, "overload")
	}
	if e&ErrInstruction != 0 {
		msgs = append(msgs, "instruction")
	}

	return fmt.Sprintf("servo fault: %s", strings.Join(msgs, ", "))
}

// HasError returns true if any fault bit is set.
func (e StatusError) HasError() bool {
	return e != 0
}

// Packet represents one protocol frame: an instruction on encode, a
// status reply on decode.
type Packet struct {
	ID          byte
	Instruction byte
	Params      []byte
	Error       StatusError // only valid on decoded status packets
}

// Encode produces the wire bytes for an instruction packet.
// The length field is the parameter count plus two (instruction and
// checksum); the checksum covers ID through the last parameter.
func Encode(pkt Packet) ([]byte, error) {
	if len(pkt.Params) > MaxParameters {
		return nil, fmt.Errorf("%w: %d parameters", ErrFrameOverflow, len(pkt.Params))
	}

	buf := make([]byte, 0, statusOverhead+len(pkt.Params))
	buf = append(buf, headerByte1, headerByte2)
	buf = append(buf, pkt.ID)
	buf = append(buf, byte(len(pkt.Params)+2))
	buf = append(buf, pkt.Instruction)
	buf = append(buf, pkt.Params...)
	buf = append(buf, Checksum(buf[2:]))

	return buf, nil
}

// Checksum computes the protocol checksum over the given bytes,
// normally ID through the last parameter: 0xFF minus the low byte of
// the sum, i.e. the bitwise complement.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum
}

// DecodeStatus interprets a status reply leniently, matching the
// behavior of the legacy drivers: fixed offsets, no checksum
// verification, the error byte returned as-is even when the frame is
// corrupt. The caller must know from context how many payload bytes
// the reply carries; truncated payloads are clipped, not rejected.
func DecodeStatus(data []byte) (Packet, error) {
	if len(data) < statusOverhead {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrTruncatedReply, len(data))
	}

	pkt := Packet{
		ID:    data[2],
		Error: StatusError(data[4]),
	}

	paramLen := int(data[3]) - 2
	if paramLen < 0 {
		paramLen = 0
	}
	if 5+paramLen > len(data)-1 {
		paramLen = len(data) - statusOverhead
	}
	if paramLen > 0 {
		pkt.Params = make([]byte, paramLen)
		copy(pkt.Params, data[5:5+paramLen])
	}

	return pkt, nil
}

// DecodeStatusStrict is the hardened variant of DecodeStatus: it
// verifies the header, the length field, and the checksum, reporting
// ErrMalformedReply on any mismatch.
func DecodeStatusStrict(data []byte) (Packet, error) {
	if len(data) < statusOverhead {
		return Packet{}, fmt.Errorf("%w: truncated reply (%d bytes)", ErrMalformedReply, len(data))
	}
	if data[0] != headerByte1 || data[1] != headerByte2 {
		return Packet{}, fmt.Errorf("%w: bad header % X", ErrMalformedReply, data[:2])
	}

	total := 4 + int(data[3])
	if total != len(data) {
		return Packet{}, fmt.Errorf("%w: length field says %d bytes, have %d", ErrMalformedReply, total, len(data))
	}

	want := Checksum(data[2 : total-1])
	if got := data[total-1]; got != want {
		return Packet{}, fmt.Errorf("%w: checksum 0x%02X, want 0x%02X", ErrMalformedReply, got, want)
	}

	return DecodeStatus(data)
}

// StatusLength returns the wire size of a status reply carrying the
// given payload byte count.
func StatusLength(paramCount int) int {
	return statusOverhead + paramCount
}

// Word encodes a 16-bit register value in wire order (little-endian).
func Word(value uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, value)
	return buf
}

// DecodeWord reads a little-endian 16-bit register value.
func DecodeWord(data []byte) uint16 {
	if len(data) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(data)
}

// Instruction packet builders

// PingPacket builds a ping instruction for the given servo.
func PingPacket(id byte) ([]byte, error) {
	return Encode(Packet{ID: id, Instruction: InstPing})
}

// ReadPacket builds a read instruction for count bytes starting at addr.
func ReadPacket(id, addr, count byte) ([]byte, error) {
	return Encode(Packet{
		ID:          id,
		Instruction: InstRead,
		Params:      []byte{addr, count},
	})
}

// WritePacket builds an immediate write instruction.
func WritePacket(id, addr byte, data []byte) ([]byte, error) {
	params := make([]byte, 1+len(data))
	params[0] = addr
	copy(params[1:], data)

	return Encode(Packet{
		ID:          id,
		Instruction: InstWrite,
		Params:      params,
	})
}

// RegWritePacket builds a staged write: the servo buffers the value and
// applies it when a broadcast trigger arrives.
func RegWritePacket(id, addr byte, data []byte) ([]byte, error) {
	params := make([]byte, 1+len(data))
	params[0] = addr
	copy(params[1:], data)

	return Encode(Packet{
		ID:          id,
		Instruction: InstRegWrite,
		Params:      params,
	})
}

// ActionPacket builds the broadcast trigger that fires all staged
// writes at once. On the wire this is a parameterless reg-write
// addressed to the broadcast ID; the servos treat it as the group
// trigger. No status reply follows.
func ActionPacket() ([]byte, error) {
	return Encode(Packet{ID: BroadcastID, Instruction: InstRegWrite})
}

// ResetPacket builds a factory-reset instruction. The servo reverts to
// ID 1 and its default baud rate.
func ResetPacket(id byte) ([]byte, error) {
	return Encode(Packet{ID: id, Instruction: InstReset})
}

// SyncWritePacket builds a broadcast sync-write: one frame carrying the
// same register span for several servos. data maps servo ID to exactly
// dataLen bytes. Sync-write frames are exempt from MaxParameters and
// are bounded only by the one-byte length field.
func SyncWritePacket(addr, dataLen byte, data map[byte][]byte) ([]byte, error) {
	params := make([]byte, 0, 2+len(data)*(1+int(dataLen)))
	params = append(params, addr, dataLen)
	for id, d := range data {
		params = append(params, id)
		params = append(params, d...)
	}

	if len(params)+2 > 0xFF {
		return nil, fmt.Errorf("%w: %d parameters", ErrFrameOverflow, len(params))
	}

	buf := make([]byte, 0, statusOverhead+len(params))
	buf = append(buf, headerByte1, headerByte2)
	buf = append(buf, BroadcastID)
	buf = append(buf, byte(len(params)+2))
	buf = append(buf, InstSyncWrite)
	buf = append(buf, params...)
	buf = append(buf, Checksum(buf[2:]))

	return buf, nil
}
