package dynamixel

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncode_PingPacket(t *testing.T) {
	// Ping servo ID 1: FF FF 01 02 01 FB
	// Checksum = 0xFF - (01 + 02 + 01) = FB
	packet, err := PingPacket(0x01)
	if err != nil {
		t.Fatalf("PingPacket failed: %v", err)
	}
	expected := []byte{0xFF, 0xFF, 0x01, 0x02, 0x01, 0xFB}

	if !bytes.Equal(packet, expected) {
		t.Errorf("PingPacket: got % X, want % X", packet, expected)
	}
}

func TestEncode_ReadPacket(t *testing.T) {
	// Read 2 bytes from the position register on servo ID 1:
	// FF FF 01 04 02 24 02 D2
	packet, err := ReadPacket(0x01, RegPresentPosition.Address, 0x02)
	if err != nil {
		t.Fatalf("ReadPacket failed: %v", err)
	}
	expected := []byte{0xFF, 0xFF, 0x01, 0x04, 0x02, 0x24, 0x02, 0xD2}

	if !bytes.Equal(packet, expected) {
		t.Errorf("ReadPacket: got % X, want % X", packet, expected)
	}
}

func TestEncode_WritePacket(t *testing.T) {
	// Write ID value 1 to the ID register via broadcast:
	// FF FF FE 04 03 03 01 F6
	packet, err := WritePacket(BroadcastID, RegID.Address, []byte{0x01})
	if err != nil {
		t.Fatalf("WritePacket failed: %v", err)
	}
	expected := []byte{0xFF, 0xFF, 0xFE, 0x04, 0x03, 0x03, 0x01, 0xF6}

	if !bytes.Equal(packet, expected) {
		t.Errorf("WritePacket: got % X, want % X", packet, expected)
	}
}

func TestEncode_ActionPacket(t *testing.T) {
	// The group trigger: a parameterless reg-write to broadcast.
	// FF FF FE 02 04 FB
	packet, err := ActionPacket()
	if err != nil {
		t.Fatalf("ActionPacket failed: %v", err)
	}
	expected := []byte{0xFF, 0xFF, 0xFE, 0x02, 0x04, 0xFB}

	if !bytes.Equal(packet, expected) {
		t.Errorf("ActionPacket: got % X, want % X", packet, expected)
	}
}

func TestEncode_ChecksumProperty(t *testing.T) {
	// For any frame, checksum + sum(ID..last param) must be 0xFF,
	// i.e. 0xFF - checksum - sum == 0 mod 256.
	for n := 0; n <= MaxParameters; n++ {
		params := make([]byte, n)
		for i := range params {
			params[i] = byte(0x13 * (i + 1))
		}

		packet, err := Encode(Packet{ID: 7, Instruction: InstWrite, Params: params})
		if err != nil {
			t.Fatalf("Encode with %d params failed: %v", n, err)
		}

		var sum byte
		for _, b := range packet[2 : len(packet)-1] {
			sum += b
		}
		checksum := packet[len(packet)-1]
		if sum+checksum != 0xFF {
			t.Errorf("%d params: sum %02X + checksum %02X != FF", n, sum, checksum)
		}
		if got := Checksum(packet[2 : len(packet)-1]); got != checksum {
			t.Errorf("%d params: re-derived checksum %02X, transmitted %02X", n, got, checksum)
		}
	}
}

func TestEncode_FrameOverflow(t *testing.T) {
	_, err := Encode(Packet{ID: 1, Instruction: InstWrite, Params: make([]byte, MaxParameters+1)})
	if !errors.Is(err, ErrFrameOverflow) {
		t.Errorf("got %v, want ErrFrameOverflow", err)
	}
}

func TestDecodeStatus_NoPayload(t *testing.T) {
	// Reply to a write: FF FF 01 02 00 FC
	pkt, err := DecodeStatus([]byte{0xFF, 0xFF, 0x01, 0x02, 0x00, 0xFC})
	if err != nil {
		t.Fatalf("DecodeStatus failed: %v", err)
	}

	if pkt.ID != 0x01 {
		t.Errorf("ID: got %d, want 1", pkt.ID)
	}
	if pkt.Error != 0 {
		t.Errorf("Error: got %d, want 0", pkt.Error)
	}
	if len(pkt.Params) != 0 {
		t.Errorf("Params: got % X, want none", pkt.Params)
	}
}

func TestDecodeStatus_WithPayload(t *testing.T) {
	// Position readback 0x0400: FF FF 01 04 00 00 04 F6
	pkt, err := DecodeStatus([]byte{0xFF, 0xFF, 0x01, 0x04, 0x00, 0x00, 0x04, 0xF6})
	if err != nil {
		t.Fatalf("DecodeStatus failed: %v", err)
	}

	if len(pkt.Params) != 2 {
		t.Fatalf("Params length: got %d, want 2", len(pkt.Params))
	}
	if got := DecodeWord(pkt.Params); got != 0x0400 {
		t.Errorf("payload: got %d, want %d", got, 0x0400)
	}
}

func TestDecodeStatus_LenientAcceptsCorruptChecksum(t *testing.T) {
	// Same frame with a ruined checksum: the lenient decoder hands the
	// error byte back as-is, like the legacy drivers did.
	pkt, err := DecodeStatus([]byte{0xFF, 0xFF, 0x01, 0x02, 0x24, 0x00})
	if err != nil {
		t.Fatalf("DecodeStatus failed: %v", err)
	}
	if pkt.Error != StatusError(0x24) {
		t.Errorf("Error: got %02X, want 24", byte(pkt.Error))
	}
}

func TestDecodeStatusStrict_RejectsCorruptChecksum(t *testing.T) {
	_, err := DecodeStatusStrict([]byte{0xFF, 0xFF, 0x01, 0x02, 0x24, 0x00})
	if !errors.Is(err, ErrMalformedReply) {
		t.Errorf("got %v, want ErrMalformedReply", err)
	}
}

func TestDecodeStatusStrict_RejectsBadHeader(t *testing.T) {
	_, err := DecodeStatusStrict([]byte{0x00, 0xFF, 0x01, 0x02, 0x00, 0xFC})
	if !errors.Is(err, ErrMalformedReply) {
		t.Errorf("got %v, want ErrMalformedReply", err)
	}
}

func TestDecodeStatusStrict_RejectsBadLength(t *testing.T) {
	// Length field claims a payload the frame does not carry.
	_, err := DecodeStatusStrict([]byte{0xFF, 0xFF, 0x01, 0x04, 0x00, 0xFA})
	if !errors.Is(err, ErrMalformedReply) {
		t.Errorf("got %v, want ErrMalformedReply", err)
	}
}

func TestDecodeStatus_Truncated(t *testing.T) {
	_, err := DecodeStatus([]byte{0xFF, 0xFF, 0x01})
	if !errors.Is(err, ErrTruncatedReply) {
		t.Errorf("got %v, want ErrTruncatedReply", err)
	}
}

func TestDecodeStatus_FaultBits(t *testing.T) {
	// Error byte 0x24: overheating + overload.
	pkt, err := DecodeStatus([]byte{0xFF, 0xFF, 0x01, 0x02, 0x24, 0xD8})
	if err != nil {
		t.Fatalf("DecodeStatus failed: %v", err)
	}

	if !pkt.Error.HasError() {
		t.Fatal("expected fault bits")
	}
	if pkt.Error&ErrOverheating == 0 || pkt.Error&ErrOverload == 0 {
		t.Errorf("fault bits: got %08b", byte(pkt.Error))
	}
	if pkt.Error&ErrAngleLimit != 0 {
		t.Errorf("unexpected angle limit bit in %08b", byte(pkt.Error))
	}
}

func TestSyncWritePacket(t *testing.T) {
	// One servo, goal position 0x0200.
	packet, err := SyncWritePacket(RegGoalPosition.Address, 2, map[byte][]byte{
		0x01: {0x00, 0x02},
	})
	if err != nil {
		t.Fatalf("SyncWritePacket failed: %v", err)
	}

	expected := []byte{0xFF, 0xFF, 0xFE, 0x07, 0x83, 0x1E, 0x02, 0x01, 0x00, 0x02, 0x54}
	if !bytes.Equal(packet, expected) {
		t.Errorf("SyncWritePacket: got % X, want % X", packet, expected)
	}
}
