package dynamixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCRSpeed(t *testing.T) {
	assert.Equal(t, uint16(0x000), EncodeCRSpeed(0))
	assert.Equal(t, uint16(0x3FF), EncodeCRSpeed(1))
	assert.Equal(t, uint16(0x200), EncodeCRSpeed(0.5))

	// Negative speeds carry the magnitude in the low ten bits with the
	// direction bit on top.
	assert.Equal(t, uint16(0x7FF), EncodeCRSpeed(-1))
	assert.Equal(t, uint16(0x500), EncodeCRSpeed(-0.25))
}

func TestEncodeTorqueLimit(t *testing.T) {
	assert.Equal(t, uint16(0), EncodeTorqueLimit(0))
	assert.Equal(t, uint16(1023), EncodeTorqueLimit(1))
	assert.Equal(t, uint16(512), EncodeTorqueLimit(0.5))
}

func TestDecodeVoltage(t *testing.T) {
	assert.Equal(t, 10.5, DecodeVoltage(105))
	assert.Equal(t, 0.0, DecodeVoltage(0))
}

func TestDecodeCurrent(t *testing.T) {
	// 0x8FF is the sensor's zero point.
	assert.Equal(t, 0.0, DecodeCurrent(0x8FF))
	assert.InDelta(t, 1.152, DecodeCurrent(0x9FF), 1e-9)
	assert.InDelta(t, -1.152, DecodeCurrent(0x7FF), 1e-9)
}

func TestDecodeSpeedRPM(t *testing.T) {
	assert.Equal(t, 0.0, DecodeSpeedRPM(0))
	assert.Equal(t, 114.0, DecodeSpeedRPM(0x3FF))
	assert.Equal(t, -114.0, DecodeSpeedRPM(0x7FF))
	assert.InDelta(t, 57.0, DecodeSpeedRPM(0x200), 0.2)
}

func TestDecodeLoad(t *testing.T) {
	assert.Equal(t, 0.0, DecodeLoad(0))
	assert.Equal(t, 1.0, DecodeLoad(0x3FF))
	assert.Equal(t, -1.0, DecodeLoad(0x7FF))
	assert.InDelta(t, -0.5, DecodeLoad(0x600), 0.001)
}

func TestBaudRegister(t *testing.T) {
	assert.Equal(t, byte(0), BaudRegister(2000000))
	assert.Equal(t, byte(1), BaudRegister(1000000))
	assert.Equal(t, byte(3), BaudRegister(500000))

	assert.Equal(t, 2000000, BaudFromRegister(0))
	assert.Equal(t, 1000000, BaudFromRegister(1))
	assert.Equal(t, 500000, BaudFromRegister(3))
}

func TestReturnDelayMicros(t *testing.T) {
	assert.Equal(t, 0, ReturnDelayMicros(0))
	assert.Equal(t, 500, ReturnDelayMicros(250))
}
