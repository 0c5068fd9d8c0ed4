package dynamixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeAngle(t *testing.T) {
	// MX-28: 4095 raw counts over a 360 degree sweep.
	assert.Equal(t, uint16(0), MX28.EncodeAngle(0))
	assert.Equal(t, uint16(4095), MX28.EncodeAngle(360))
	assert.Equal(t, uint16(1706), MX28.EncodeAngle(150))
	assert.Equal(t, uint16(2048), MX28.EncodeAngle(180))

	// AX-12: 1023 counts over 300 degrees.
	assert.Equal(t, uint16(0), AX12.EncodeAngle(0))
	assert.Equal(t, uint16(1023), AX12.EncodeAngle(300))
	assert.Equal(t, uint16(512), AX12.EncodeAngle(150))
}

func TestDecodeAngle(t *testing.T) {
	// Readback uses 300/1024 on both families; see DecodeAngle for why
	// it does not mirror EncodeAngle.
	assert.Equal(t, 300.0, MX28.DecodeAngle(1024))
	assert.Equal(t, 300.0, AX12.DecodeAngle(1024))
	assert.Equal(t, 0.0, MX28.DecodeAngle(0))
	assert.Equal(t, 150.0, MX28.DecodeAngle(512))
}

func TestModelByName(t *testing.T) {
	m, ok := ModelByName("mx-28")
	assert.True(t, ok)
	assert.Equal(t, 29, m.Number)
	assert.True(t, m.HasCurrent)

	m, ok = ModelByName("ax-12")
	assert.True(t, ok)
	assert.Equal(t, 12, m.Number)
	assert.False(t, m.HasCurrent)

	_, ok = ModelByName("rx-64")
	assert.False(t, ok)
}

func TestRegisterByName(t *testing.T) {
	reg, ok := MX28.RegisterByName("goal_position")
	assert.True(t, ok)
	assert.Equal(t, byte(0x1E), reg.Address)
	assert.Equal(t, 2, reg.Size)

	reg, ok = MX28.RegisterByName("present_position")
	assert.True(t, ok)
	assert.True(t, reg.ReadOnly)

	_, ok = MX28.RegisterByName("no_such_register")
	assert.False(t, ok)

	// Current sense exists only on the MX-28.
	_, ok = MX28.RegisterByName("present_current")
	assert.True(t, ok)
	_, ok = AX12.RegisterByName("present_current")
	assert.False(t, ok)
}

func TestRegisterNames(t *testing.T) {
	mxNames := MX28.RegisterNames()
	axNames := AX12.RegisterNames()

	assert.Contains(t, mxNames, "goal_position")
	assert.Contains(t, mxNames, "present_current")
	assert.Contains(t, axNames, "goal_position")
	assert.NotContains(t, axNames, "present_current")
	assert.Len(t, axNames, len(mxNames)-1)
}
