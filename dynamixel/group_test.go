package dynamixel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainDevice emulates a servo chain behind the transport: it parses
// instruction frames, keeps staged and applied goal registers per
// servo, and queues status replies the way real hardware would.
type chainDevice struct {
	staged  map[byte]uint16
	applied map[byte]uint16
	torque  map[byte]byte
	pending []byte
}

func newChainDevice() *chainDevice {
	return &chainDevice{
		staged:  make(map[byte]uint16),
		applied: make(map[byte]uint16),
		torque:  make(map[byte]byte),
	}
}

func (d *chainDevice) Write(p []byte) (int, error) {
	id := p[2]
	instr := p[4]
	params := p[5 : len(p)-1]

	switch instr {
	case InstWrite:
		d.apply(id, params[0], params[1:])
	case InstRegWrite:
		if id == BroadcastID && len(params) == 0 {
			// The trigger: staged goals take effect at once.
			for sid, goal := range d.staged {
				d.applied[sid] = goal
			}
			d.staged = make(map[byte]uint16)
			return len(p), nil
		}
		d.staged[id] = DecodeWord(params[1:3])
	case InstSyncWrite:
		addr, dataLen := params[0], int(params[1])
		for rest := params[2:]; len(rest) >= 1+dataLen; rest = rest[1+dataLen:] {
			d.apply(rest[0], addr, rest[1:1+dataLen])
		}
		return len(p), nil
	}

	if id != BroadcastID {
		d.pending = append(d.pending, 0xFF, 0xFF, id, 0x02, 0x00, Checksum([]byte{id, 0x02, 0x00}))
	}
	return len(p), nil
}

func (d *chainDevice) apply(id, addr byte, data []byte) {
	switch addr {
	case RegGoalPosition.Address:
		d.applied[id] = DecodeWord(data)
	case RegTorqueEnable.Address:
		d.torque[id] = data[0]
	}
}

func (d *chainDevice) Read(p []byte) (int, error) {
	n := copy(p, d.pending)
	d.pending = d.pending[n:]
	return n, nil
}

func (d *chainDevice) Close() error { return nil }

func (d *chainDevice) SetReadTimeout(timeout time.Duration) error { return nil }

func (d *chainDevice) Flush() error { return nil }

func newTestGroup(t *testing.T) (*Group, *chainDevice) {
	t.Helper()
	device := newChainDevice()
	bus, err := NewBus(BusConfig{
		Transport: device,
		Timeout:   50 * time.Millisecond,
	})
	require.NoError(t, err)

	return NewGroup(bus,
		NewServo(bus, 1, MX28),
		NewServo(bus, 2, MX28),
	), device
}

func TestGroup_StagedGoalsApplyOnlyOnTrigger(t *testing.T) {
	group, device := newTestGroup(t)
	ctx := context.Background()

	err := group.StageGoals(ctx, map[int]float64{1: 90, 2: 180})
	require.NoError(t, err)

	// Staged but not yet moving.
	assert.Empty(t, device.applied)
	assert.Equal(t, uint16(1024), device.staged[1])
	assert.Equal(t, uint16(2048), device.staged[2])

	require.NoError(t, group.Trigger(ctx))

	assert.Equal(t, uint16(1024), device.applied[1])
	assert.Equal(t, uint16(2048), device.applied[2])
	assert.Empty(t, device.staged)
}

func TestGroup_StageGoalsUnknownID(t *testing.T) {
	group, device := newTestGroup(t)

	err := group.StageGoals(context.Background(), map[int]float64{9: 90})
	assert.ErrorContains(t, err, "not in group")
	assert.Empty(t, device.staged)
}

func TestGroup_SetGoalsAppliesImmediately(t *testing.T) {
	group, device := newTestGroup(t)

	err := group.SetGoals(context.Background(), map[int]float64{1: 90, 2: 180})
	require.NoError(t, err)

	assert.Equal(t, uint16(1024), device.applied[1])
	assert.Equal(t, uint16(2048), device.applied[2])
}

func TestGroup_TorqueAll(t *testing.T) {
	group, device := newTestGroup(t)
	ctx := context.Background()

	require.NoError(t, group.EnableAll(ctx))
	assert.Equal(t, byte(1), device.torque[1])
	assert.Equal(t, byte(1), device.torque[2])

	require.NoError(t, group.DisableAll(ctx))
	assert.Equal(t, byte(0), device.torque[1])
	assert.Equal(t, byte(0), device.torque[2])
}

func TestGroup_ServoByID(t *testing.T) {
	group, _ := newTestGroup(t)

	assert.Equal(t, []int{1, 2}, group.IDs())
	require.NotNil(t, group.ServoByID(2))
	assert.Equal(t, 2, group.ServoByID(2).ID())
	assert.Nil(t, group.ServoByID(9))
}
