package dynamixel

import "math"

// Register describes one entry of the servo control table.
type Register struct {
	Address  byte
	Size     int // 1 or 2 bytes, little-endian on the wire
	ReadOnly bool
	// SignBit marks the direction bit for sign-magnitude encoded
	// values; 0 means the value is plain unsigned.
	SignBit int
}

// Control table registers shared by the AX-12 and MX-28 families.
var (
	RegModelNumber        = Register{Address: 0x00, Size: 2, ReadOnly: true}
	RegFirmwareVersion    = Register{Address: 0x02, Size: 1, ReadOnly: true}
	RegID                 = Register{Address: 0x03, Size: 1}
	RegBaudRate           = Register{Address: 0x04, Size: 1}
	RegReturnDelay        = Register{Address: 0x05, Size: 1}
	RegCWLimit            = Register{Address: 0x06, Size: 2}
	RegCCWLimit           = Register{Address: 0x08, Size: 2}
	RegMaxTemperature     = Register{Address: 0x0B, Size: 1}
	RegMinVoltage         = Register{Address: 0x0C, Size: 1}
	RegMaxVoltage         = Register{Address: 0x0D, Size: 1}
	RegMaxTorque          = Register{Address: 0x0E, Size: 2}
	RegStatusReturnLevel  = Register{Address: 0x10, Size: 1}
	RegAlarmLED           = Register{Address: 0x11, Size: 1}
	RegAlarmShutdown      = Register{Address: 0x12, Size: 1}
	RegTorqueEnable       = Register{Address: 0x18, Size: 1}
	RegLED                = Register{Address: 0x19, Size: 1}
	RegGoalPosition       = Register{Address: 0x1E, Size: 2}
	RegMovingSpeed        = Register{Address: 0x20, Size: 2, SignBit: 10}
	RegTorqueLimit        = Register{Address: 0x22, Size: 2}
	RegPresentPosition    = Register{Address: 0x24, Size: 2, ReadOnly: true}
	RegPresentSpeed       = Register{Address: 0x26, Size: 2, ReadOnly: true, SignBit: 10}
	RegPresentLoad        = Register{Address: 0x28, Size: 2, ReadOnly: true, SignBit: 10}
	RegPresentVoltage     = Register{Address: 0x2A, Size: 1, ReadOnly: true}
	RegPresentTemperature = Register{Address: 0x2B, Size: 1, ReadOnly: true}
	RegRegisteredInstr    = Register{Address: 0x2C, Size: 1, ReadOnly: true}
	RegMoving             = Register{Address: 0x2E, Size: 1, ReadOnly: true}
	RegLock               = Register{Address: 0x2F, Size: 1}
	RegPunch              = Register{Address: 0x30, Size: 2}

	// MX-28 only; the AX-12 has no current sense.
	RegPresentCurrent = Register{Address: 0x44, Size: 2, ReadOnly: true}
)

// Model describes one actuator family. The two families speak the same
// protocol and share the control table above; they differ only in the
// current-sense register and in angle scaling.
type Model struct {
	Name   string
	Number int // value of the model-number register

	// FullSweep is the positional travel in degrees; AngleMax is the
	// raw register value at FullSweep.
	FullSweep  float64
	AngleMax   int
	HasCurrent bool
}

// The two supported families.
var (
	AX12 = Model{Name: "ax-12", Number: 12, FullSweep: 300, AngleMax: 1023}
	MX28 = Model{Name: "mx-28", Number: 29, FullSweep: 360, AngleMax: 4095, HasCurrent: true}
)

// ModelByName returns the family with the given name.
func ModelByName(name string) (Model, bool) {
	switch name {
	case AX12.Name:
		return AX12, true
	case MX28.Name:
		return MX28, true
	}
	return Model{}, false
}

// EncodeAngle converts degrees to the raw goal/limit register value:
// round(AngleMax * degrees / FullSweep).
func (m Model) EncodeAngle(degrees float64) uint16 {
	return uint16(math.Round(float64(m.AngleMax) * degrees / m.FullSweep))
}

// DecodeAngle converts a raw position readback to degrees. Both
// families use raw * 300 / 1024, the scale the legacy drivers applied
// on readback. Note the deliberate mismatch with EncodeAngle: those
// drivers encoded against AngleMax/FullSweep but decoded against
// 300/1024, and downstream calibration depends on the readback scale,
// so it is preserved rather than corrected.
func (m Model) DecodeAngle(raw uint16) float64 {
	return float64(raw) * 300 / 1024
}

// registersByName supports name-based register access, for tooling
// that takes register names from the command line.
var registersByName = map[string]Register{
	"model_number":        RegModelNumber,
	"firmware_version":    RegFirmwareVersion,
	"id":                  RegID,
	"baud_rate":           RegBaudRate,
	"return_delay":        RegReturnDelay,
	"cw_limit":            RegCWLimit,
	"ccw_limit":           RegCCWLimit,
	"max_temperature":     RegMaxTemperature,
	"min_voltage":         RegMinVoltage,
	"max_voltage":         RegMaxVoltage,
	"max_torque":          RegMaxTorque,
	"status_return_level": RegStatusReturnLevel,
	"alarm_led":           RegAlarmLED,
	"alarm_shutdown":      RegAlarmShutdown,
	"torque_enable":       RegTorqueEnable,
	"led":                 RegLED,
	"goal_position":       RegGoalPosition,
	"moving_speed":        RegMovingSpeed,
	"torque_limit":        RegTorqueLimit,
	"present_position":    RegPresentPosition,
	"present_speed":       RegPresentSpeed,
	"present_load":        RegPresentLoad,
	"present_voltage":     RegPresentVoltage,
	"present_temperature": RegPresentTemperature,
	"moving":              RegMoving,
	"lock":                RegLock,
	"punch":               RegPunch,
	"present_current":     RegPresentCurrent,
}

// RegisterByName looks up a control table register by its
// conventional name. Registers absent from the given model (the
// current sense on an AX-12) are reported as unknown.
func (m Model) RegisterByName(name string) (Register, bool) {
	reg, ok := registersByName[name]
	if !ok {
		return Register{}, false
	}
	if reg.Address == RegPresentCurrent.Address && !m.HasCurrent {
		return Register{}, false
	}
	return reg, true
}

// RegisterNames returns the register names the model supports.
func (m Model) RegisterNames() []string {
	names := make([]string, 0, len(registersByName))
	for name := range registersByName {
		if _, ok := m.RegisterByName(name); ok {
			names = append(names, name)
		}
	}
	return names
}
