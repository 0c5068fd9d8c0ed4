package dynamixel

import "math"

// Unit scaling between physical quantities and raw register values.
// The constants match the legacy drivers byte-for-byte; they are
// load-bearing for calibration data recorded against them.

// EncodeCRSpeed converts a normalized continuous-rotation speed in
// [-1, 1] to the moving-speed register encoding: ten magnitude bits
// (0x3FF at full speed) with bit 10 set for negative speeds.
func EncodeCRSpeed(speed float64) uint16 {
	raw := uint16(math.Round(0x3FF * math.Abs(speed)))
	if speed < 0 {
		raw |= 1 << 10
	}
	return raw
}

// EncodeTorqueLimit converts a torque fraction in [0, 1] to the raw
// torque-limit value.
func EncodeTorqueLimit(fraction float64) uint16 {
	return uint16(math.Round(fraction * 1023))
}

// DecodeVoltage converts the raw supply-voltage register to volts.
func DecodeVoltage(raw byte) float64 {
	return float64(raw) / 10
}

// DecodeCurrent converts the MX-28 current-sense register to amperes.
func DecodeCurrent(raw uint16) float64 {
	return (float64(raw) - 0x8FF) * 0.0045
}

// DecodeSpeedRPM converts the present-speed register to signed RPM.
// The register is sign-magnitude with bit 10 as direction; full
// magnitude 1023 corresponds to 114 RPM.
func DecodeSpeedRPM(raw uint16) float64 {
	rpm := float64(raw&0x3FF) * 114 / 1023
	if raw&(1<<10) != 0 {
		return -rpm
	}
	return rpm
}

// DecodeLoad converts the present-load register to a signed fraction
// of maximum torque, bit 10 again being direction.
func DecodeLoad(raw uint16) float64 {
	load := float64(raw&0x3FF) / 1023
	if raw&(1<<10) != 0 {
		return -load
	}
	return load
}

// BaudRegister converts a baud rate to the baud-rate register value,
// value = 2000000/baud - 1.
func BaudRegister(baud int) byte {
	return byte(2000000/baud - 1)
}

// BaudFromRegister is the inverse of BaudRegister.
func BaudFromRegister(value byte) int {
	return 2000000 / (int(value) + 1)
}

// ReturnDelayMicros converts the return-delay register to microseconds
// (2us units).
func ReturnDelayMicros(value byte) int {
	return 2 * int(value)
}
