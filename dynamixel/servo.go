package dynamixel

import (
	"context"
	"fmt"
	"time"
)

// Operating modes.
const (
	// ModePosition holds the full positional sweep: goal angles in
	// [0, FullSweep] degrees.
	ModePosition = 0
	// ModeWheel is continuous rotation: both angle limits zeroed,
	// speed commanded through SetCRSpeed.
	ModeWheel = 1
)

// defaultPollInterval spaces out moving-flag polls while waiting for a
// goal to complete.
const defaultPollInterval = 10 * time.Millisecond

// Servo is one actuator on the bus: a bus handle, a family model, and
// an address. The model and address are fixed at construction; the
// address changes only through SetID.
type Servo struct {
	bus   *Bus
	id    int
	model Model
}

// NewServo creates a handle for the servo at the given bus ID.
func NewServo(bus *Bus, id int, model Model) *Servo {
	return &Servo{bus: bus, id: id, model: model}
}

// ID returns the servo's bus address.
func (s *Servo) ID() int {
	return s.id
}

// Model returns the servo's family model.
func (s *Servo) Model() Model {
	return s.model
}

// Ping verifies the servo answers on the bus.
func (s *Servo) Ping(ctx context.Context) error {
	return s.bus.Ping(ctx, s.id)
}

// ModelNumber reads the model-number register.
func (s *Servo) ModelNumber(ctx context.Context) (int, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegModelNumber.Address, RegModelNumber.Size)
	if err != nil {
		return 0, err
	}
	return int(DecodeWord(data)), nil
}

// VerifyModel checks that the attached hardware matches the family
// this handle was constructed with.
func (s *Servo) VerifyModel(ctx context.Context) error {
	num, err := s.ModelNumber(ctx)
	if err != nil {
		return err
	}
	if num != s.model.Number {
		return fmt.Errorf("servo %d is not a %s: model number %d, want %d",
			s.id, s.model.Name, num, s.model.Number)
	}
	return nil
}

// Motion

// SetGoal commands the servo to the given angle in degrees.
func (s *Servo) SetGoal(ctx context.Context, degrees float64) error {
	raw := s.model.EncodeAngle(degrees)
	return s.bus.WriteRegister(ctx, s.id, RegGoalPosition.Address, Word(raw))
}

// StageGoal buffers a goal angle on the servo without moving it; the
// move starts when the broadcast trigger (Bus.Action) arrives.
func (s *Servo) StageGoal(ctx context.Context, degrees float64) error {
	raw := s.model.EncodeAngle(degrees)
	return s.bus.RegWrite(ctx, s.id, RegGoalPosition.Address, Word(raw))
}

// SetGoalAndWait commands a goal and polls until the servo stops
// moving. The context bounds the wait: a mechanically blocked servo
// surfaces as ctx.Err() instead of an endless spin.
func (s *Servo) SetGoalAndWait(ctx context.Context, degrees float64) error {
	if err := s.SetGoal(ctx, degrees); err != nil {
		return err
	}
	return s.WaitUntilStopped(ctx)
}

// WaitUntilStopped polls the moving flag until the servo reports it
// has halted, the context is canceled, or a device fault surfaces.
func (s *Servo) WaitUntilStopped(ctx context.Context) error {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		moving, err := s.Moving(ctx)
		if err != nil {
			return err
		}
		if !moving {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("servo %d still moving: %w", s.id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// SetCRSpeed sets the continuous-rotation speed, -1.0 (full speed one
// way) through 1.0 (full speed the other). Only meaningful after
// SetMode(ModeWheel).
func (s *Servo) SetCRSpeed(ctx context.Context, speed float64) error {
	if speed < -1 || speed > 1 {
		return fmt.Errorf("cr speed %v out of range [-1, 1]", speed)
	}
	return s.bus.WriteRegister(ctx, s.id, RegMovingSpeed.Address, Word(EncodeCRSpeed(speed)))
}

// SetMode switches between positional and continuous-rotation
// operation. Positional mode opens the limits to the full sweep;
// wheel mode zeroes both limits. Either way the rotation speed is
// zeroed so the servo holds still until commanded.
func (s *Servo) SetMode(ctx context.Context, mode int) error {
	switch mode {
	case ModeWheel:
		if err := s.SetCWLimit(ctx, 0); err != nil {
			return err
		}
		if err := s.SetCCWLimit(ctx, 0); err != nil {
			return err
		}
	case ModePosition:
		if err := s.SetCWLimit(ctx, 0); err != nil {
			return err
		}
		if err := s.SetCCWLimit(ctx, s.model.FullSweep); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown mode %d", mode)
	}
	return s.SetCRSpeed(ctx, 0)
}

// SetCWLimit sets the clockwise angle limit in degrees.
func (s *Servo) SetCWLimit(ctx context.Context, degrees float64) error {
	raw := s.model.EncodeAngle(degrees)
	return s.bus.WriteRegister(ctx, s.id, RegCWLimit.Address, Word(raw))
}

// SetCCWLimit sets the counter-clockwise angle limit in degrees.
func (s *Servo) SetCCWLimit(ctx context.Context, degrees float64) error {
	raw := s.model.EncodeAngle(degrees)
	return s.bus.WriteRegister(ctx, s.id, RegCCWLimit.Address, Word(raw))
}

// Torque

// SetTorqueEnabled powers the servo's holding torque on or off.
func (s *Servo) SetTorqueEnabled(ctx context.Context, enabled bool) error {
	var val byte
	if enabled {
		val = 1
	}
	return s.bus.WriteRegister(ctx, s.id, RegTorqueEnable.Address, []byte{val})
}

// SetTorqueLimit caps output torque as a fraction of maximum, 0.0-1.0.
func (s *Servo) SetTorqueLimit(ctx context.Context, fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return fmt.Errorf("torque limit %v out of range [0, 1]", fraction)
	}
	return s.bus.WriteRegister(ctx, s.id, RegTorqueLimit.Address, Word(EncodeTorqueLimit(fraction)))
}

// Addressing

// SetID rewrites the servo's bus address and updates this handle.
func (s *Servo) SetID(ctx context.Context, newID int) error {
	if err := s.bus.ChangeID(ctx, s.id, newID); err != nil {
		return err
	}
	s.id = newID
	return nil
}

// Telemetry

// Position reads the current angle in degrees.
func (s *Servo) Position(ctx context.Context) (float64, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegPresentPosition.Address, RegPresentPosition.Size)
	if err != nil {
		return 0, err
	}
	return s.model.DecodeAngle(DecodeWord(data)), nil
}

// Temperature reads the internal temperature in degrees Celsius.
func (s *Servo) Temperature(ctx context.Context) (int, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegPresentTemperature.Address, 1)
	if err != nil {
		return 0, err
	}
	return int(data[0]), nil
}

// Voltage reads the supply voltage in volts.
func (s *Servo) Voltage(ctx context.Context) (float64, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegPresentVoltage.Address, 1)
	if err != nil {
		return 0, err
	}
	return DecodeVoltage(data[0]), nil
}

// Current reads the supply current in amperes. Only the MX-28 family
// has a current-sense register; on an AX-12 this reports
// ErrUnsupported.
func (s *Servo) Current(ctx context.Context) (float64, error) {
	if !s.model.HasCurrent {
		return 0, fmt.Errorf("%w: current sense on %s", ErrUnsupported, s.model.Name)
	}
	data, err := s.bus.ReadRegister(ctx, s.id, RegPresentCurrent.Address, RegPresentCurrent.Size)
	if err != nil {
		return 0, err
	}
	return DecodeCurrent(DecodeWord(data)), nil
}

// SpeedRPM reads the present rotation speed in signed RPM.
func (s *Servo) SpeedRPM(ctx context.Context) (float64, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegPresentSpeed.Address, RegPresentSpeed.Size)
	if err != nil {
		return 0, err
	}
	return DecodeSpeedRPM(DecodeWord(data)), nil
}

// Load reads the present load as a signed fraction of maximum torque.
func (s *Servo) Load(ctx context.Context) (float64, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegPresentLoad.Address, RegPresentLoad.Size)
	if err != nil {
		return 0, err
	}
	return DecodeLoad(DecodeWord(data)), nil
}

// Moving reports whether the servo is still traveling toward its goal.
func (s *Servo) Moving(ctx context.Context) (bool, error) {
	data, err := s.bus.ReadRegister(ctx, s.id, RegMoving.Address, 1)
	if err != nil {
		return false, err
	}
	return data[0] != 0, nil
}

// Named register access

// ReadRegister reads a control table register by name.
func (s *Servo) ReadRegister(ctx context.Context, name string) ([]byte, error) {
	reg, ok := s.model.RegisterByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown register: %s", name)
	}
	return s.bus.ReadRegister(ctx, s.id, reg.Address, reg.Size)
}

// WriteRegister writes a control table register by name.
func (s *Servo) WriteRegister(ctx context.Context, name string, data []byte) error {
	reg, ok := s.model.RegisterByName(name)
	if !ok {
		return fmt.Errorf("unknown register: %s", name)
	}
	if reg.ReadOnly {
		return fmt.Errorf("register %s is read-only", name)
	}
	if len(data) != reg.Size {
		return fmt.Errorf("data size mismatch: expected %d bytes, got %d", reg.Size, len(data))
	}
	return s.bus.WriteRegister(ctx, s.id, reg.Address, data)
}
