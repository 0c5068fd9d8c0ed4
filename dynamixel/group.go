package dynamixel

import (
	"context"
	"fmt"
	"time"
)

// Group coordinates several servos on one bus, chiefly the two-phase
// staged-goal dance: buffer a goal on each servo, then fire one
// broadcast trigger so they all start moving in the same instant.
type Group struct {
	bus    *Bus
	servos []*Servo
}

// NewGroup creates a group from the given servos. All must share the
// same bus.
func NewGroup(bus *Bus, servos ...*Servo) *Group {
	return &Group{bus: bus, servos: servos}
}

// Servos returns the group members.
func (g *Group) Servos() []*Servo {
	return g.servos
}

// IDs returns the members' bus addresses.
func (g *Group) IDs() []int {
	ids := make([]int, len(g.servos))
	for i, s := range g.servos {
		ids[i] = s.ID()
	}
	return ids
}

// ServoByID returns the member with the given ID, or nil.
func (g *Group) ServoByID(id int) *Servo {
	for _, s := range g.servos {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// StageGoals buffers a goal angle on each listed servo. Nothing moves
// until Trigger fires; a servo that faults during staging aborts the
// batch with the remaining members unstaged.
func (g *Group) StageGoals(ctx context.Context, goals map[int]float64) error {
	for id, degrees := range goals {
		servo := g.ServoByID(id)
		if servo == nil {
			return fmt.Errorf("servo ID %d not in group", id)
		}
		if err := servo.StageGoal(ctx, degrees); err != nil {
			return fmt.Errorf("servo %d: %w", id, err)
		}
	}
	return nil
}

// Trigger broadcasts the action that applies all staged goals
// simultaneously.
func (g *Group) Trigger(ctx context.Context) error {
	return g.bus.Action(ctx)
}

// SetGoals writes goal angles to the listed servos in one broadcast
// sync-write frame. Unlike StageGoals/Trigger this is a single-phase
// command: servos start moving as the frame arrives.
func (g *Group) SetGoals(ctx context.Context, goals map[int]float64) error {
	if len(goals) == 0 {
		return nil
	}

	data := make(map[int][]byte, len(goals))
	for id, degrees := range goals {
		servo := g.ServoByID(id)
		if servo == nil {
			return fmt.Errorf("servo ID %d not in group", id)
		}
		data[id] = Word(servo.Model().EncodeAngle(degrees))
	}

	return g.bus.SyncWrite(ctx, RegGoalPosition.Address, RegGoalPosition.Size, data)
}

// EnableAll switches holding torque on for every member with one
// sync-write frame.
func (g *Group) EnableAll(ctx context.Context) error {
	return g.setTorqueAll(ctx, 1)
}

// DisableAll switches holding torque off for every member.
func (g *Group) DisableAll(ctx context.Context) error {
	return g.setTorqueAll(ctx, 0)
}

func (g *Group) setTorqueAll(ctx context.Context, val byte) error {
	data := make(map[int][]byte, len(g.servos))
	for _, s := range g.servos {
		data[s.ID()] = []byte{val}
	}
	return g.bus.SyncWrite(ctx, RegTorqueEnable.Address, 1, data)
}

// Positions reads each member's current angle. The bus has no
// multi-servo read, so this is one round trip per servo.
func (g *Group) Positions(ctx context.Context) (map[int]float64, error) {
	positions := make(map[int]float64, len(g.servos))
	for _, s := range g.servos {
		pos, err := s.Position(ctx)
		if err != nil {
			return nil, fmt.Errorf("servo %d: %w", s.ID(), err)
		}
		positions[s.ID()] = pos
	}
	return positions, nil
}

// WaitForStop polls until every member reports it has stopped moving,
// checking at the given interval. The context bounds the wait.
func (g *Group) WaitForStop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		allStopped := true
		for _, s := range g.servos {
			moving, err := s.Moving(ctx)
			if err != nil {
				return err
			}
			if moving {
				allStopped = false
				break
			}
		}
		if allStopped {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("group still moving: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
