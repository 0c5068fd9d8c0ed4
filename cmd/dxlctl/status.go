package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoto-u-shinobi/dynamixel-servo/dynamixel"
)

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Read a servo's telemetry",
	Long: `Read and print position, speed, load, voltage, temperature, and the
moving flag. Current draw is included on the MX-28 family; the AX-12
has no current sensor.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx := cmd.Context()

	pos, err := servo.Position(ctx)
	if err != nil {
		return err
	}
	rpm, err := servo.SpeedRPM(ctx)
	if err != nil {
		return err
	}
	load, err := servo.Load(ctx)
	if err != nil {
		return err
	}
	volts, err := servo.Voltage(ctx)
	if err != nil {
		return err
	}
	temp, err := servo.Temperature(ctx)
	if err != nil {
		return err
	}
	moving, err := servo.Moving(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("servo %d (%s)\n", id, servo.Model().Name)
	fmt.Printf("  position:    %.1f deg\n", pos)
	fmt.Printf("  speed:       %.1f rpm\n", rpm)
	fmt.Printf("  load:        %+.2f\n", load)
	fmt.Printf("  voltage:     %.1f V\n", volts)
	fmt.Printf("  temperature: %d C\n", temp)
	fmt.Printf("  moving:      %v\n", moving)

	amps, err := servo.Current(ctx)
	switch {
	case errors.Is(err, dynamixel.ErrUnsupported):
	case err != nil:
		return err
	default:
		fmt.Printf("  current:     %.3f A\n", amps)
	}
	return nil
}
