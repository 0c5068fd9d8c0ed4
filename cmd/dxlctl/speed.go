package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var speedCmd = &cobra.Command{
	Use:   "speed <id> <value>",
	Short: "Set continuous-rotation speed",
	Long: `Set the rotation speed of a servo in wheel mode. The value runs from
-1.0 (full speed clockwise) through 0 (stop) to 1.0 (full speed
counter-clockwise). Switch the servo to wheel mode first with
'dxlctl mode <id> wheel'.`,
	Args: cobra.ExactArgs(2),
	RunE: runSpeed,
}

func init() {
	rootCmd.AddCommand(speedCmd)
}

func runSpeed(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid speed %q", args[1])
	}

	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := servo.SetCRSpeed(cmd.Context(), value); err != nil {
		return err
	}
	fmt.Printf("servo %d: speed %.2f\n", id, value)
	return nil
}
