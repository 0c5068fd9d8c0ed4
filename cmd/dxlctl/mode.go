package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoto-u-shinobi/dynamixel-servo/dynamixel"
)

var modeCmd = &cobra.Command{
	Use:   "mode <id> {position|wheel}",
	Short: "Switch between positional and wheel operation",
	Long: `Switch a servo's operating mode. Position mode opens the angle
limits to the family's full sweep and accepts goal angles; wheel mode
zeroes both limits for continuous rotation driven by 'dxlctl speed'.
Either way the rotation speed is zeroed so the servo holds still until
commanded.`,
	Args: cobra.ExactArgs(2),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var mode int
	switch args[1] {
	case "position":
		mode = dynamixel.ModePosition
	case "wheel":
		mode = dynamixel.ModeWheel
	default:
		return fmt.Errorf("unknown mode %q (use position or wheel)", args[1])
	}

	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := servo.SetMode(cmd.Context(), mode); err != nil {
		return err
	}
	fmt.Printf("servo %d: %s mode\n", id, args[1])
	return nil
}
