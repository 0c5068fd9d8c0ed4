package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var torqueLimit float64

var torqueCmd = &cobra.Command{
	Use:   "torque <id> {on|off}",
	Short: "Switch a servo's holding torque on or off",
	Long: `Enable or disable holding torque. A servo with torque off can be
turned by hand and ignores goal positions. --limit additionally caps
the output torque as a fraction of maximum.`,
	Args: cobra.ExactArgs(2),
	RunE: runTorque,
}

func init() {
	torqueCmd.Flags().Float64Var(&torqueLimit, "limit", -1, "Torque limit fraction 0.0-1.0")
	rootCmd.AddCommand(torqueCmd)
}

func runTorque(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var enabled bool
	switch args[1] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[1])
	}

	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx := cmd.Context()
	if cmd.Flags().Changed("limit") {
		if err := servo.SetTorqueLimit(ctx, torqueLimit); err != nil {
			return err
		}
	}
	if err := servo.SetTorqueEnabled(ctx, enabled); err != nil {
		return err
	}
	fmt.Printf("servo %d: torque %s\n", id, args[1])
	return nil
}
