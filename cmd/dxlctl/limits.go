package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var limitsCmd = &cobra.Command{
	Use:   "limits <id> <cw-degrees> <ccw-degrees>",
	Short: "Set the clockwise and counter-clockwise angle limits",
	Args:  cobra.ExactArgs(3),
	RunE:  runLimits,
}

func init() {
	rootCmd.AddCommand(limitsCmd)
}

func runLimits(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	cw, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid cw limit %q", args[1])
	}
	ccw, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid ccw limit %q", args[2])
	}

	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx := cmd.Context()
	if err := servo.SetCWLimit(ctx, cw); err != nil {
		return err
	}
	if err := servo.SetCCWLimit(ctx, ccw); err != nil {
		return err
	}
	fmt.Printf("servo %d: limits %.1f to %.1f deg\n", id, cw, ccw)
	return nil
}
