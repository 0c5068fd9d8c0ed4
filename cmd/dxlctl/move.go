package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	moveWait   bool
	moveStaged bool
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <degrees>",
	Short: "Command a servo to a goal angle",
	Long: `Write a goal position in degrees. With --wait the command polls the
moving flag and returns once the servo has settled. With --staged the
goal is only buffered on the servo; nothing moves until 'dxlctl
trigger' fires, which lets several staged servos start simultaneously.`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().BoolVarP(&moveWait, "wait", "w", false, "Wait until the servo stops moving")
	moveCmd.Flags().BoolVar(&moveStaged, "staged", false, "Buffer the goal; apply it with 'trigger'")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	degrees, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid angle %q", args[1])
	}

	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx := cmd.Context()

	if moveStaged {
		if moveWait {
			return fmt.Errorf("--staged and --wait are mutually exclusive: a staged goal does not move until triggered")
		}
		if err := servo.StageGoal(ctx, degrees); err != nil {
			return err
		}
		fmt.Printf("servo %d: staged goal %.1f deg (run 'dxlctl trigger' to start)\n", id, degrees)
		return nil
	}

	if moveWait {
		if err := servo.SetGoalAndWait(ctx, degrees); err != nil {
			return err
		}
		pos, err := servo.Position(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("servo %d: settled at %.1f deg\n", id, pos)
		return nil
	}

	if err := servo.SetGoal(ctx, degrees); err != nil {
		return err
	}
	fmt.Printf("servo %d: moving to %.1f deg\n", id, degrees)
	return nil
}
