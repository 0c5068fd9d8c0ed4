package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Broadcast the action that applies all staged goals",
	Long: `Fire the broadcast trigger. Every servo holding a goal staged with
'move --staged' starts moving in the same instant. Servos with nothing
staged ignore the trigger.`,
	Args: cobra.NoArgs,
	RunE: runTrigger,
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}

func runTrigger(cmd *cobra.Command, args []string) error {
	bus, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.Action(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("trigger sent")
	return nil
}
