package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping <id>",
	Short: "Check that a servo answers on the bus",
	Args:  cobra.ExactArgs(1),
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	bus, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.Ping(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("servo %d is alive\n", id)
	return nil
}
