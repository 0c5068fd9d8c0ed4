package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Factory-reset a servo",
	Long: `Restore a servo's entire control table to factory defaults. The servo
comes back with ID 1 and its default baud rate, so it usually drops
off the bus until re-addressed with 'dxlctl set-id'. Asks for
confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !resetYes {
		fmt.Printf("factory-reset servo %d? It will come back as ID 1. [y/N] ", id)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("aborted")
			return nil
		}
	}

	bus, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.Reset(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("servo %d reset; it now answers as ID 1\n", id)
	return nil
}
