package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kyoto-u-shinobi/dynamixel-servo/dynamixel"
)

var setIDBroadcast bool

var setIDCmd = &cobra.Command{
	Use:   "set-id <current-id> <new-id>",
	Short: "Rewrite a servo's bus ID",
	Long: `Change the ID a servo answers to. With --broadcast the current ID is
ignored and the change is sent to every servo on the chain at once;
only do that with a single servo attached, since all listeners take
the same new ID.`,
	Args: cobra.ExactArgs(2),
	RunE: runSetID,
}

func init() {
	setIDCmd.Flags().BoolVar(&setIDBroadcast, "broadcast", false, "Address the change to the whole chain")
	rootCmd.AddCommand(setIDCmd)
}

func runSetID(cmd *cobra.Command, args []string) error {
	currentID := dynamixel.BroadcastID
	if !setIDBroadcast {
		var err error
		currentID, err = parseID(args[0])
		if err != nil {
			return err
		}
	}
	newID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid new ID %q", args[1])
	}

	bus, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.ChangeID(cmd.Context(), currentID, newID); err != nil {
		return err
	}
	fmt.Printf("servo ID changed to %d\n", newID)
	return nil
}
