package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyoto-u-shinobi/dynamixel-servo/dynamixel"
)

var (
	scanFrom int
	scanTo   int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover servos on the bus",
	Long: `Ping every ID in the scan range and report the servos that answer,
along with their model numbers. Silent IDs are skipped; with the
default 1 second timeout a full scan of 253 IDs on an empty bus takes
a while, so narrow the range or lower --timeout when probing.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanFrom, "from", 0, "First ID to probe")
	scanCmd.Flags().IntVar(&scanTo, "to", dynamixel.MaxServoID, "Last ID to probe")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	bus, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	found, err := bus.Scan(cmd.Context(), scanFrom, scanTo)
	if err != nil {
		return err
	}

	if len(found) == 0 {
		fmt.Println("no servos found")
		return nil
	}

	fmt.Printf("%-5s %-7s %s\n", "ID", "MODEL#", "FAMILY")
	for _, servo := range found {
		name := "unknown"
		switch servo.ModelNumber {
		case dynamixel.AX12.Number:
			name = dynamixel.AX12.Name
		case dynamixel.MX28.Number:
			name = dynamixel.MX28.Name
		}
		fmt.Printf("%-5d %-7d %s\n", servo.ID, servo.ModelNumber, name)
	}
	return nil
}
