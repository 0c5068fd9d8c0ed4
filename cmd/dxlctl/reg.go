package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kyoto-u-shinobi/dynamixel-servo/dynamixel"
)

var regCmd = &cobra.Command{
	Use:   "reg <id> [name] [value]",
	Short: "Read or write a control table register by name",
	Long: `Raw register access for calibration and debugging.

With only an ID, list the register names the configured family
supports. With a name, read that register. With a name and a value,
write it. Values are plain decimal; two-byte registers go out
little-endian.

  dxlctl reg 1
  dxlctl reg 1 present_voltage
  dxlctl reg 1 return_delay 250`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runReg,
}

func init() {
	rootCmd.AddCommand(regCmd)
}

func runReg(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	model, err := servoModel()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		names := model.RegisterNames()
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	name := args[1]
	servo, bus, err := openServo(id)
	if err != nil {
		return err
	}
	defer bus.Close()

	if len(args) == 2 {
		data, err := servo.ReadRegister(cmd.Context(), name)
		if err != nil {
			return err
		}
		value := uint16(data[0])
		if len(data) == 2 {
			value = dynamixel.DecodeWord(data)
		}
		fmt.Printf("%s = %d (raw % X)\n", name, value, data)
		return nil
	}

	value, err := strconv.ParseUint(args[2], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid value %q", args[2])
	}

	reg, ok := model.RegisterByName(name)
	if !ok {
		return fmt.Errorf("unknown register: %s", name)
	}
	data := []byte{byte(value)}
	if reg.Size == 2 {
		data = dynamixel.Word(uint16(value))
	} else if value > 0xFF {
		return fmt.Errorf("value %d does not fit the one-byte register %s", value, name)
	}

	if err := servo.WriteRegister(cmd.Context(), name, data); err != nil {
		return err
	}
	fmt.Printf("%s = %d written\n", name, value)
	return nil
}
