package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kyoto-u-shinobi/dynamixel-servo/dynamixel"
	"github.com/kyoto-u-shinobi/dynamixel-servo/internal/config"
	"github.com/kyoto-u-shinobi/dynamixel-servo/internal/logging"
)

var (
	cfgFile string
	verbose bool

	// Serial connection flags; these override the config file.
	portName string
	baudRate int
	family   string
	timeout  time.Duration
	strict   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dxlctl",
	Short: "Command-line tool for Dynamixel AX-12 and MX-28 servos",
	Long: `dxlctl talks to Dynamixel servos (AX-12 and MX-28, protocol 1.0)
over a half-duplex serial adapter.

Connection settings come from flags, the DXL_ environment variables, or
a dxlctl.yaml config file, in that order of precedence:

  dxlctl --port /dev/ttyUSB0 --baud 1000000 scan
  DXL_BUS_PORT=/dev/ttyUSB0 dxlctl ping 1

Commands that take a servo ID accept 0-253. The --family flag selects
the angle scaling (mx-28 or ax-12).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default dxlctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable packet-level debug logging")
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate")
	rootCmd.PersistentFlags().StringVarP(&family, "family", "f", "", "Servo family: mx-28 or ax-12")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Reply timeout per exchange")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Validate status packet checksums")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Bus.Port = portName
	}
	if cmd.Flags().Changed("baud") {
		cfg.Bus.BaudRate = baudRate
	}
	if cmd.Flags().Changed("family") {
		cfg.Bus.Family = family
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Bus.Timeout = timeout
	}
	if cmd.Flags().Changed("strict") {
		cfg.Bus.Strict = strict
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err = logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

// openBus connects to the servo chain using the effective settings.
func openBus() (*dynamixel.Bus, error) {
	return dynamixel.NewBus(dynamixel.BusConfig{
		Port:        cfg.Bus.Port,
		BaudRate:    cfg.Bus.BaudRate,
		Timeout:     cfg.Bus.Timeout,
		SettleDelay: cfg.Bus.SettleDelay,
		Strict:      cfg.Bus.Strict,
		Logger:      logger,
	})
}

// servoModel resolves the configured family.
func servoModel() (dynamixel.Model, error) {
	model, ok := dynamixel.ModelByName(cfg.Bus.Family)
	if !ok {
		return dynamixel.Model{}, fmt.Errorf("unknown servo family %q (use mx-28 or ax-12)", cfg.Bus.Family)
	}
	return model, nil
}

// openServo connects and wraps one servo in the configured family.
func openServo(id int) (*dynamixel.Servo, *dynamixel.Bus, error) {
	model, err := servoModel()
	if err != nil {
		return nil, nil, err
	}
	bus, err := openBus()
	if err != nil {
		return nil, nil, err
	}
	return dynamixel.NewServo(bus, id, model), bus, nil
}

// parseID parses a servo ID argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 || id > dynamixel.MaxServoID {
		return 0, fmt.Errorf("invalid servo ID %q (valid range 0-%d)", arg, dynamixel.MaxServoID)
	}
	return id, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
