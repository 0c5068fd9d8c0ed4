package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BusConfig describes the serial link to the servo chain.
type BusConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baudRate"`
	Family      string        `mapstructure:"family"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SettleDelay time.Duration `mapstructure:"settleDelay"`
	Strict      bool          `mapstructure:"strict"`
}

// LumberjackConfig configures log file rotation.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig selects log level, format, and optional file output.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// Config is the top-level tool configuration.
type Config struct {
	Bus     BusConfig     `mapstructure:"bus"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load reads configuration from the given file plus environment
// variables with the DXL_ prefix. An empty path falls back to
// dxlctl.yaml in the working directory or ~/.config/dxlctl; a missing
// file is fine, defaults and environment cover everything.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/dxlctl")
		v.SetConfigName("dxlctl")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix("DXL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bus.port", "/dev/ttyUSB0")
	v.SetDefault("bus.baudRate", 1000000)
	v.SetDefault("bus.family", "mx-28")
	v.SetDefault("bus.timeout", "1s")
	v.SetDefault("bus.settleDelay", "20us")
	v.SetDefault("bus.strict", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 20)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 14)
	v.SetDefault("logging.file.compress", true)
}
