package controller

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const (
	DefaultBaudRate     = 9600
	DefaultRecorderSize = 1000
	DefaultLogLevel     = "info"
)

// Config has the host-side session settings.
type Config struct {
	SerialPort   string
	BaudRate     int
	BridgeAddr   string
	RecorderSize int
	LogLevel     string
}

func (cfg Config) withDefaults() Config {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.RecorderSize == 0 {
		cfg.RecorderSize = DefaultRecorderSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return cfg
}

// LoadConfig reads settings from SERVOCTL_* environment variables and
// an optional config.yaml in the working directory or configs/.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("serial_port", "")
	v.SetDefault("baud_rate", DefaultBaudRate)
	v.SetDefault("bridge_addr", "")
	v.SetDefault("recorder_size", DefaultRecorderSize)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix("SERVOCTL")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := Config{
		SerialPort:   v.GetString("serial_port"),
		BaudRate:     v.GetInt("baud_rate"),
		BridgeAddr:   v.GetString("bridge_addr"),
		RecorderSize: v.GetInt("recorder_size"),
		LogLevel:     v.GetString("log_level"),
	}
	return cfg.withDefaults(), nil
}
