package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.SerialPort)
	assert.Equal(t, DefaultBaudRate, cfg.BaudRate)
	assert.Equal(t, DefaultRecorderSize, cfg.RecorderSize)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVOCTL_SERIAL_PORT", "/dev/ttyACM0")
	t.Setenv("SERVOCTL_BAUD_RATE", "115200")
	t.Setenv("SERVOCTL_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
	assert.Equal(t, 115200, cfg.BaudRate)
	assert.Equal(t, "debug", cfg.LogLevel)
}
