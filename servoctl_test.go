package servoctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampAngle(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{-1, 0},
		{0, 0},
		{90, 90},
		{180, 180},
		{181, 180},
		{999, 180},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampAngle(tt.in))
	}
}

func TestClampSpeed(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{5, 5},
		{9, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampSpeed(tt.in))
	}
}

func TestParseHeartbeat(t *testing.T) {
	angle, ok := ParseHeartbeat("Angle:95")
	assert.True(t, ok)
	assert.Equal(t, 95, angle)

	angle, ok = ParseHeartbeat(FormatHeartbeat(180))
	assert.True(t, ok)
	assert.Equal(t, 180, angle)

	_, ok = ParseHeartbeat("Angle:ninety")
	assert.False(t, ok)

	_, ok = ParseHeartbeat("TARGET_REACHED at 95")
	assert.False(t, ok)
}

func TestParseTargetReached(t *testing.T) {
	angle, ok := ParseTargetReached("TARGET_REACHED at 180")
	assert.True(t, ok)
	assert.Equal(t, 180, angle)

	_, ok = ParseTargetReached("Angle:180")
	assert.False(t, ok)
}

func TestFormatAcks(t *testing.T) {
	assert.Equal(t, "START - Target: 180, Current: 90, Speed: 1", FormatStartAck(180, 90, 1))
	assert.Equal(t, "STOPPED at angle: 92", FormatStopAck(92))
	assert.Equal(t, "RESET to: 45", FormatResetAck(45))
	assert.Equal(t, "Received: START,90,2", FormatReceived("START,90,2"))
}
