package servoctl

import (
	"strconv"
	"strings"
)

// Angle bounds for the actuator. The firmware never commands an angle
// outside this range.
const (
	MinAngle     = 0
	MaxAngle     = 180
	DefaultAngle = 90
)

// Speed levels accepted by the START command. 1 is fastest, 5 slowest.
const (
	MinSpeed = 1
	MaxSpeed = 5
)

// ClampAngle bounds an angle to the actuator's range.
func ClampAngle(a int) int {
	if a < MinAngle {
		return MinAngle
	}
	if a > MaxAngle {
		return MaxAngle
	}
	return a
}

// ClampSpeed bounds a speed level to the protocol's range.
func ClampSpeed(s int) int {
	if s < MinSpeed {
		return MinSpeed
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}

// Telemetry line prefixes shared by the firmware (writer) and the host
// controller (reader).
const (
	HeartbeatPrefix     = "Angle:"
	TargetReachedPrefix = "TARGET_REACHED at "
	ReceivedPrefix      = "Received: "
)

// FormatHeartbeat builds the periodic position report line.
func FormatHeartbeat(angle int) string {
	return HeartbeatPrefix + strconv.Itoa(angle)
}

// FormatTargetReached builds the one-shot arrival notification.
func FormatTargetReached(angle int) string {
	return TargetReachedPrefix + strconv.Itoa(angle)
}

// FormatReceived builds the echo emitted for every inbound line.
func FormatReceived(line string) string {
	return ReceivedPrefix + line
}

// FormatStartAck builds the acknowledgement for an accepted START.
func FormatStartAck(target, current, speed int) string {
	return "START - Target: " + strconv.Itoa(target) +
		", Current: " + strconv.Itoa(current) +
		", Speed: " + strconv.Itoa(speed)
}

// FormatStopAck builds the acknowledgement for an accepted STOP.
func FormatStopAck(current int) string {
	return "STOPPED at angle: " + strconv.Itoa(current)
}

// FormatResetAck builds the acknowledgement for an accepted RESET.
func FormatResetAck(angle int) string {
	return "RESET to: " + strconv.Itoa(angle)
}

// ParseHeartbeat extracts the angle from an "Angle:<n>" line.
func ParseHeartbeat(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, HeartbeatPrefix)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTargetReached extracts the angle from a "TARGET_REACHED at <n>" line.
func ParseTargetReached(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, TargetReachedPrefix)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return v, true
}
