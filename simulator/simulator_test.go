package simulator

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/servoctl"
	"github.com/calvinmclean/servoctl/firmware/device"
)

func fastConfig() device.Config {
	return device.Config{
		MinStepInterval:   2 * time.Millisecond,
		MaxStepInterval:   10 * time.Millisecond,
		TelemetryInterval: 20 * time.Millisecond,
		InitialAngle:      90,
		StartupSettle:     time.Millisecond,
	}
}

// readLines pumps telemetry lines from the port into a channel so
// tests can wait with a deadline.
func readLines(t *testing.T, p *Port) <-chan string {
	t.Helper()
	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(p)
		for scanner.Scan() {
			ch <- strings.TrimRight(scanner.Text(), "\r")
		}
	}()
	return ch
}

func waitForLine(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed waiting for %q", want)
			}
			if line == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestSimulatorReset(t *testing.T) {
	p, err := Open(fastConfig())
	require.NoError(t, err)
	defer p.Close()

	lines := readLines(t, p)

	_, err = io.WriteString(p, "RESET,45\n")
	require.NoError(t, err)

	waitForLine(t, lines, "Received: RESET,45")
	waitForLine(t, lines, "RESET to: 45")
	assert.Equal(t, 45, p.Device().Angle())
}

func TestSimulatorSeek(t *testing.T) {
	p, err := Open(fastConfig())
	require.NoError(t, err)
	defer p.Close()

	lines := readLines(t, p)

	_, err = io.WriteString(p, "START,95,1\n")
	require.NoError(t, err)

	waitForLine(t, lines, "START - Target: 95, Current: 90, Speed: 1")
	waitForLine(t, lines, "TARGET_REACHED at 95")

	assert.Equal(t, 95, p.Device().Angle())
	// one degree at a time, starting from the initial position
	assert.Equal(t, []int{90, 91, 92, 93, 94, 95}, p.Device().History())
}

func TestSimulatorHeartbeats(t *testing.T) {
	p, err := Open(fastConfig())
	require.NoError(t, err)
	defer p.Close()

	lines := readLines(t, p)

	beats := 0
	deadline := time.After(5 * time.Second)
	for beats < 3 {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed before enough heartbeats")
			}
			if angle, ok := servoctl.ParseHeartbeat(line); ok {
				assert.Equal(t, 90, angle)
				beats++
			}
		case <-deadline:
			t.Fatalf("timed out after %d heartbeats", beats)
		}
	}
}

func TestSimulatorCloseUnblocksRead(t *testing.T) {
	p, err := Open(fastConfig())
	require.NoError(t, err)

	lines := readLines(t, p)
	require.NoError(t, p.Close())

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("read did not unblock after close")
		}
	}
}

func TestSimulatorRejectsBadConfig(t *testing.T) {
	_, err := Open(device.Config{
		MinStepInterval: 10 * time.Millisecond,
		MaxStepInterval: 2 * time.Millisecond,
	})
	assert.Error(t, err)
}
