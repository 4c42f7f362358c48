package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoByte = errors.New("no byte available")

// scriptReader hands out bytes in staged chunks. A nil chunk means the
// input runs dry until the next Tick, mimicking a serial port that has
// not received the rest of a line yet.
type scriptReader struct {
	chunks [][]byte
}

func (s *scriptReader) ReadByte() (byte, error) {
	for len(s.chunks) > 0 {
		chunk := s.chunks[0]
		if chunk == nil {
			s.chunks = s.chunks[1:]
			return 0, errNoByte
		}
		if len(chunk) == 0 {
			s.chunks = s.chunks[1:]
			continue
		}
		s.chunks[0] = chunk[1:]
		return chunk[0], nil
	}
	return 0, errNoByte
}

func lines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

func TestRunnerDispatch(t *testing.T) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	r := NewRunner(&scriptReader{chunks: [][]byte{[]byte("START,90,2\n")}}, out, f)

	r.Tick()

	assert.Equal(t, []string{"Received: START,90,2"}, lines(out))
	require.Len(t, f.calls, 1)
	assert.Equal(t, call{name: "start", target: 90, speed: 2}, f.calls[0])
	assert.Equal(t, 1, f.steps)
	assert.Equal(t, 1, f.reports)
}

func TestRunnerStepsWithoutInput(t *testing.T) {
	f := &fakeController{}
	r := NewRunner(&scriptReader{}, &bytes.Buffer{}, f)

	for i := 0; i < 3; i++ {
		r.Tick()
	}

	assert.Empty(t, f.calls)
	assert.Equal(t, 3, f.steps)
	assert.Equal(t, 3, f.reports)
}

func TestRunnerPartialLineAcrossTicks(t *testing.T) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	r := NewRunner(&scriptReader{chunks: [][]byte{
		[]byte("STA"),
		nil,
		[]byte("RT,45"),
		nil,
		[]byte(",1\n"),
	}}, out, f)

	r.Tick()
	r.Tick()
	assert.Empty(t, f.calls)
	assert.Empty(t, out.String())

	r.Tick()
	require.Len(t, f.calls, 1)
	assert.Equal(t, call{name: "start", target: 45, speed: 1}, f.calls[0])
	assert.Equal(t, []string{"Received: START,45,1"}, lines(out))
	assert.Equal(t, 3, f.steps)
}

func TestRunnerOneLinePerTick(t *testing.T) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	r := NewRunner(&scriptReader{chunks: [][]byte{[]byte("STOP\nRESET,10\n")}}, out, f)

	r.Tick()
	require.Len(t, f.calls, 1)
	assert.Equal(t, call{name: "stop"}, f.calls[0])

	r.Tick()
	require.Len(t, f.calls, 2)
	assert.Equal(t, call{name: "reset", angle: 10}, f.calls[1])
	assert.Equal(t, []string{"Received: STOP", "Received: RESET,10"}, lines(out))
}

func TestRunnerMalformedAbsorbed(t *testing.T) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	r := NewRunner(&scriptReader{chunks: [][]byte{[]byte("SPIN,90\n")}}, out, f)

	r.Tick()

	assert.Equal(t, []string{"Received: SPIN,90"}, lines(out))
	assert.Empty(t, f.calls)
	assert.Equal(t, 1, f.steps)
	assert.Equal(t, 1, f.reports)
}

func TestRunnerTrimsCRLF(t *testing.T) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	r := NewRunner(&scriptReader{chunks: [][]byte{[]byte("STOP \r\n")}}, out, f)

	r.Tick()

	assert.Equal(t, []string{"Received: STOP"}, lines(out))
	require.Len(t, f.calls, 1)
	assert.Equal(t, call{name: "stop"}, f.calls[0])
}

func TestRunnerOversizedLineDiscarded(t *testing.T) {
	f := &fakeController{}
	out := &bytes.Buffer{}
	long := strings.Repeat("X", maxLineLen+8) + "\n"
	r := NewRunner(&scriptReader{chunks: [][]byte{[]byte(long + "STOP\n")}}, out, f)

	r.Tick()
	r.Tick()

	assert.Equal(t, []string{"Received: STOP"}, lines(out))
	require.Len(t, f.calls, 1)
	assert.Equal(t, call{name: "stop"}, f.calls[0])
}
