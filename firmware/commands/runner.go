package commands

import (
	"context"
	"io"
	"strings"

	"github.com/calvinmclean/servoctl"
)

// ByteReader provides serial input one byte at a time. ReadByte must
// not block: it returns an error when no byte is available, the same
// contract as machine.Serial on tinygo targets.
type ByteReader interface {
	ReadByte() (byte, error)
}

// maxLineLen bounds the inbound line buffer. A line that exceeds it is
// discarded through its terminator without being parsed or echoed.
const maxLineLen = 64

// Runner is the cooperative scheduler. Each pass drains at most one
// complete command line, then polls the controller's movement and
// telemetry gates. No pass blocks; pacing comes entirely from the
// controller's elapsed-time checks.
type Runner struct {
	in  ByteReader
	out io.Writer
	c   Controller

	line     []byte
	overflow bool
}

func NewRunner(in ByteReader, out io.Writer, c Controller) *Runner {
	return &Runner{
		in:   in,
		out:  out,
		c:    c,
		line: make([]byte, 0, maxLineLen),
	}
}

// Tick executes one scheduler pass: command ingestion, then motion,
// then telemetry.
func (r *Runner) Tick() {
	if line, ok := r.poll(); ok {
		r.dispatch(line)
	}
	r.c.Step()
	r.c.Report()
}

// Run drives passes until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	for ctx.Err() == nil {
		r.Tick()
	}
}

// poll consumes available bytes until a newline completes a line or
// the input runs dry. A partial line is held across passes.
func (r *Runner) poll() (string, bool) {
	for {
		b, err := r.in.ReadByte()
		if err != nil {
			return "", false
		}
		if b == '\n' {
			if r.overflow {
				r.overflow = false
				r.line = r.line[:0]
				continue
			}
			line := strings.TrimRight(string(r.line), " \t\r")
			r.line = r.line[:0]
			return line, true
		}
		if r.overflow {
			continue
		}
		if len(r.line) >= maxLineLen {
			r.overflow = true
			r.line = r.line[:0]
			continue
		}
		r.line = append(r.line, b)
	}
}

func (r *Runner) dispatch(line string) {
	r.writeLine(servoctl.FormatReceived(line))

	cmd, fields, err := ParseLine(line)
	if err != nil {
		// malformed lines are absorbed, the echo is the only trace
		return
	}
	cmd.Run(r.c, fields)
}

func (r *Runner) writeLine(s string) {
	_, _ = io.WriteString(r.out, s+"\r\n")
}
