package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/calvinmclean/servoctl"
)

// Controller is the motion controller driven by the command loop. Step
// and Report are the time-gated duties polled on every scheduler pass.
type Controller interface {
	Start(target, speed int)
	Stop()
	Reset(angle int)
	Step()
	Report()
}

// Command is one recognized protocol keyword.
type Command struct {
	Keyword     string
	NumFields   int
	Run         func(Controller, []int)
	Description string
}

var (
	StartCommand = &Command{
		Keyword:   "START",
		NumFields: 2,
		Run: func(c Controller, fields []int) {
			c.Start(servoctl.ClampAngle(fields[0]), servoctl.ClampSpeed(fields[1]))
		},
		Description: "Seek to an angle at a speed level. Fields: angle (0-180), speed (1=fast, 5=slow).",
	}
	StopCommand = &Command{
		Keyword:   "STOP",
		NumFields: 0,
		Run: func(c Controller, _ []int) {
			c.Stop()
		},
		Description: "Stop seeking and hold the current angle.",
	}
	ResetCommand = &Command{
		Keyword:   "RESET",
		NumFields: 1,
		Run: func(c Controller, fields []int) {
			c.Reset(servoctl.ClampAngle(fields[0]))
		},
		Description: "Jump directly to an angle without stepping. Fields: angle (0-180).",
	}
)

var commandList = []*Command{
	StartCommand,
	StopCommand,
	ResetCommand,
}

// ErrMalformed reports a line that matched no command or was missing
// required fields. Malformed lines have no effect on the controller.
var ErrMalformed = errors.New("malformed command")

// ParseLine tokenizes one comma-separated command line. Keywords are
// case-sensitive. A required field that is absent makes the line
// malformed; a field that is present but not numeric decodes to zero
// and the clamp in each command's Run keeps it in range. Extra
// trailing fields are ignored.
func ParseLine(line string) (*Command, []int, error) {
	parts := strings.Split(line, ",")
	for _, cmd := range commandList {
		if parts[0] != cmd.Keyword {
			continue
		}
		if len(parts)-1 < cmd.NumFields {
			return nil, nil, ErrMalformed
		}
		fields := make([]int, cmd.NumFields)
		for i := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(parts[i+1]))
			if err != nil {
				v = 0
			}
			fields[i] = v
		}
		return cmd, fields, nil
	}
	return nil, nil, ErrMalformed
}
