// Package controller is the host side of the serial link: it forwards
// protocol lines to the device, consumes its telemetry stream, and
// records commanded-vs-feedback samples.
package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calvinmclean/servoctl"
	"github.com/calvinmclean/servoctl/firmware/commands"
)

// Controller manages one device session over a serial port (or the
// simulator's in-memory port).
type Controller struct {
	cfg  Config
	port io.ReadWriteCloser
	log  *zap.SugaredLogger
	rec  *Recorder

	mu            sync.Mutex
	lastCommanded int
	haveCommanded bool
	lastAngle     int
	settled       bool
	subs          map[chan Event]struct{}

	writeMu sync.Mutex
}

// New wraps an already-open port.
func New(cfg Config, port io.ReadWriteCloser) *Controller {
	cfg = cfg.withDefaults()
	return &Controller{
		cfg:       cfg,
		port:      port,
		log:       newLogger(cfg.LogLevel),
		rec:       NewRecorder(cfg.RecorderSize),
		lastAngle: servoctl.DefaultAngle,
		subs:      make(map[chan Event]struct{}),
	}
}

// NewFromEnv loads config and opens the configured serial port,
// falling back to the first USB serial device found.
func NewFromEnv() (*Controller, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return Open(cfg)
}

// Open resolves the serial port named by cfg and dials it.
func Open(cfg Config) (*Controller, error) {
	cfg = cfg.withDefaults()
	if cfg.SerialPort == "" {
		ports, err := GetSerialPorts()
		if err != nil && !errors.Is(err, ErrNoUSBSerial) {
			return nil, err
		}
		if len(ports) == 0 {
			return nil, ErrNoUSBSerial
		}
		cfg.SerialPort = ports[0]
	}
	if cfg.SerialPort == SerialPortNone {
		return nil, errors.New("no serial port configured")
	}

	port, err := openPort(cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, port), nil
}

func (c *Controller) Close() error {
	return c.port.Close()
}

// Recorder exposes the sample recorder.
func (c *Controller) Recorder() *Recorder { return c.rec }

// Snapshot returns the last reported angle and whether the device has
// settled at its target.
func (c *Controller) Snapshot() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAngle, c.settled
}

// Run bridges user input from r to the device and device telemetry to
// w until the context is cancelled or either stream ends.
func (c *Controller) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	readErr := make(chan error, 1)
	go func() {
		readErr <- c.readTelemetry(w)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.handleInput(line, w); err != nil {
				c.log.Warnw("input rejected", "line", line, "err", err)
				fmt.Fprintln(w, "error:", err)
			}
		}
	}
}

func (c *Controller) readTelemetry(w io.Writer) error {
	scanner := bufio.NewScanner(c.port)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		c.handleLine(line, w)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading telemetry: %w", err)
	}
	return errors.New("telemetry stream closed")
}

func (c *Controller) handleLine(line string, w io.Writer) {
	fmt.Fprintln(w, line)
	now := time.Now()

	if angle, ok := servoctl.ParseHeartbeat(line); ok {
		c.mu.Lock()
		c.lastAngle = angle
		commanded, have := c.lastCommanded, c.haveCommanded
		c.mu.Unlock()

		if have {
			c.rec.Add(float64(commanded), float64(angle), now)
		}
		c.publish(Event{Type: EventHeartbeat, Angle: angle, Line: line, Time: now})
		c.log.Debugw("heartbeat", "angle", angle)
		return
	}

	if angle, ok := servoctl.ParseTargetReached(line); ok {
		c.mu.Lock()
		c.lastAngle = angle
		c.settled = true
		c.mu.Unlock()

		c.publish(Event{Type: EventTargetReached, Angle: angle, Line: line, Time: now})
		c.log.Infow("target reached", "angle", angle)
		return
	}

	c.publish(Event{Type: EventLine, Line: line, Time: now})
	c.log.Debugw("device", "line", line)
}

// handleInput runs local verbs (stats, save, clear) or forwards the
// line to the device.
func (c *Controller) handleInput(line string, w io.Writer) error {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "stats":
		s := c.rec.Stats()
		fmt.Fprintf(w, "samples=%d avg_error=%.2f max_error=%.2f std_error=%.2f\n",
			s.Count, s.AvgError, s.MaxError, s.StdError)
		return nil
	case "save":
		if len(fields) != 2 {
			return errors.New("usage: save <file>")
		}
		f, err := os.Create(fields[1])
		if err != nil {
			return fmt.Errorf("creating %s: %w", fields[1], err)
		}
		defer f.Close()
		return c.rec.ExportCSV(f)
	case "clear":
		c.rec.Clear()
		return nil
	}

	return c.Send(line)
}

// Send normalizes and validates one protocol line, then writes it to
// the device. Space-separated input like "start 90 3" is accepted and
// converted to the comma form.
func (c *Controller) Send(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.Contains(line, ",") {
		line = strings.Join(strings.Fields(line), ",")
	}
	if i := strings.Index(line, ","); i >= 0 {
		line = strings.ToUpper(line[:i]) + line[i:]
	} else {
		line = strings.ToUpper(line)
	}

	cmd, fields, err := commands.ParseLine(line)
	if err != nil {
		return fmt.Errorf("%w: %q", err, line)
	}

	c.mu.Lock()
	switch cmd {
	case commands.StartCommand:
		c.lastCommanded = servoctl.ClampAngle(fields[0])
		c.haveCommanded = true
		c.settled = false
	case commands.ResetCommand:
		c.lastCommanded = servoctl.ClampAngle(fields[0])
		c.haveCommanded = true
		c.settled = true
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	_, werr := io.WriteString(c.port, line+"\n")
	c.writeMu.Unlock()
	if werr != nil {
		return fmt.Errorf("writing command: %w", werr)
	}

	c.log.Infow("command sent", "line", line)
	return nil
}
