package device

import (
	"errors"
	"io"
	"time"

	"github.com/calvinmclean/servoctl"
)

const defaultInitialAngle = servoctl.DefaultAngle

// Actuator is the effector contract: a single imperative call with no
// feedback channel. SetAngle is assumed synchronous and non-blocking.
type Actuator interface {
	SetAngle(angle int) error
}

// timerGate rate-limits a recurring action without blocking. Firing
// resets the timestamp to now, so the schedule is drift-tolerant
// rather than drift-free.
type timerGate struct {
	last   time.Time
	period time.Duration
}

func (g *timerGate) ready(now time.Time) bool {
	if now.Sub(g.last) < g.period {
		return false
	}
	g.last = now
	return true
}

func (g *timerGate) reset(now time.Time) {
	g.last = now
}

// Controller owns the actuator state and advances it one degree at a
// time. All methods run on the single scheduler goroutine; there is no
// locking because there is no concurrency.
type Controller struct {
	actuator Actuator
	out      io.Writer
	cfg      Config

	current int
	target  int
	running bool

	move   timerGate
	report timerGate

	now func() time.Time
}

// New initializes the controller at the configured initial angle and
// commands the actuator there. Call Settle before starting the loop.
func New(actuator Actuator, out io.Writer, cfg Config) (*Controller, error) {
	if actuator == nil {
		return nil, errors.New("actuator is required")
	}
	cfg = cfg.withDefaults()
	if cfg.MaxStepInterval < cfg.MinStepInterval {
		return nil, errors.New("MaxStepInterval must not be less than MinStepInterval")
	}

	c := &Controller{
		actuator: actuator,
		out:      out,
		cfg:      cfg,
		current:  servoctl.ClampAngle(cfg.InitialAngle),
		now:      time.Now,
	}
	c.target = c.current
	c.report.period = cfg.TelemetryInterval
	c.report.reset(c.now())

	if err := actuator.SetAngle(c.current); err != nil {
		return nil, errors.New("error setting initial angle: " + err.Error())
	}
	return c, nil
}

// Settle blocks for the configured startup delay. This is the only
// permitted blocking, before the loop starts.
func (c *Controller) Settle() {
	time.Sleep(c.cfg.StartupSettle)
}

// Start begins seeking the target angle at the given speed level.
// Inputs are expected pre-clamped by the protocol handler.
func (c *Controller) Start(target, speed int) {
	c.target = target
	c.move.period = c.stepInterval(speed)
	c.move.reset(c.now())
	c.running = true
	c.writeLine(servoctl.FormatStartAck(c.target, c.current, speed))
}

// Stop freezes the actuator at its current angle.
func (c *Controller) Stop() {
	c.running = false
	c.writeLine(servoctl.FormatStopAck(c.current))
}

// Reset jumps directly to the angle, bypassing stepping.
func (c *Controller) Reset(angle int) {
	c.running = false
	c.current = angle
	c.target = angle
	c.command(angle)
	c.writeLine(servoctl.FormatResetAck(angle))
}

// Step advances one degree toward the target when the movement gate
// has elapsed. On arrival it goes idle and emits the one-shot
// notification.
func (c *Controller) Step() {
	if !c.running {
		return
	}
	if !c.move.ready(c.now()) {
		return
	}
	if c.current < c.target {
		c.current++
		c.command(c.current)
	} else if c.current > c.target {
		c.current--
		c.command(c.current)
	}
	if c.current == c.target {
		c.running = false
		c.writeLine(servoctl.FormatTargetReached(c.current))
	}
}

// Report emits the heartbeat when the telemetry gate has elapsed,
// regardless of motion state.
func (c *Controller) Report() {
	if !c.report.ready(c.now()) {
		return
	}
	c.writeLine(servoctl.FormatHeartbeat(c.current))
}

// CurrentAngle returns the last commanded angle, the firmware's
// position estimate.
func (c *Controller) CurrentAngle() int { return c.current }

// TargetAngle returns the angle currently being sought.
func (c *Controller) TargetAngle() int { return c.target }

// Running reports whether the controller is seeking.
func (c *Controller) Running() bool { return c.running }

// stepInterval maps a speed level linearly between the configured
// interval bounds: speed 1 -> MinStepInterval, speed 5 -> MaxStepInterval.
func (c *Controller) stepInterval(speed int) time.Duration {
	span := c.cfg.MaxStepInterval - c.cfg.MinStepInterval
	steps := time.Duration(servoctl.MaxSpeed - servoctl.MinSpeed)
	return c.cfg.MinStepInterval + time.Duration(speed-servoctl.MinSpeed)*span/steps
}

func (c *Controller) command(angle int) {
	if err := c.actuator.SetAngle(angle); err != nil {
		// the loop never halts itself; report and keep going
		c.writeLine("actuator error: " + err.Error())
	}
}

func (c *Controller) writeLine(s string) {
	_, _ = io.WriteString(c.out, s+"\r\n")
}
