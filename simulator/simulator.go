// Package simulator runs the real firmware loop against an in-memory
// serial port and a recorded actuator, so the host stack can be used
// and tested without hardware.
package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/calvinmclean/servoctl"
	"github.com/calvinmclean/servoctl/firmware/commands"
	"github.com/calvinmclean/servoctl/firmware/device"
)

// passDelay paces the simulated scheduler between passes. On real
// hardware the loop busy-polls; on a host that would pin a core.
const passDelay = time.Millisecond

// Actuator records every commanded angle in place of a physical servo.
type Actuator struct {
	mu      sync.Mutex
	angle   int
	history []int
}

func (a *Actuator) SetAngle(angle int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.angle = angle
	a.history = append(a.history, angle)
	return nil
}

// Angle returns the most recently commanded angle.
func (a *Actuator) Angle() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.angle
}

// History returns every angle commanded so far, in order.
func (a *Actuator) History() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int, len(a.history))
	copy(out, a.history)
	return out
}

// Port is the host-facing end of the simulated serial link. Writes are
// command bytes for the device; Reads deliver its telemetry. Read
// blocks like a real port, while the device side polls without
// blocking, matching the firmware's contract.
type Port struct {
	toDevice *fifo
	toHost   *fifo
	actuator *Actuator
	cancel   context.CancelFunc
	done     chan struct{}
}

// Open starts the firmware loop with the given config and returns the
// host end of the link.
func Open(cfg device.Config) (*Port, error) {
	p := &Port{
		toDevice: newFifo(),
		toHost:   newFifo(),
		actuator: &Actuator{angle: servoctl.DefaultAngle},
		done:     make(chan struct{}),
	}

	dev, err := device.New(p.actuator, p.toHost, cfg)
	if err != nil {
		return nil, err
	}
	runner := commands.NewRunner(p.toDevice, p.toHost, dev)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go func() {
		defer close(p.done)
		dev.Settle()
		for ctx.Err() == nil {
			runner.Tick()
			time.Sleep(passDelay)
		}
	}()

	return p, nil
}

func (p *Port) Read(b []byte) (int, error)  { return p.toHost.Read(b) }
func (p *Port) Write(b []byte) (int, error) { return p.toDevice.Write(b) }

// Close stops the loop and unblocks any pending Read.
func (p *Port) Close() error {
	p.cancel()
	<-p.done
	p.toDevice.Close()
	p.toHost.Close()
	return nil
}

// Device returns the simulated actuator for inspection.
func (p *Port) Device() *Actuator { return p.actuator }
