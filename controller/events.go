package controller

import "time"

// EventType classifies a parsed telemetry line.
type EventType int

const (
	// EventLine is any device output that is not a heartbeat or
	// arrival notification (echoes, command acks).
	EventLine EventType = iota
	EventHeartbeat
	EventTargetReached
)

// Event is one parsed line from the device telemetry stream.
type Event struct {
	Type  EventType
	Angle int
	Line  string
	Time  time.Time
}

// Subscribe registers a telemetry listener, returning the channel and
// a cancel func. Slow listeners drop events rather than stall the
// serial reader.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *Controller) publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
