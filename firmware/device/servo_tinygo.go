//go:build tinygo

package device

import (
	"machine"

	"tinygo.org/x/drivers/servo"
)

// PWMServo adapts a PWM hobby servo to the Actuator interface.
type PWMServo struct {
	s servo.Servo
}

func NewPWMServo(pwm servo.PWM, pin machine.Pin) (*PWMServo, error) {
	s, err := servo.New(pwm, pin)
	if err != nil {
		return nil, err
	}
	return &PWMServo{s: s}, nil
}

func (p *PWMServo) SetAngle(angle int) error {
	return p.s.SetAngle(angle)
}
