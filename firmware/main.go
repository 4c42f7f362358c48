//go:build tinygo

package main

import (
	"context"
	"machine"

	"github.com/calvinmclean/servoctl/firmware/commands"
	"github.com/calvinmclean/servoctl/firmware/device"
)

func main() {
	srv, err := device.NewPWMServo(machine.PWM3, machine.GP22)
	if err != nil {
		panic(err)
	}

	dev, err := device.New(srv, machine.Serial, device.Config{})
	if err != nil {
		panic(err)
	}
	dev.Settle()

	commands.NewRunner(machine.Serial, machine.Serial, dev).Run(context.Background())
}
