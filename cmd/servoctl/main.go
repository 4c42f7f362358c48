package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/calvinmclean/servoctl/bridge"
	"github.com/calvinmclean/servoctl/controller"
	"github.com/calvinmclean/servoctl/firmware/device"
	"github.com/calvinmclean/servoctl/simulator"
)

func main() {
	var (
		portName   string
		baudRate   int
		sim        bool
		bridgeAddr string
	)
	flag.StringVar(&portName, "port", "", "Serial port of the device (default: first USB serial port)")
	flag.IntVar(&baudRate, "baud", 0, "Serial baud rate")
	flag.BoolVar(&sim, "sim", false, "Run against a simulated device instead of a serial port")
	flag.StringVar(&bridgeAddr, "bridge", "", "Serve the telemetry bridge on this address (e.g. :8374)")
	flag.Parse()

	cfg, err := controller.LoadConfig()
	if err != nil {
		fatal(err)
	}
	if portName != "" {
		cfg.SerialPort = portName
	}
	if baudRate != 0 {
		cfg.BaudRate = baudRate
	}
	if bridgeAddr != "" {
		cfg.BridgeAddr = bridgeAddr
	}

	c, err := newController(cfg, sim)
	if err != nil {
		fatal(err)
	}
	defer c.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.BridgeAddr != "" {
		srv := bridge.New(c, zap.NewNop().Sugar())
		go func() {
			if err := srv.Run(ctx, cfg.BridgeAddr); err != nil {
				fmt.Fprintln(os.Stderr, "bridge error:", err)
			}
		}()
	}

	if err := c.Run(ctx, os.Stdin, os.Stdout); err != nil {
		fatal(err)
	}
}

func newController(cfg controller.Config, sim bool) (*controller.Controller, error) {
	if !sim {
		return controller.Open(cfg)
	}

	port, err := simulator.Open(device.Config{StartupSettle: 100 * time.Millisecond})
	if err != nil {
		return nil, err
	}
	return controller.New(cfg, port), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
