package controller

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.bug.st/serial"
)

// SerialPortNone is the sentinel offered when no port should be opened.
const SerialPortNone = "none"

// ErrNoUSBSerial indicates no USB serial device was found; the full
// port list is still returned alongside it.
var ErrNoUSBSerial = errors.New("no USB serial ports found")

// GetSerialPorts lists attached serial ports, preferring USB devices.
func GetSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	usb := filterUSBPorts(ports)
	if len(usb) == 0 {
		return ports, ErrNoUSBSerial
	}
	return usb, nil
}

func filterUSBPorts(ports []string) []string {
	var usb []string
	for _, p := range ports {
		name := strings.ToLower(p)
		if strings.Contains(name, "usb") || strings.Contains(name, "acm") {
			usb = append(usb, p)
		}
	}
	return usb
}

func openPort(cfg Config) (io.ReadWriteCloser, error) {
	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.SerialPort, err)
	}
	return port, nil
}
