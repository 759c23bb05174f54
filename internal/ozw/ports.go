package ozw

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the serial rate of Z-Wave USB controllers.
const DefaultBaudRate = 115200

// ListPorts returns the serial device paths present on the host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

// ProbePort opens and closes a controller port to make sure it is present
// and not held by another process. Open failures are retried until ctx ends,
// since USB sticks can take a moment to enumerate.
func ProbePort(ctx context.Context, path string, baudRate int) error {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	var lastErr error
	for {
		port, err := serial.Open(path, mode)
		if err == nil {
			_ = port.SetDTR(true)
			_ = port.SetRTS(true)
			return port.Close()
		}
		lastErr = err
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return fmt.Errorf("probe %s: %w", path, lastErr)
		}
	}
}
