//go:build !tinygo && !baremetal

package hub

import (
	"fmt"

	"github.com/tarm/serial"
)

// OpenSerial opens a serial port for a SerialPublisher.
func OpenSerial(name string, baud int) (*serial.Port, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return port, nil
}
