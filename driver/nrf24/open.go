//go:build !tinygo && !baremetal

package nrf24

import (
	"fmt"
	"io"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

// Open initializes periph, opens the named SPI port and CE pin, and returns
// the device along with a closer for the port.
func Open(spiPort, cePin string) (*Device, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(spiPort)
	if err != nil {
		return nil, nil, fmt.Errorf("open spi port %q: %w", spiPort, err)
	}
	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("spi connect: %w", err)
	}
	ce := gpioreg.ByName(cePin)
	if ce == nil {
		port.Close()
		return nil, nil, fmt.Errorf("ce pin %q not found", cePin)
	}
	if err := ce.Out(gpio.Low); err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("ce pin %q: %w", cePin, err)
	}
	return New(conn, ce), port, nil
}
