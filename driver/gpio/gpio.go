//go:build !tinygo && !baremetal

// Package gpio exposes periph.io GPIO lines as input pins.
package gpio

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/ystepanoff/digiware/input"
)

// Pull selects the input bias.
type Pull string

const (
	PullUp   Pull = "up"
	PullDown Pull = "down"
	PullNone Pull = "none"
)

func (p Pull) periph() (gpio.Pull, error) {
	switch p {
	case PullUp, "":
		return gpio.PullUp, nil
	case PullDown:
		return gpio.PullDown, nil
	case PullNone:
		return gpio.Float, nil
	}
	return gpio.PullNoChange, fmt.Errorf("unknown pull %q", string(p))
}

// Pin adapts a periph input line to input.Pin.
type Pin struct {
	in gpio.PinIn
}

var _ input.Pin = (*Pin)(nil)

// Open configures the named line ("GPIO17", "P1_11", ...) as an input
// without edge detection; the control loop polls it.
func Open(name string, pull Pull) (*Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	bias, err := pull.periph()
	if err != nil {
		return nil, err
	}
	if err := p.In(bias, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("gpio %q: %w", name, err)
	}
	return &Pin{in: p}, nil
}

func (p *Pin) Get() input.Level { return input.Level(p.in.Read()) }
