//go:build tinygo || baremetal

// Package machinepin exposes microcontroller pins as input pins.
package machinepin

import (
	"machine"

	"github.com/ystepanoff/digiware/input"
)

type Pin machine.Pin

// Input configures p as an input with pull-up; encoder and switch lines
// idle high.
func Input(p machine.Pin) Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return Pin(p)
}

func (p Pin) Get() input.Level { return input.Level(machine.Pin(p).Get()) }
