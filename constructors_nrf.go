//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package digiware

import (
	"github.com/ystepanoff/digiware/driver/nrf"
	"github.com/ystepanoff/digiware/transport"
)

// NewDriver returns the on-chip nRF52 radio.
func NewDriver() transport.RadioDriver { return nrf.New() }

// NewLink returns a single-radio link; the nRF52 has one RADIO peripheral.
func NewLink() *transport.Link { return transport.NewLink(nrf.New()) }
