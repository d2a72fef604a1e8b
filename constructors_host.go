//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (Linux hosts and tests).
package digiware

import (
	"errors"
	"fmt"
	"io"

	"github.com/ystepanoff/digiware/config"
	"github.com/ystepanoff/digiware/driver/nrf24"
	"github.com/ystepanoff/digiware/driver/stub"
	"github.com/ystepanoff/digiware/transport"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// NewDriver opens one transceiver: "nrf24" on the given SPI port and CE pin,
// or "stub" for an unconnected in-memory radio.
func NewDriver(kind, spiPort, cePin string) (transport.RadioDriver, io.Closer, error) {
	switch kind {
	case "nrf24":
		d, port, err := nrf24.Open(spiPort, cePin)
		if err != nil {
			return nil, nil, err
		}
		return d, port, nil
	case "stub":
		return stub.New(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown radio driver %q", kind)
}

// NewLink opens the radio(s) described by r. The link is not begun yet.
func NewLink(r config.RadioConfig) (*transport.Link, io.Closer, error) {
	topology, err := r.TopologyKind()
	if err != nil {
		return nil, nil, err
	}
	rx, rxClose, err := NewDriver(r.Driver, r.SPIPort, r.CEPin)
	if err != nil {
		return nil, nil, fmt.Errorf("receive radio: %w", err)
	}
	if topology == transport.TopologySingle {
		return transport.NewLink(rx), rxClose, nil
	}

	tx, txClose, err := NewDriver(r.Driver, r.TxSPIPort, r.TxCEPin)
	if err != nil {
		rxClose.Close()
		return nil, nil, fmt.Errorf("transmit radio: %w", err)
	}
	return transport.NewDualLink(rx, tx), closers{rxClose, txClose}, nil
}
