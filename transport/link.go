package transport

import (
	"fmt"

	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/digiware/protocol"
)

// Topology selects how many transceivers a node has.
type Topology uint8

const (
	// TopologySingle shares one radio and switches it to transmit around
	// every write.
	TopologySingle Topology = iota
	// TopologyDual keeps one radio listening and another transmitting.
	TopologyDual
)

func (t Topology) String() string {
	if t == TopologyDual {
		return "dual"
	}
	return "single"
}

func ParseTopology(s string) (Topology, error) {
	switch s {
	case "", "single":
		return TopologySingle, nil
	case "dual":
		return TopologyDual, nil
	}
	return TopologySingle, fmt.Errorf("unknown radio topology %q", s)
}

// PacketSource is the receive half of a radio: anything that can be polled
// for a packet.
type PacketSource interface {
	Available() bool
	Read(buf []byte) (n int, pipe uint8)
}

// Sender is the transmit half of a radio.
type Sender interface {
	Send(to proto.Address, data []byte) error
}

// Link is a node's view of the radio, whichever topology backs it.
type Link struct {
	topology Topology
	rx       *Radio
	tx       *Radio
	log      *logrus.Entry
}

// NewLink builds a single-radio link.
func NewLink(d RadioDriver) *Link {
	r := NewRadio(d)
	return &Link{
		topology: TopologySingle,
		rx:       r,
		tx:       r,
		log:      logrus.WithField("component", "link"),
	}
}

// NewDualLink builds a link with separate receive and transmit radios.
func NewDualLink(rx, tx RadioDriver) *Link {
	return &Link{
		topology: TopologyDual,
		rx:       NewRadio(rx),
		tx:       NewRadio(tx),
		log:      logrus.WithField("component", "link"),
	}
}

func (l *Link) Topology() Topology { return l.topology }

// Begin powers up the radio(s) and starts listening on the given addresses.
func (l *Link) Begin(channel uint8, listen ...proto.Address) error {
	if err := l.rx.Begin(channel); err != nil {
		return err
	}
	if l.topology == TopologyDual {
		if err := l.tx.Begin(channel); err != nil {
			return err
		}
		l.tx.SetMode(ModeTransmitting)
	}
	if err := l.rx.Listen(listen...); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"topology": l.topology, "channel": channel}).Info("link up")
	return nil
}

func (l *Link) Available() bool { return l.rx.Available() }

func (l *Link) Read(buf []byte) (int, uint8) { return l.rx.Read(buf) }

// Send writes one packet. On a single radio the previous mode is restored
// afterwards, so a listening node goes back to listening.
func (l *Link) Send(to proto.Address, data []byte) error {
	if l.topology == TopologySingle {
		prev := l.tx.Mode()
		l.tx.SetMode(ModeTransmitting)
		defer l.tx.SetMode(prev)
	}
	if err := l.tx.Transmit(to, data); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"to": to, "bytes": len(data)}).Debug("packet sent")
	return nil
}

// Pipes returns the listening addresses by pipe index.
func (l *Link) Pipes() []proto.Address { return l.rx.Pipes() }
