package transport

import (
	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/digiware/protocol"
)

// Packet is a decoded message together with the pipe it arrived on.
type Packet struct {
	proto.Message
	Pipe uint8
}

// Receiver reads at most one packet per poll and decodes it. Nothing is
// queued between polls; a message not polled for is lost with the radio's
// own FIFO.
type Receiver struct {
	src   PacketSource
	codec proto.Codec
	log   *logrus.Entry
}

func NewReceiver(src PacketSource, codec proto.Codec) *Receiver {
	return &Receiver{
		src:   src,
		codec: codec,
		log:   logrus.WithField("component", "receiver"),
	}
}

// Poll returns the next packet if one was available and decodable.
func (r *Receiver) Poll() (Packet, bool) {
	buf, pipe, ok := r.read()
	if !ok {
		return Packet{}, false
	}

	m, ok := r.codec.Decode(buf)
	if !ok {
		r.log.WithFields(logrus.Fields{"pipe": pipe, "raw": buf}).Debug("undecodable packet dropped")
		return Packet{Pipe: pipe}, false
	}
	r.log.WithFields(logrus.Fields{"pipe": pipe, "kind": m.Kind, "payload": m.Payload}).Debug("packet received")
	return Packet{Message: m, Pipe: pipe}, true
}

// PollLanding is Poll for a reader that only expects landing results. Codecs
// implementing proto.LandingDecoder decide what counts as one; for the rest
// any packet not decoded as KindLanding is dropped.
func (r *Receiver) PollLanding() (Packet, bool) {
	buf, pipe, ok := r.read()
	if !ok {
		return Packet{}, false
	}

	if ld, ok := r.codec.(proto.LandingDecoder); ok {
		payload, ok := ld.DecodeLanding(buf)
		if !ok {
			r.log.WithFields(logrus.Fields{"pipe": pipe, "raw": buf}).Debug("control packet on landing path dropped")
			return Packet{Pipe: pipe}, false
		}
		return Packet{Message: proto.Message{Kind: proto.KindLanding, Payload: payload}, Pipe: pipe}, true
	}

	m, ok := r.codec.Decode(buf)
	if !ok || m.Kind != proto.KindLanding {
		r.log.WithFields(logrus.Fields{"pipe": pipe, "raw": buf}).Debug("control packet on landing path dropped")
		return Packet{Pipe: pipe}, false
	}
	return Packet{Message: m, Pipe: pipe}, true
}

// read takes one packet off the radio into a zeroed buffer.
func (r *Receiver) read() ([]byte, uint8, bool) {
	if !r.src.Available() {
		return nil, 0, false
	}

	var buf [proto.PacketSize]byte
	n, pipe := r.src.Read(buf[:])
	if n < 0 || n > len(buf) {
		n = len(buf)
	}
	return buf[:n], pipe, true
}

// TurnState is the state of a TurnDetector after its last poll.
type TurnState uint8

const (
	TurnIdle TurnState = iota
	TurnSignaled
)

func (s TurnState) String() string {
	if s == TurnSignaled {
		return "signaled"
	}
	return "idle"
}

// TurnDetector reports a pending turn-advance exactly once per received
// command.
type TurnDetector struct {
	rx    *Receiver
	state TurnState
}

func NewTurnDetector(src PacketSource, codec proto.Codec) *TurnDetector {
	return &TurnDetector{rx: NewReceiver(src, codec)}
}

// Poll reads one packet if available and reports whether it was a
// turn-advance. The signal lasts for this poll only.
func (d *TurnDetector) Poll() bool {
	d.state = TurnIdle
	p, ok := d.rx.Poll()
	if ok && p.Kind == proto.KindTurnAdvance {
		d.state = TurnSignaled
		return true
	}
	return false
}

func (d *TurnDetector) State() TurnState { return d.state }

// LandingChannel extracts landing-result payloads, discarding control
// tokens that share the same pipe. With the legacy codec only exact tokens
// are discarded; text that merely starts with one is a landing.
type LandingChannel struct {
	rx *Receiver
}

func NewLandingChannel(src PacketSource, codec proto.Codec) *LandingChannel {
	return &LandingChannel{rx: NewReceiver(src, codec)}
}

// Poll reads one packet if available and returns its payload when it is a
// landing result.
func (c *LandingChannel) Poll() (string, bool) {
	p, ok := c.rx.PollLanding()
	if !ok {
		return "", false
	}
	return p.Payload, true
}
