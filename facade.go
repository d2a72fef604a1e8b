// Package digiware provides a façade over the turn controller's radio layer:
// the wire vocabulary, the link, and the pollers built on it.
package digiware

import (
	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

// The radio constructors are split into build-tag specific files:
// - constructors_nrf.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for Linux hosts and tests (//go:build !tinygo && !baremetal)

type (
	Address        = proto.Address
	Message        = proto.Message
	Kind           = proto.Kind
	Codec          = proto.Codec
	Link           = transport.Link
	Transmitter    = transport.Transmitter
	Receiver       = transport.Receiver
	TurnDetector   = transport.TurnDetector
	LandingChannel = transport.LandingChannel
)

var (
	ErrInvalidPayload   = proto.ErrInvalidPayload
	ErrAmbiguousPayload = proto.ErrAmbiguousPayload
	ErrInvalidChannel   = proto.ErrInvalidChannel
	ErrBusy             = transport.ErrBusy
)

const (
	KindNone        = proto.KindNone
	KindTurnAdvance = proto.KindTurnAdvance
	KindRollRequest = proto.KindRollRequest
	KindLanding     = proto.KindLanding

	TokenGo   = proto.TokenGo
	TokenRoll = proto.TokenRoll
)

// Pollers sharing one link, as both node roles use them.
type Pollers struct {
	Turn    *transport.TurnDetector
	Landing *transport.LandingChannel
	Tx      *transport.Transmitter
}

func NewPollers(link *transport.Link, codec proto.Codec, opts ...transport.TransmitterOption) Pollers {
	return Pollers{
		Turn:    transport.NewTurnDetector(link, codec),
		Landing: transport.NewLandingChannel(link, codec),
		Tx:      transport.NewTransmitter(link, codec, opts...),
	}
}
