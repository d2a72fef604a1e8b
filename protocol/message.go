package protocol

import "fmt"

// Kind identifies what a received packet means to the application loop.
type Kind uint8

const (
	KindNone Kind = iota
	KindTurnAdvance
	KindRollRequest
	KindLanding
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTurnAdvance:
		return "turn-advance"
	case KindRollRequest:
		return "roll-request"
	case KindLanding:
		return "landing"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Message is a decoded packet. Seq is only carried by framed packets.
type Message struct {
	Kind    Kind
	Seq     uint16
	Payload string
}

// Codec turns messages into packet bytes and back. Decode never fails
// loudly: anything it cannot interpret is reported as no message.
type Codec interface {
	Encode(m Message) ([]byte, error)
	Decode(buf []byte) (Message, bool)
	MaxPayload() int
	Name() string
}

const (
	FramingLegacy = "legacy"
	FramingFramed = "framed"
)

// LandingDecoder is implemented by codecs that read landing results with a
// looser test than Decode applies to control traffic.
type LandingDecoder interface {
	DecodeLanding(buf []byte) (payload string, ok bool)
}

// ParseFraming returns the codec for a configured framing name.
func ParseFraming(name string) (Codec, error) {
	switch name {
	case "", FramingLegacy:
		return LegacyCodec{}, nil
	case FramingFramed:
		return FramedCodec{}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFraming, name)
}
