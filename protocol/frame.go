package protocol

import (
	"encoding/binary"
	"hash/crc32"
)

// Frame is the explicitly framed form of a message. It fits one radio packet.
// Layout: Length(1) | Kind(1) | Seq(2) | Payload(0-23) | CRC32(4) | Terminal(1)
// Length counts everything AFTER the length byte (so full frame minus 1).
type Frame struct {
	Length  byte
	Kind    Kind
	Seq     uint16
	Payload []byte
	CRC     uint32 // decoded frames only; ignored by encoder
}

// EncodeFrame serialises f, truncating the payload to MaxFramePayload.
func EncodeFrame(f *Frame) []byte {
	if f == nil {
		return make([]byte, 0)
	}

	payloadLen := len(f.Payload)
	if payloadLen > MaxFramePayload {
		payloadLen = MaxFramePayload
	}

	bodyLen := headerWithoutLen + payloadLen + CRCSize + TerminalSize // bytes AFTER Length field
	totalLen := LengthFieldSize + bodyLen

	data := make([]byte, totalLen)
	data[0] = byte(bodyLen)
	data[1] = byte(f.Kind)
	binary.LittleEndian.PutUint16(data[2:4], f.Seq)
	copy(data[FrameHeaderSize:], f.Payload[:payloadLen])

	// CRC covers kind, seq and payload so a corrupted type byte is caught too
	crc := crc32.ChecksumIEEE(data[LengthFieldSize : FrameHeaderSize+payloadLen])
	crcPos := FrameHeaderSize + payloadLen
	binary.LittleEndian.PutUint32(data[crcPos:crcPos+CRCSize], crc)

	data[totalLen-1] = FrameTerminal

	f.Length = byte(bodyLen)
	return data
}

// DecodeFrame parses a frame from the start of data. Trailing bytes beyond
// the declared length (receive buffer padding) are ignored. It returns nil
// for anything that is not a well-formed frame.
func DecodeFrame(data []byte) *Frame {
	minLen := FrameHeaderSize + CRCSize + TerminalSize
	if len(data) < minLen {
		return nil
	}

	bodyLen := int(data[0])
	if bodyLen+LengthFieldSize > len(data) || bodyLen+LengthFieldSize > MaxFrameSize {
		return nil
	}

	payloadLen := bodyLen - headerWithoutLen - CRCSize - TerminalSize
	if payloadLen < 0 || payloadLen > MaxFramePayload {
		return nil
	}

	if data[LengthFieldSize+bodyLen-1] != FrameTerminal {
		return nil
	}

	crcOffset := FrameHeaderSize + payloadLen
	recvCRC := binary.LittleEndian.Uint32(data[crcOffset : crcOffset+CRCSize])
	if recvCRC != crc32.ChecksumIEEE(data[LengthFieldSize:crcOffset]) {
		return nil
	}

	f := &Frame{
		Length:  byte(bodyLen),
		Kind:    Kind(data[1]),
		Seq:     binary.LittleEndian.Uint16(data[2:4]),
		Payload: make([]byte, payloadLen),
		CRC:     recvCRC,
	}
	copy(f.Payload, data[FrameHeaderSize:crcOffset])
	return f
}

// FramedCodec carries an explicit kind byte, so control tokens and landing
// payloads never share a namespace.
type FramedCodec struct{}

func (FramedCodec) Name() string    { return FramingFramed }
func (FramedCodec) MaxPayload() int { return MaxFramePayload }

func (FramedCodec) Encode(m Message) ([]byte, error) {
	switch m.Kind {
	case KindTurnAdvance, KindRollRequest:
		if m.Payload != "" {
			return nil, ErrInvalidPayload
		}
	case KindLanding:
		if len(m.Payload) == 0 || len(m.Payload) > MaxFramePayload {
			return nil, ErrInvalidPayload
		}
	default:
		return nil, ErrUnknownKind
	}
	return EncodeFrame(&Frame{Kind: m.Kind, Seq: m.Seq, Payload: []byte(m.Payload)}), nil
}

func (FramedCodec) Decode(buf []byte) (Message, bool) {
	f := DecodeFrame(buf)
	if f == nil {
		return Message{}, false
	}
	switch f.Kind {
	case KindTurnAdvance, KindRollRequest:
		if len(f.Payload) != 0 {
			return Message{}, false
		}
	case KindLanding:
		if len(f.Payload) == 0 {
			return Message{}, false
		}
	default:
		return Message{}, false
	}
	return Message{Kind: f.Kind, Seq: f.Seq, Payload: string(f.Payload)}, true
}
