package protocol

// LegacyCodec speaks the Arduino wire format: NUL-terminated ASCII with no
// type field. Message kind is inferred from the text itself, so a landing
// payload that reads as a control token cannot be sent.
type LegacyCodec struct{}

func (LegacyCodec) Name() string    { return FramingLegacy }
func (LegacyCodec) MaxPayload() int { return MaxTextSize }

// Encode returns the text plus its terminator, matching strlen+1 sends.
func (LegacyCodec) Encode(m Message) ([]byte, error) {
	var text string
	switch m.Kind {
	case KindTurnAdvance:
		text = string(TokenGo)
	case KindRollRequest:
		text = string(TokenRoll)
	case KindLanding:
		if len(m.Payload) == 0 || len(m.Payload) > MaxTextSize {
			return nil, ErrInvalidPayload
		}
		// the receiving turn detector matches tokens by prefix
		if Classify([]byte(m.Payload)) != KindLanding {
			return nil, ErrAmbiguousPayload
		}
		text = m.Payload
	default:
		return nil, ErrUnknownKind
	}
	data := make([]byte, len(text)+1)
	copy(data, text)
	return data, nil
}

func (LegacyCodec) Decode(buf []byte) (Message, bool) {
	kind := Classify(buf)
	if kind == KindNone {
		return Message{}, false
	}
	m := Message{Kind: kind}
	if kind == KindLanding {
		m.Payload = string(Content(buf))
	}
	return m, true
}

// DecodeLanding reads buf as a landing result. Only content exactly equal to
// a reserved token is discarded, so "gold" is a landing and "go" is not.
func (LegacyCodec) DecodeLanding(buf []byte) (string, bool) {
	content := Content(buf)
	if len(content) == 0 || IsReserved(string(content)) {
		return "", false
	}
	return string(content), true
}
