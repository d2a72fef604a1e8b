package protocol

import "errors"

var (
	ErrInvalidPayload   = errors.New("invalid payload size")
	ErrAmbiguousPayload = errors.New("payload collides with a reserved command token")
	ErrInvalidAddress   = errors.New("invalid pipe address")
	ErrInvalidChannel   = errors.New("invalid channel (valid range: 0-125)")
	ErrUnknownFraming   = errors.New("unknown framing")
	ErrUnknownKind      = errors.New("unknown message kind")
)
