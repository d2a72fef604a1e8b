package transport

import proto "github.com/ystepanoff/digiware/protocol"

// RadioDriver is the interface that wraps the basic half-duplex radio
// operations of an nRF24-style transceiver.
type RadioDriver interface {
	Begin() error
	SetChannel(channel uint8) error
	OpenReadingPipe(pipe uint8, addr proto.Address) error
	OpenWritingPipe(addr proto.Address) error
	StartListening()
	StopListening()
	Available() bool
	// Read copies one received packet into buf and reports which pipe it
	// arrived on.
	Read(buf []byte) (n int, pipe uint8)
	Write(buf []byte) bool
}
