package transport

import (
	"fmt"

	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/digiware/protocol"
)

// Mode is the role a half-duplex radio is currently playing.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeListening
	ModeTransmitting
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeListening:
		return "listening"
	case ModeTransmitting:
		return "transmitting"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Radio wraps a driver with an explicit mode so role switches happen in one
// place instead of in ad hoc setup functions.
type Radio struct {
	driver     RadioDriver
	mode       Mode
	pipes      []proto.Address
	writeTo    proto.Address
	hasWriteTo bool
	log        *logrus.Entry
}

func NewRadio(d RadioDriver) *Radio {
	return &Radio{
		driver: d,
		log:    logrus.WithField("component", "radio"),
	}
}

// Begin powers up the transceiver on the given channel. The radio is idle
// afterwards.
func (r *Radio) Begin(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	if err := r.driver.Begin(); err != nil {
		return fmt.Errorf("radio begin: %w", err)
	}
	if err := r.driver.SetChannel(channel); err != nil {
		return fmt.Errorf("radio channel %d: %w", channel, err)
	}
	r.mode = ModeIdle
	return nil
}

// Listen opens one reading pipe per address, in order, and starts listening.
func (r *Radio) Listen(addrs ...proto.Address) error {
	if len(addrs) == 0 {
		return ErrNoPipes
	}
	if len(addrs) > proto.MaxPipes {
		return ErrTooManyPipes
	}
	for i, a := range addrs {
		if err := r.driver.OpenReadingPipe(uint8(i), a); err != nil {
			return fmt.Errorf("open reading pipe %d (%s): %w", i, a, err)
		}
	}
	r.pipes = append(r.pipes[:0], addrs...)
	r.SetMode(ModeListening)
	r.log.WithField("pipes", addrs).Info("listening")
	return nil
}

// Pipes returns the addresses opened by Listen, indexed by pipe number.
func (r *Radio) Pipes() []proto.Address { return r.pipes }

func (r *Radio) Mode() Mode { return r.mode }

func (r *Radio) SetMode(m Mode) {
	if m == r.mode {
		return
	}
	if m == ModeListening {
		r.driver.StartListening()
	} else if r.mode == ModeListening {
		r.driver.StopListening()
	}
	r.mode = m
}

// Available reports a pending packet. A radio that is not listening never
// has one.
func (r *Radio) Available() bool {
	return r.mode == ModeListening && r.driver.Available()
}

func (r *Radio) Read(buf []byte) (int, uint8) {
	return r.driver.Read(buf)
}

// Transmit writes one packet to addr. The radio must be in ModeTransmitting.
func (r *Radio) Transmit(to proto.Address, data []byte) error {
	if r.mode != ModeTransmitting {
		return fmt.Errorf("transmit in %s mode", r.mode)
	}
	if !r.hasWriteTo || r.writeTo != to {
		if err := r.driver.OpenWritingPipe(to); err != nil {
			return fmt.Errorf("open writing pipe %s: %w", to, err)
		}
		r.writeTo, r.hasWriteTo = to, true
	}
	if !r.driver.Write(data) {
		return ErrWriteFailed
	}
	return nil
}
