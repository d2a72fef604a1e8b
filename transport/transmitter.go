package transport

import (
	"time"

	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/digiware/protocol"
)

// DefaultHoldoff is the quiet time after each send. The Arduino nodes
// block for this long after every write.
const DefaultHoldoff = 100 * time.Millisecond

// Transmitter encodes and sends commands. There is no acknowledgement and no
// retry: a lost packet is lost.
type Transmitter struct {
	link    Sender
	codec   proto.Codec
	seq     uint16
	holdoff time.Duration
	readyAt time.Time
	now     func() time.Time
	log     *logrus.Entry
}

type TransmitterOption func(*Transmitter)

// WithHoldoff sets the minimum gap between two sends.
func WithHoldoff(d time.Duration) TransmitterOption {
	return func(t *Transmitter) {
		if d >= 0 {
			t.holdoff = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TransmitterOption {
	return func(t *Transmitter) {
		if now != nil {
			t.now = now
		}
	}
}

func NewTransmitter(link Sender, codec proto.Codec, opts ...TransmitterOption) *Transmitter {
	t := &Transmitter{
		link:    link,
		codec:   codec,
		holdoff: DefaultHoldoff,
		now:     time.Now,
		log:     logrus.WithField("component", "transmitter"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ready reports whether the holdoff since the last send has elapsed.
func (t *Transmitter) Ready() bool { return !t.now().Before(t.readyAt) }

// MaxPayload is the longest landing payload the configured framing can carry.
func (t *Transmitter) MaxPayload() int { return t.codec.MaxPayload() }

// Send encodes m with the next sequence number and writes it to addr.
// A send inside the holdoff window fails with ErrBusy without touching the
// radio.
func (t *Transmitter) Send(to proto.Address, m proto.Message) error {
	now := t.now()
	if now.Before(t.readyAt) {
		return ErrBusy
	}

	m.Seq = t.seq
	data, err := t.codec.Encode(m)
	if err != nil {
		return err
	}
	t.seq++

	if err := t.link.Send(to, data); err != nil {
		t.log.WithError(err).WithField("to", to).Warn("send failed")
		return err
	}
	t.readyAt = now.Add(t.holdoff)
	t.log.WithFields(logrus.Fields{"to": to, "kind": m.Kind, "seq": m.Seq}).Debug("sent")
	return nil
}

func (t *Transmitter) SendTurnAdvance(to proto.Address) error {
	return t.Send(to, proto.Message{Kind: proto.KindTurnAdvance})
}

func (t *Transmitter) SendRollRequest(to proto.Address) error {
	return t.Send(to, proto.Message{Kind: proto.KindRollRequest})
}

func (t *Transmitter) SendLanding(to proto.Address, payload string) error {
	return t.Send(to, proto.Message{Kind: proto.KindLanding, Payload: payload})
}
