// Package hub runs the turn controller: it hands the turn to each player in
// order, rolls for them, tells them where they landed, and collects their
// landing-result report before moving on.
package hub

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

var (
	ErrNoSeats       = errors.New("hub: no players configured")
	ErrDuplicatePipe = errors.New("hub: two players share a pipe")
)

// Radio is what the hub needs from its link.
type Radio interface {
	transport.PacketSource
	transport.Sender
}

// Seat is one player as the hub sees them: where to send, and which of the
// hub's reading pipes their packets arrive on.
type Seat struct {
	Name    string
	Address proto.Address
	Pipe    uint8
}

// Phase is where the hub is within the current player's turn.
type Phase uint8

const (
	PhaseAdvance Phase = iota
	PhaseAwaitRoll
	PhaseSendLanding
	PhaseAwaitReport
)

func (p Phase) String() string {
	switch p {
	case PhaseAdvance:
		return "advance"
	case PhaseAwaitRoll:
		return "await-roll"
	case PhaseSendLanding:
		return "send-landing"
	case PhaseAwaitReport:
		return "await-report"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

type Config struct {
	Codec proto.Codec
	// Holdoff is the quiet time after each send; zero disables it.
	Holdoff time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// Dice returns 1-6; defaults to a clock-seeded die.
	Dice      func() int
	Session   string
	Publisher Publisher
	Tracer    trace.Tracer
}

type seat struct {
	Seat
	peer     *proto.Device
	position int
	inJail   bool
}

type Hub struct {
	rx      *transport.Receiver
	tx      *transport.Transmitter
	seats   []*seat
	current int
	phase   Phase
	landing Move
	turns   int

	now     func() time.Time
	dice    func() int
	session string
	pub     Publisher
	tracer  trace.Tracer

	turnCtx context.Context
	span    trace.Span
	log     *logrus.Entry
}

func New(radio Radio, seats []Seat, cfg Config) (*Hub, error) {
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	pipes := make(map[uint8]bool, len(seats))
	ss := make([]*seat, len(seats))
	for i, s := range seats {
		if pipes[s.Pipe] {
			return nil, fmt.Errorf("%w: pipe %d", ErrDuplicatePipe, s.Pipe)
		}
		pipes[s.Pipe] = true
		ss[i] = &seat{Seat: s, peer: proto.NewPlayer(s.Name, s.Address, s.Pipe)}
	}

	if cfg.Codec == nil {
		cfg.Codec = proto.LegacyCodec{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Dice == nil {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		cfg.Dice = func() int { return r.Intn(6) + 1 }
	}
	if cfg.Session == "" {
		cfg.Session = uuid.NewString()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = nopPublisher{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("digiware/hub")
	}

	h := &Hub{
		rx: transport.NewReceiver(radio, cfg.Codec),
		tx: transport.NewTransmitter(radio, cfg.Codec,
			transport.WithHoldoff(cfg.Holdoff), transport.WithClock(cfg.Now)),
		seats:   ss,
		now:     cfg.Now,
		dice:    cfg.Dice,
		session: cfg.Session,
		pub:     cfg.Publisher,
		tracer:  cfg.Tracer,
		log:     logrus.WithFields(logrus.Fields{"component": "hub", "session": cfg.Session}),
	}
	return h, nil
}

func (h *Hub) Session() string { return h.session }
func (h *Hub) Phase() Phase    { return h.phase }
func (h *Hub) Current() Seat   { return h.seats[h.current].Seat }

// Turns counts completed turns, skipped ones included.
func (h *Hub) Turns() int { return h.turns }

// Position returns the board position of the i-th seat.
func (h *Hub) Position(i int) int { return h.seats[i].position }

// LastSeen is when the i-th seat's player was last heard, zero if never.
func (h *Hub) LastSeen(i int) time.Time { return h.seats[i].peer.LastSeen }

// Alive reports whether the i-th seat's player was heard within timeout.
func (h *Hub) Alive(i int, timeout time.Duration) bool {
	return h.seats[i].peer.IsAlive(h.now(), timeout)
}

// Run steps the hub every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	h.log.WithField("players", len(h.seats)).Info("hub started")
	for {
		select {
		case <-ctx.Done():
			h.endTurn()
			return ctx.Err()
		case <-ticker.C:
			h.Step(ctx)
		}
	}
}

// Step does at most one radio operation and returns.
func (h *Hub) Step(ctx context.Context) {
	s := h.seats[h.current]
	switch h.phase {
	case PhaseAdvance:
		h.advance(ctx, s)
	case PhaseAwaitRoll:
		p, ok := h.poll(s, h.rx.Poll)
		if !ok || p.Kind != proto.KindRollRequest {
			return
		}
		h.landing = Advance(s.position, h.dice())
		s.position = h.landing.To
		s.inJail = h.landing.Jailed
		h.log.WithFields(logrus.Fields{
			"player": s.Name, "roll": h.landing.Roll, "space": h.landing.Space.Name,
		}).Info("rolled")
		h.span.SetAttributes(
			attribute.Int("roll", h.landing.Roll),
			attribute.Int("position", h.landing.To),
			attribute.String("space", h.landing.Space.Name),
		)
		h.publish(Event{
			Type:     EventRoll,
			Player:   s.Name,
			Roll:     h.landing.Roll,
			From:     h.landing.From,
			Position: h.landing.To,
			Space:    h.landing.Space.Name,
			PassedGo: h.landing.Collects(),
			Jailed:   h.landing.Jailed,
		})
		h.phase = PhaseSendLanding
	case PhaseSendLanding:
		if err := h.tx.SendLanding(s.Address, h.landing.Space.Name); err != nil {
			h.sendFailed(err, s)
			return
		}
		h.phase = PhaseAwaitReport
	case PhaseAwaitReport:
		p, ok := h.poll(s, h.rx.PollLanding)
		if !ok {
			return
		}
		h.log.WithFields(logrus.Fields{"player": s.Name, "report": p.Payload}).Info("report")
		h.span.SetAttributes(attribute.String("report", p.Payload))
		h.publish(Event{Type: EventReport, Player: s.Name, Position: s.position, Report: p.Payload})
		h.next()
	}
}

func (h *Hub) advance(ctx context.Context, s *seat) {
	if s.inJail {
		s.inJail = false
		h.log.WithField("player", s.Name).Info("in jail, turn skipped")
		h.publish(Event{Type: EventSkip, Player: s.Name, Position: s.position})
		h.next()
		return
	}
	if err := h.tx.SendTurnAdvance(s.Address); err != nil {
		h.sendFailed(err, s)
		return
	}
	h.turnCtx, h.span = h.tracer.Start(ctx, "hub.turn", trace.WithAttributes(
		attribute.String("session", h.session),
		attribute.String("player", s.Name),
		attribute.Int("from", s.position),
	))
	h.log.WithField("player", s.Name).Info("turn")
	h.publish(Event{Type: EventTurn, Player: s.Name, Position: s.position})
	h.phase = PhaseAwaitRoll
}

// poll reads one packet and keeps it only if it came from s. Any packet
// marks its sender as seen.
func (h *Hub) poll(s *seat, read func() (transport.Packet, bool)) (transport.Packet, bool) {
	p, ok := read()
	if !ok {
		return p, false
	}
	for _, other := range h.seats {
		if other.Pipe == p.Pipe {
			other.peer.UpdateLastSeen(h.now())
		}
	}
	if p.Pipe != s.Pipe {
		h.log.WithFields(logrus.Fields{"pipe": p.Pipe, "kind": p.Kind}).Debug("packet from waiting player ignored")
		return p, false
	}
	return p, true
}

func (h *Hub) sendFailed(err error, s *seat) {
	if errors.Is(err, transport.ErrBusy) {
		return
	}
	h.log.WithError(err).WithField("player", s.Name).Warn("send failed, retrying next step")
}

func (h *Hub) next() {
	h.endTurn()
	h.turns++
	h.current = (h.current + 1) % len(h.seats)
	h.phase = PhaseAdvance
}

func (h *Hub) endTurn() {
	if h.span != nil {
		h.span.End()
		h.span = nil
	}
}

func (h *Hub) publish(ev Event) {
	ev.Session = h.session
	ev.Time = h.now()
	ctx := h.turnCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.pub.Publish(ctx, ev); err != nil {
		h.log.WithError(err).WithField("event", ev.Type).Warn("publish failed")
	}
}
