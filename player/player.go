// Package player runs a player node: it waits for the hub to hand over the
// turn, sends a roll request on click, shows where the token landed, and
// sends the chosen action back as a landing-result report.
package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/digiware/display"
	"github.com/ystepanoff/digiware/input"
	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

type State uint8

const (
	StateStart State = iota
	StateWaiting
	StateTurn
	StateRolling
	StateDeciding
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateWaiting:
		return "waiting"
	case StateTurn:
		return "turn"
	case StateRolling:
		return "rolling"
	case StateDeciding:
		return "deciding"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Screen text per state.
const (
	TextWaiting = "Waiting for turn"
	TextTurn    = "Your turn\nClick to roll"
	TextRolling = "Rolling..."
	TextRetry   = "Send failed\nClick to retry"
)

var DefaultOptions = []string{"Buy", "Pass", "Pay Rent", "Trade"}

const DefaultSplashHold = 200 * time.Millisecond

// Radio is what a player needs from its link.
type Radio interface {
	transport.PacketSource
	transport.Sender
}

type Config struct {
	Hub   proto.Address
	Codec proto.Codec
	// Holdoff is the quiet time after each send; zero disables it.
	Holdoff    time.Duration
	Options    []string
	SplashHold time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Node struct {
	cfg     Config
	tx      *transport.Transmitter
	turn    *transport.TurnDetector
	landing *transport.LandingChannel
	enc     *input.Encoder
	screen  *display.Screen

	state     State
	enteredAt time.Time
	started   bool
	space     string
	log       *logrus.Entry
}

func New(radio Radio, enc *input.Encoder, screen *display.Screen, cfg Config) *Node {
	if cfg.Codec == nil {
		cfg.Codec = proto.LegacyCodec{}
	}
	if len(cfg.Options) == 0 {
		cfg.Options = DefaultOptions
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	enc.SetOptions(len(cfg.Options))
	return &Node{
		cfg: cfg,
		tx: transport.NewTransmitter(radio, cfg.Codec,
			transport.WithHoldoff(cfg.Holdoff), transport.WithClock(cfg.Now)),
		turn:    transport.NewTurnDetector(radio, cfg.Codec),
		landing: transport.NewLandingChannel(radio, cfg.Codec),
		enc:     enc,
		screen:  screen,
		log:     logrus.WithField("component", "player"),
	}
}

func (n *Node) State() State { return n.state }

// Landing is the space name of the current decision, if any.
func (n *Node) Landing() string { return n.space }

// Selected is the highlighted menu option.
func (n *Node) Selected() string { return n.cfg.Options[n.enc.Position()] }

// Run steps the node every interval until ctx is done.
func (n *Node) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.Step()
		}
	}
}

// Step is one pass of the control loop. The encoder is polled every pass
// so a button held across states clicks only once.
func (n *Node) Step() {
	now := n.cfg.Now()
	ev := n.enc.Poll()

	switch n.state {
	case StateStart:
		if !n.started {
			n.started = true
			n.enteredAt = now
			n.draw(n.screen.Splash())
			return
		}
		if now.Sub(n.enteredAt) >= n.cfg.SplashHold {
			n.enter(StateWaiting, now)
		}
	case StateWaiting:
		if n.turn.Poll() {
			n.enter(StateTurn, now)
		}
	case StateTurn:
		if !ev.Clicked {
			return
		}
		if err := n.tx.SendRollRequest(n.cfg.Hub); err != nil {
			n.sendFailed(err)
			return
		}
		n.enter(StateRolling, now)
	case StateRolling:
		if space, ok := n.landing.Poll(); ok {
			n.space = space
			n.enc.SetOptions(len(n.cfg.Options))
			n.enc.SetPosition(0)
			n.enter(StateDeciding, now)
		}
	case StateDeciding:
		if ev.Clicked {
			n.report(now)
			return
		}
		if ev.Delta != 0 {
			n.drawMenu()
		}
	}
}

func (n *Node) report(now time.Time) {
	text := Report(n.Selected(), n.space, n.tx.MaxPayload())
	if err := n.tx.SendLanding(n.cfg.Hub, text); err != nil {
		n.sendFailed(err)
		return
	}
	n.log.WithField("report", text).Info("report sent")
	n.space = ""
	n.enter(StateWaiting, now)
}

// Report builds the landing-result text "<option> <space>", cut to max
// bytes.
func Report(option, space string, limit int) string {
	text := option + " " + space
	if len(text) > limit {
		text = text[:limit]
	}
	return text
}

func (n *Node) sendFailed(err error) {
	if errors.Is(err, transport.ErrBusy) {
		return
	}
	n.log.WithError(err).WithField("state", n.state).Warn("send failed")
	n.draw(n.screen.Show(TextRetry))
}

func (n *Node) enter(s State, now time.Time) {
	n.log.WithFields(logrus.Fields{"from": n.state, "to": s}).Debug("state")
	n.state = s
	n.enteredAt = now
	switch s {
	case StateWaiting:
		n.draw(n.screen.Show(TextWaiting))
	case StateTurn:
		n.draw(n.screen.Show(TextTurn))
	case StateRolling:
		n.draw(n.screen.Show(TextRolling))
	case StateDeciding:
		n.drawMenu()
	}
}

func (n *Node) drawMenu() {
	n.draw(n.screen.Menu(n.space, n.cfg.Options, n.enc.Position()))
}

func (n *Node) draw(err error) {
	if err != nil {
		n.log.WithError(err).Warn("display")
	}
}
