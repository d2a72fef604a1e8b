package hub

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ystepanoff/digiware/driver/stub"
	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct{ events []Event }

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

// fakePlayer is the radio side of a player node, without any UI.
type fakePlayer struct {
	link    *transport.Link
	tx      *transport.Transmitter
	turn    *transport.TurnDetector
	landing *transport.LandingChannel
	hub     proto.Address
}

func newFakePlayer(t *testing.T, ether *stub.Ether, listen, hub string) *fakePlayer {
	t.Helper()
	link := transport.NewLink(ether.New())
	if err := link.Begin(proto.DefaultChannel, proto.MustAddress(listen)); err != nil {
		t.Fatal(err)
	}
	return &fakePlayer{
		link:    link,
		tx:      transport.NewTransmitter(link, proto.LegacyCodec{}, transport.WithHoldoff(0)),
		turn:    transport.NewTurnDetector(link, proto.LegacyCodec{}),
		landing: transport.NewLandingChannel(link, proto.LegacyCodec{}),
		hub:     proto.MustAddress(hub),
	}
}

type rig struct {
	hub     *Hub
	clock   *fakeClock
	pub     *recorder
	spans   *tracetest.SpanRecorder
	players []*fakePlayer
}

func newRig(t *testing.T, nPlayers int, dice ...int) *rig {
	t.Helper()
	ether := stub.NewEther()
	seats := []Seat{
		{Name: "Ann", Address: proto.MustAddress("00002"), Pipe: 0},
		{Name: "Bob", Address: proto.MustAddress("00003"), Pipe: 1},
	}[:nPlayers]
	listen := []string{"00001", "2PLYR"}[:nPlayers]

	hubLink := transport.NewLink(ether.New())
	addrs := make([]proto.Address, nPlayers)
	for i, l := range listen {
		addrs[i] = proto.MustAddress(l)
	}
	if err := hubLink.Begin(proto.DefaultChannel, addrs...); err != nil {
		t.Fatal(err)
	}

	r := &rig{
		clock: &fakeClock{t: time.Unix(1700000000, 0)},
		pub:   &recorder{},
		spans: tracetest.NewSpanRecorder(),
	}
	for i := range seats {
		r.players = append(r.players, newFakePlayer(t, ether, seats[i].Address.String(), listen[i]))
	}

	rolls := append([]int(nil), dice...)
	h, err := New(hubLink, seats, Config{
		Holdoff:   transport.DefaultHoldoff,
		Now:       r.clock.Now,
		Dice:      func() int { n := rolls[0]; rolls = rolls[1:]; return n },
		Session:   "test-session",
		Publisher: r.pub,
		Tracer:    sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(r.spans)).Tracer("test"),
	})
	if err != nil {
		t.Fatal(err)
	}
	r.hub = h
	return r
}

// step runs the hub once after letting any holdoff expire.
func (r *rig) step() {
	r.clock.Advance(transport.DefaultHoldoff)
	r.hub.Step(context.Background())
}

// playTurn drives one complete turn for the current player.
func (r *rig) playTurn(t *testing.T, p *fakePlayer, choice string) string {
	t.Helper()
	r.step()
	if !p.turn.Poll() {
		t.Fatalf("player did not get the turn (phase %s)", r.hub.Phase())
	}
	if err := p.tx.SendRollRequest(p.hub); err != nil {
		t.Fatal(err)
	}
	r.step()
	r.step()
	landing, ok := p.landing.Poll()
	if !ok {
		t.Fatalf("no landing result (phase %s)", r.hub.Phase())
	}
	if err := p.tx.SendLanding(p.hub, choice+" "+landing); err != nil {
		t.Fatal(err)
	}
	r.step()
	return landing
}

func TestHub_FullTurn(t *testing.T) {
	r := newRig(t, 2, 3)
	ann, bob := r.players[0], r.players[1]
	ctx := context.Background()

	r.hub.Step(ctx)
	if r.hub.Phase() != PhaseAwaitRoll {
		t.Fatalf("phase = %s, want await-roll", r.hub.Phase())
	}
	if !ann.turn.Poll() {
		t.Fatal("Ann did not receive the turn")
	}
	if bob.turn.Poll() {
		t.Fatal("Bob received Ann's turn")
	}

	// Bob rolling out of turn is ignored
	bob.tx.SendRollRequest(bob.hub)
	r.hub.Step(ctx)
	if r.hub.Phase() != PhaseAwaitRoll {
		t.Fatalf("out-of-turn roll moved the hub to %s", r.hub.Phase())
	}

	ann.tx.SendRollRequest(ann.hub)
	r.hub.Step(ctx)
	if r.hub.Phase() != PhaseSendLanding || r.hub.Position(0) != 3 {
		t.Fatalf("after roll: phase %s position %d", r.hub.Phase(), r.hub.Position(0))
	}

	// still inside the holdoff of the turn-advance
	r.hub.Step(ctx)
	if r.hub.Phase() != PhaseSendLanding {
		t.Fatalf("landing sent inside the holdoff")
	}
	r.step()
	if got, ok := ann.landing.Poll(); !ok || got != "EDUROAM" {
		t.Fatalf("landing = %q, %v", got, ok)
	}

	ann.tx.SendLanding(ann.hub, "Buy EDUROAM")
	r.hub.Step(ctx)
	if r.hub.Phase() != PhaseAdvance || r.hub.Current().Name != "Bob" || r.hub.Turns() != 1 {
		t.Fatalf("after report: phase %s current %s turns %d", r.hub.Phase(), r.hub.Current().Name, r.hub.Turns())
	}

	want := []EventType{EventTurn, EventRoll, EventReport}
	if got := r.pub.types(); len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("events = %v, want %v", got, want)
	}
	report := r.pub.events[2]
	if report.Report != "Buy EDUROAM" || report.Session != "test-session" || report.Player != "Ann" {
		t.Errorf("report event = %+v", report)
	}

	ended := r.spans.Ended()
	if len(ended) != 1 || ended[0].Name() != "hub.turn" {
		t.Fatalf("ended spans = %v", ended)
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["player"].AsString() != "Ann" || attrs["space"].AsString() != "EDUROAM" || attrs["roll"].AsInt64() != 3 {
		t.Errorf("span attributes = %v", attrs)
	}
}

func TestHub_TracksLastSeen(t *testing.T) {
	r := newRig(t, 2, 3)
	bob := r.players[1]
	ctx := context.Background()

	r.hub.Step(ctx)
	if !r.hub.LastSeen(1).IsZero() {
		t.Fatal("Bob seen before sending anything")
	}

	// ignored for the turn, but still proof of life
	bob.tx.SendRollRequest(bob.hub)
	r.hub.Step(ctx)
	if got := r.hub.LastSeen(1); !got.Equal(r.clock.Now()) {
		t.Fatalf("Bob last seen %v, want %v", got, r.clock.Now())
	}
	if !r.hub.Alive(1, time.Second) {
		t.Error("Bob not alive right after sending")
	}
	if r.hub.Alive(0, time.Second) {
		t.Error("Ann alive without sending")
	}
	r.clock.Advance(2 * time.Second)
	if r.hub.Alive(1, time.Second) {
		t.Error("Bob still alive after timeout")
	}
}

func TestHub_RotatesPlayers(t *testing.T) {
	r := newRig(t, 2, 1, 2, 3)
	got := []string{
		r.playTurn(t, r.players[0], "Pass"),
		r.playTurn(t, r.players[1], "Buy"),
		r.playTurn(t, r.players[0], "Pass"),
	}
	want := []string{"JARVIS", "BONNER", "FURNAS"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn %d landed on %q, want %q", i, got[i], want[i])
		}
	}
	if r.hub.Turns() != 3 {
		t.Errorf("Turns() = %d, want 3", r.hub.Turns())
	}
}

func TestHub_GoToJailSkipsNextTurn(t *testing.T) {
	r := newRig(t, 1, 6, 6, 6, 3, 1)
	p := r.players[0]
	for i := 0; i < 3; i++ {
		r.playTurn(t, p, "Pass")
	}
	if landing := r.playTurn(t, p, "Pass"); landing != "JAIL" {
		t.Fatalf("landing = %q, want JAIL", landing)
	}

	r.step()
	if r.pub.events[len(r.pub.events)-1].Type != EventSkip {
		t.Fatalf("last event = %v, want skip", r.pub.events[len(r.pub.events)-1].Type)
	}
	if p.turn.Poll() {
		t.Fatal("jailed player was given the turn")
	}
	if landing := r.playTurn(t, p, "Pass"); landing != "GOVENORS" {
		t.Errorf("landing after jail = %q, want GOVENORS", landing)
	}
}

func TestNew_Errors(t *testing.T) {
	link := transport.NewLink(stub.NewEther().New())
	if _, err := New(link, nil, Config{}); !errors.Is(err, ErrNoSeats) {
		t.Errorf("no seats: %v", err)
	}
	seats := []Seat{{Name: "a", Pipe: 1}, {Name: "b", Pipe: 1}}
	if _, err := New(link, seats, Config{}); !errors.Is(err, ErrDuplicatePipe) {
		t.Errorf("duplicate pipe: %v", err)
	}
	h, err := New(link, seats[:1], Config{})
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Session()) != 36 {
		t.Errorf("generated session %q is not a uuid", h.Session())
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name      string
		pos, roll int
		want      Move
	}{
		{"plain", 0, 3, Move{From: 0, To: 3, Roll: 3, Space: Board[3]}},
		{"passes go", 25, 4, Move{From: 25, To: 1, Roll: 4, Space: Board[1], PassedGo: true}},
		{"lands on go", 24, 4, Move{From: 24, To: 0, Roll: 4, Space: Board[0], PassedGo: true, LandedOnGo: true}},
		{"go to jail", 18, 3, Move{From: 18, To: JailPosition, Roll: 3, Space: Board[JailPosition], Jailed: true}},
		{"just visiting", 5, 2, Move{From: 5, To: 7, Roll: 2, Space: Board[7]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Advance(tt.pos, tt.roll); got != tt.want {
				t.Errorf("Advance(%d, %d) = %+v, want %+v", tt.pos, tt.roll, got, tt.want)
			}
		})
	}
	if !Advance(24, 4).Collects() || Advance(0, 3).Collects() {
		t.Error("Collects() wrong")
	}
}

func TestBoard(t *testing.T) {
	if Board[JailPosition].Name != "JAIL" || Board[GoToJailPosition].Name != "GO TO JAIL" {
		t.Error("corner spaces out of place")
	}
	for i, s := range Board {
		if s.Name == "" || len(s.Name) > proto.MaxFramePayload {
			t.Errorf("space %d name %q does not fit a framed packet", i, s.Name)
		}
	}
}

func TestMultiPublisher(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	m := MultiPublisher{
		rec,
		PublisherFunc(func(context.Context, Event) error { return boom }),
	}
	err := m.Publish(context.Background(), Event{Type: EventTurn})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if len(rec.events) != 1 {
		t.Error("healthy publisher skipped after a failing one")
	}
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Type: EventTurn, Player: "Ann"}, "TURN\tAnn\n"},
		{Event{Type: EventRoll, Player: "Ann", Roll: 4, Position: 11, Space: "LOST"}, "ROLL\tAnn\t4\t11\tLOST\n"},
		{Event{Type: EventReport, Player: "Ann", Report: "Buy\tLOST"}, "REPORT\tAnn\tBuy LOST\n"},
		{Event{Type: EventSkip, Player: "Bob"}, "SKIP\tBob\n"},
		{Event{Type: "bogus"}, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.ev.Type), func(t *testing.T) {
			if got := FormatLine(tt.ev); got != tt.want {
				t.Errorf("FormatLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerialPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewSerialPublisher(&buf)
	ctx := context.Background()
	p.Publish(ctx, Event{Type: EventTurn, Player: "Ann"})
	p.Publish(ctx, Event{Type: EventReport, Player: "Ann", Report: "Pass JAIL"})
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("wrote %d lines: %q", got, buf.String())
	}
}
