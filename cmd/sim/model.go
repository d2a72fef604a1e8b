package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ystepanoff/digiware/display"
	"github.com/ystepanoff/digiware/driver/stub"
	"github.com/ystepanoff/digiware/hub"
	"github.com/ystepanoff/digiware/input"
	"github.com/ystepanoff/digiware/player"
	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

const (
	tickInterval = 20 * time.Millisecond
	maxPlayers   = proto.MaxPipes
	eventLines   = 6
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// virtualEncoder stands in for the rotary encoder pins. Each tick applies at
// most one queued level change, so the node sees detents and clicks the way
// it would from hardware.
type virtualEncoder struct {
	clk, dt, sw input.Level
	queue       []func()
}

func newVirtualEncoder() *virtualEncoder {
	return &virtualEncoder{clk: input.Low, dt: input.Low, sw: input.High}
}

func (v *virtualEncoder) pins() (clk, dt, sw input.Pin) {
	return input.PinFunc(func() input.Level { return v.clk }),
		input.PinFunc(func() input.Level { return v.dt }),
		input.PinFunc(func() input.Level { return v.sw })
}

// turn queues one detent; dir > 0 moves the highlight down.
func (v *virtualEncoder) turn(dir int) {
	dt := input.High
	if dir > 0 {
		dt = input.Low
	}
	v.queue = append(v.queue,
		func() { v.clk = input.Low },
		func() { v.dt, v.clk = dt, input.High },
	)
}

// click queues a press and release, padded past the debounce interval.
func (v *virtualEncoder) click() {
	v.queue = append(v.queue,
		func() { v.sw = input.Low },
		func() { v.sw = input.High },
		func() {},
		func() {},
	)
}

func (v *virtualEncoder) tick() {
	if len(v.queue) == 0 {
		return
	}
	v.queue[0]()
	v.queue = v.queue[1:]
}

type simPlayer struct {
	name string
	node *player.Node
	enc  *virtualEncoder
	mem  *display.Memory
}

// eventLog keeps the latest hub events in the serial line format.
type eventLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *eventLog) Publish(_ context.Context, ev hub.Event) error {
	line := strings.TrimSpace(hub.FormatLine(ev))
	if line == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, strings.ReplaceAll(line, "\t", "  "))
	if len(l.lines) > eventLines {
		l.lines = l.lines[len(l.lines)-eventLines:]
	}
	return nil
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type simConfig struct {
	players int
	codec   proto.Codec
	dice    func() int
	now     func() time.Time
}

type model struct {
	ctx     context.Context
	hub     *hub.Hub
	players []*simPlayer
	events  *eventLog
	focus   int
}

// seatAddresses returns the address the hub sends to for player i and the
// hub pipe address player i sends to.
func seatAddresses(i int) (addr, listen proto.Address) {
	addr = proto.MustAddress(fmt.Sprintf("%05d", i+2))
	if i == 0 {
		return addr, proto.MustAddress(proto.DefaultHubAddress)
	}
	return addr, proto.MustAddress(fmt.Sprintf("%dPLYR", i+1))
}

func newModel(ctx context.Context, cfg simConfig) (*model, error) {
	if cfg.players < 1 || cfg.players > maxPlayers {
		return nil, fmt.Errorf("players must be 1-%d, got %d", maxPlayers, cfg.players)
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	ether := stub.NewEther()
	m := &model{ctx: ctx, events: &eventLog{}}

	seats := make([]hub.Seat, cfg.players)
	listen := make([]proto.Address, cfg.players)
	for i := range seats {
		addr, l := seatAddresses(i)
		seats[i] = hub.Seat{Name: fmt.Sprintf("Player %d", i+1), Address: addr, Pipe: uint8(i)}
		listen[i] = l

		link := transport.NewLink(ether.New())
		if err := link.Begin(proto.DefaultChannel, addr); err != nil {
			return nil, err
		}
		enc := newVirtualEncoder()
		clk, dt, sw := enc.pins()
		mem := display.NewMemory()
		node := player.New(link,
			input.NewEncoder(
				input.NewScroller(clk, dt, len(player.DefaultOptions), input.WithScrollerClock(cfg.now)),
				input.NewButton(sw, input.WithButtonClock(cfg.now)),
			),
			display.NewScreen(mem),
			player.Config{Hub: l, Codec: cfg.codec, Holdoff: transport.DefaultHoldoff, Now: cfg.now},
		)
		m.players = append(m.players, &simPlayer{name: seats[i].Name, node: node, enc: enc, mem: mem})
	}

	hubLink := transport.NewLink(ether.New())
	if err := hubLink.Begin(proto.DefaultChannel, listen...); err != nil {
		return nil, err
	}
	h, err := hub.New(hubLink, seats, hub.Config{
		Codec:     cfg.codec,
		Holdoff:   transport.DefaultHoldoff,
		Now:       cfg.now,
		Dice:      cfg.dice,
		Session:   "sim",
		Publisher: m.events,
	})
	if err != nil {
		return nil, err
	}
	m.hub = h
	return m, nil
}

func (m *model) Init() tea.Cmd { return tick() }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.step()
		return m, tick()
	case tea.KeyMsg:
		p := m.players[m.focus]
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % len(m.players)
		case "shift+tab":
			m.focus = (m.focus + len(m.players) - 1) % len(m.players)
		case "up", "left", "k":
			p.enc.turn(-1)
		case "down", "right", "j":
			p.enc.turn(1)
		case "enter", " ":
			p.enc.click()
		default:
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(m.players) {
				m.focus = int(key[0] - '1')
			}
		}
	}
	return m, nil
}

// step advances every node by one pass of its control loop.
func (m *model) step() {
	for _, p := range m.players {
		p.enc.tick()
		p.node.Step()
	}
	m.hub.Step(m.ctx)
}

func (m *model) View() string {
	var b strings.Builder
	cur := m.hub.Current()
	fmt.Fprintf(&b, "hub  %s  turn %d  %s\n\n", m.hub.Phase(), m.hub.Turns()+1, cur.Name)

	for i, p := range m.players {
		marker := " "
		if i == m.focus {
			marker = ">"
		}
		pos := m.hub.Position(i)
		fmt.Fprintf(&b, "%s %s  [%s]  at %s\n", marker, p.name, p.node.State(), hub.Board[pos].Name)
		b.WriteString("  +------------------+\n")
		for _, line := range p.mem.Lines() {
			fmt.Fprintf(&b, "  | %-16.16s |\n", line)
		}
		b.WriteString("  +------------------+\n")
	}

	b.WriteString("\nevents\n")
	for _, line := range m.events.snapshot() {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\ntab/1-6 focus  arrows turn  enter click  q quit\n")
	return b.String()
}
