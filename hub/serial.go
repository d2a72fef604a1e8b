package hub

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// SerialPublisher writes one tab-separated line per event to a serial link,
// for a board display on the other end:
//
//	TURN	<player>
//	ROLL	<player>	<roll>	<position>	<space>
//	REPORT	<player>	<text>
//	SKIP	<player>
type SerialPublisher struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSerialPublisher(w io.Writer) *SerialPublisher {
	return &SerialPublisher{w: w}
}

func (p *SerialPublisher) Publish(_ context.Context, ev Event) error {
	line := FormatLine(ev)
	if line == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.w, line); err != nil {
		return fmt.Errorf("serial publish %s: %w", ev.Type, err)
	}
	return nil
}

// FormatLine renders ev in the serial line protocol, or "" for events the
// protocol does not carry.
func FormatLine(ev Event) string {
	var fields []string
	switch ev.Type {
	case EventTurn:
		fields = []string{"TURN", ev.Player}
	case EventRoll:
		fields = []string{"ROLL", ev.Player, fmt.Sprint(ev.Roll), fmt.Sprint(ev.Position), ev.Space}
	case EventReport:
		fields = []string{"REPORT", ev.Player, ev.Report}
	case EventSkip:
		fields = []string{"SKIP", ev.Player}
	default:
		return ""
	}
	for i, f := range fields {
		fields[i] = strings.NewReplacer("\t", " ", "\n", " ").Replace(f)
	}
	return strings.Join(fields, "\t") + "\n"
}
