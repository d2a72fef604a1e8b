package hub

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventTurn   EventType = "turn"
	EventRoll   EventType = "roll"
	EventReport EventType = "report"
	EventSkip   EventType = "skip"
)

// Event is one step of the game as seen by the hub.
type Event struct {
	Session  string    `json:"session"`
	Type     EventType `json:"type"`
	Player   string    `json:"player"`
	Roll     int       `json:"roll,omitempty"`
	From     int       `json:"from"`
	Position int       `json:"position"`
	Space    string    `json:"space,omitempty"`
	PassedGo bool      `json:"passed_go,omitempty"`
	Jailed   bool      `json:"jailed,omitempty"`
	Report   string    `json:"report,omitempty"`
	Time     time.Time `json:"time"`
}

// Publisher exports game events to the outside world.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }

// MultiPublisher publishes to every member and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
