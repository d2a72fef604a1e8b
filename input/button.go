package input

import "time"

// Button converts a raw pin level into single-fire clicks.
//
// A click is reported when the pin reads asserted and at least the debounce
// interval has passed since the previous asserted reading. Every asserted
// reading refreshes that timestamp, so a button held down clicks once on
// press and then stays quiet until it has been released for a full interval.
type Button struct {
	pin      Pin
	asserted Level
	interval time.Duration
	now      func() time.Time

	level      Level
	lastUpdate time.Time
	seen       bool
}

type ButtonOption func(*Button)

// WithActiveHigh treats a high level as pressed. Buttons are active-low by
// default, wired to ground with a pull-up.
func WithActiveHigh() ButtonOption {
	return func(b *Button) { b.asserted = High }
}

func WithDebounce(d time.Duration) ButtonOption {
	return func(b *Button) {
		if d >= 0 {
			b.interval = d
		}
	}
}

func WithButtonClock(now func() time.Time) ButtonOption {
	return func(b *Button) {
		if now != nil {
			b.now = now
		}
	}
}

func NewButton(pin Pin, opts ...ButtonOption) *Button {
	b := &Button{
		pin:      pin,
		asserted: Low,
		interval: DefaultDebounce,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.level = !b.asserted
	return b
}

// Poll samples the pin once and reports whether this poll is a click.
func (b *Button) Poll() bool {
	b.level = b.pin.Get()
	if b.level != b.asserted {
		return false
	}

	now := b.now()
	clicked := !b.seen || now.Sub(b.lastUpdate) >= b.interval
	b.lastUpdate = now
	b.seen = true
	return clicked
}

// Pressed reports whether the last poll saw the button asserted.
func (b *Button) Pressed() bool { return b.level == b.asserted }
