package input

import "time"

// Scroller turns CLK/DT transitions of a rotary encoder into a bounded
// option index in [0, options-1].
//
// Only the rising edge of CLK counts, so one detent moves one step. After an
// edge the scroller ignores the pins until the settle window has passed; the
// window is a deadline checked on each poll, never a sleep.
type Scroller struct {
	clk, dt Pin
	settle  time.Duration
	now     func() time.Time

	options  int
	position int
	lastCLK  Level
	readyAt  time.Time
}

type ScrollerOption func(*Scroller)

func WithSettle(d time.Duration) ScrollerOption {
	return func(s *Scroller) {
		if d >= 0 {
			s.settle = d
		}
	}
}

func WithScrollerClock(now func() time.Time) ScrollerOption {
	return func(s *Scroller) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScroller samples CLK once so the first poll compares against the real
// resting level.
func NewScroller(clk, dt Pin, options int, opts ...ScrollerOption) *Scroller {
	s := &Scroller{
		clk:     clk,
		dt:      dt,
		settle:  DefaultSettle,
		now:     time.Now,
		options: max(options, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastCLK = clk.Get()
	return s
}

// Poll samples the encoder once and returns the movement actually applied:
// +1, -1, or 0 when nothing moved, the scroller is settling, or the position
// is already at the bound.
func (s *Scroller) Poll() int {
	now := s.now()
	if now.Before(s.readyAt) {
		return 0
	}

	cur := s.clk.Get()
	delta := 0
	if cur != s.lastCLK && cur == High {
		if s.dt.Get() != cur {
			delta = 1
		} else {
			delta = -1
		}
		s.readyAt = now.Add(s.settle)
	}
	s.lastCLK = cur

	before := s.position
	s.SetPosition(s.position + delta)
	return s.position - before
}

func (s *Scroller) Position() int { return s.position }

func (s *Scroller) Options() int { return s.options }

// SetPosition moves the highlight, clamping to the valid range.
func (s *Scroller) SetPosition(p int) {
	s.position = min(max(p, 0), s.options-1)
}

// SetOptions changes the number of options and re-clamps the position.
func (s *Scroller) SetOptions(n int) {
	s.options = max(n, 1)
	s.SetPosition(s.position)
}
