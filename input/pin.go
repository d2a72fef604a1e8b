// Package input turns raw digital pin readings into menu events: a debounced
// push button and a rotary scroller. Everything is polled; nothing here uses
// interrupts or sleeps.
package input

import "time"

// Level is an electrical pin level.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Pin is a digital input.
type Pin interface {
	Get() Level
}

// PinFunc adapts a plain function to Pin.
type PinFunc func() Level

func (f PinFunc) Get() Level { return f() }

// Default timings for a mechanical EC11-style encoder.
const (
	DefaultDebounce = 50 * time.Millisecond
	DefaultSettle   = 10 * time.Millisecond
	DefaultOptions  = 4
)
