// Package display renders the node's status text on a small monochrome
// screen.
package display

import (
	"strings"
)

// Driver is the minimal text surface of a display.
type Driver interface {
	Clear()
	SetCursor(x, y int16)
	PrintLine(text string)
	Present() error
}

const (
	DefaultRows       = 4
	DefaultLineHeight = 16
	SplashTitle       = "DigiWare"
	SplashSubtitle    = "Monopoly"
	MenuMarker        = ">"
)

// Screen lays text out in fixed rows on a Driver.
type Screen struct {
	drv        Driver
	rows       int
	lineHeight int16
}

type Option func(*Screen)

func WithRows(n int) Option {
	return func(s *Screen) {
		if n > 0 {
			s.rows = n
		}
	}
}

func WithLineHeight(h int16) Option {
	return func(s *Screen) {
		if h > 0 {
			s.lineHeight = h
		}
	}
}

func NewScreen(drv Driver, opts ...Option) *Screen {
	s := &Screen{drv: drv, rows: DefaultRows, lineHeight: DefaultLineHeight}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Screen) Rows() int { return s.rows }

// Show replaces the screen with text, one row per line. Lines beyond the
// last row are dropped.
func (s *Screen) Show(text string) error {
	return s.draw(strings.Split(text, "\n"))
}

func (s *Screen) Splash() error {
	return s.draw([]string{SplashTitle, SplashSubtitle})
}

// Menu draws a title row followed by as many options as fit, scrolled so the
// selected one is visible and marked.
func (s *Screen) Menu(title string, options []string, selected int) error {
	lines := make([]string, 0, s.rows)
	if title != "" {
		lines = append(lines, title)
	}
	window := s.rows - len(lines)
	if window < 1 {
		window = 1
	}

	first := 0
	if selected >= window {
		first = selected - window + 1
	}
	for i := first; i < len(options) && i < first+window; i++ {
		prefix := " "
		if i == selected {
			prefix = MenuMarker
		}
		lines = append(lines, prefix+" "+options[i])
	}
	return s.draw(lines)
}

func (s *Screen) draw(lines []string) error {
	s.drv.Clear()
	for i, line := range lines {
		if i >= s.rows {
			break
		}
		s.drv.SetCursor(0, int16(i)*s.lineHeight)
		s.drv.PrintLine(line)
	}
	return s.drv.Present()
}
