package display

import (
	"slices"
	"strings"
	"sync"
)

// Memory is a Driver that keeps the presented frame as text. Rows are
// ordered by cursor position.
type Memory struct {
	mu        sync.Mutex
	cursorY   int16
	pending   map[int16]string
	presented []string
	frames    int
}

func NewMemory() *Memory {
	return &Memory{pending: make(map[int16]string)}
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = make(map[int16]string)
	m.cursorY = 0
}

func (m *Memory) SetCursor(_, y int16) {
	m.mu.Lock()
	m.cursorY = y
	m.mu.Unlock()
}

func (m *Memory) PrintLine(text string) {
	m.mu.Lock()
	m.pending[m.cursorY] = text
	m.mu.Unlock()
}

func (m *Memory) Present() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ys := make([]int16, 0, len(m.pending))
	for y := range m.pending {
		ys = append(ys, y)
	}
	slices.Sort(ys)

	m.presented = m.presented[:0]
	for _, y := range ys {
		m.presented = append(m.presented, m.pending[y])
	}
	m.frames++
	return nil
}

// Lines returns the rows of the last presented frame.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.presented...)
}

func (m *Memory) Text() string { return strings.Join(m.Lines(), "\n") }

// Frames counts calls to Present.
func (m *Memory) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
