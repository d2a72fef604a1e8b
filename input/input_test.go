package input

import (
	"math/rand"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1700000000, 0)} }

type fakePin struct{ level Level }

func (p *fakePin) Get() Level { return p.level }

func TestButton_ClickOnPress(t *testing.T) {
	clock := newClock()
	sw := &fakePin{level: High}
	b := NewButton(sw, WithButtonClock(clock.Now))

	if b.Poll() {
		t.Fatal("released button clicked")
	}
	sw.level = Low
	if !b.Poll() {
		t.Fatal("press did not click")
	}
	if !b.Pressed() {
		t.Error("Pressed() = false while held")
	}
}

func TestButton_HeldFiresOnce(t *testing.T) {
	clock := newClock()
	sw := &fakePin{level: Low}
	b := NewButton(sw, WithButtonClock(clock.Now))

	clicks := 0
	for i := 0; i < 200; i++ {
		if b.Poll() {
			clicks++
		}
		clock.Advance(5 * time.Millisecond)
	}
	if clicks != 1 {
		t.Errorf("held button clicked %d times over 1s, want 1", clicks)
	}
}

func TestButton_WindowSmallerThanInterval(t *testing.T) {
	clock := newClock()
	sw := &fakePin{level: Low}
	b := NewButton(sw, WithButtonClock(clock.Now))

	if !b.Poll() {
		t.Fatal("first press did not click")
	}
	// bounce: release and re-press well inside the debounce interval
	for _, step := range []Level{High, Low, High, Low} {
		clock.Advance(10 * time.Millisecond)
		sw.level = step
		if b.Poll() {
			t.Fatalf("bounce at %v clicked", step)
		}
	}
}

func TestButton_ReleaseAndPressAgain(t *testing.T) {
	clock := newClock()
	sw := &fakePin{level: Low}
	b := NewButton(sw, WithButtonClock(clock.Now))
	b.Poll()

	sw.level = High
	clock.Advance(DefaultDebounce)
	b.Poll()

	sw.level = Low
	if !b.Poll() {
		t.Error("press after a full interval released did not click")
	}
}

func TestButton_ActiveHigh(t *testing.T) {
	clock := newClock()
	sw := &fakePin{level: Low}
	b := NewButton(sw, WithActiveHigh(), WithButtonClock(clock.Now))

	if b.Poll() {
		t.Error("low level clicked an active-high button")
	}
	sw.level = High
	if !b.Poll() {
		t.Error("high level did not click an active-high button")
	}
}

// encoderRig drives CLK and DT the way one detent of a real encoder does.
type encoderRig struct {
	clk, dt *fakePin
	clock   *fakeClock
	s       *Scroller
}

func newRig(options int) *encoderRig {
	r := &encoderRig{clk: &fakePin{level: Low}, dt: &fakePin{level: Low}, clock: newClock()}
	r.s = NewScroller(r.clk, r.dt, options, WithScrollerClock(r.clock.Now))
	return r
}

// detent produces one falling-then-rising CLK cycle with DT chosen for the
// requested direction and returns the total applied delta.
func (r *encoderRig) detent(dir int) int {
	total := 0
	r.clk.level = Low
	total += r.s.Poll()
	r.clock.Advance(DefaultSettle)

	if dir > 0 {
		r.dt.level = Low // DT differs from the new CLK level
	} else {
		r.dt.level = High
	}
	r.clk.level = High
	total += r.s.Poll()
	r.clock.Advance(DefaultSettle)
	return total
}

func TestScroller_SingleDetent(t *testing.T) {
	r := newRig(4)
	r.s.SetPosition(1)

	if got := r.detent(+1); got != 1 {
		t.Errorf("clockwise detent delta = %d, want 1", got)
	}
	if r.s.Position() != 2 {
		t.Errorf("Position() = %d, want 2", r.s.Position())
	}
	if got := r.detent(-1); got != -1 {
		t.Errorf("counter-clockwise detent delta = %d, want -1", got)
	}
	if r.s.Position() != 1 {
		t.Errorf("Position() = %d, want 1", r.s.Position())
	}
}

func TestScroller_RisingEdgeOnly(t *testing.T) {
	r := newRig(4)
	r.clk.level = High
	if got := r.s.Poll(); got != 1 {
		t.Fatalf("rising edge delta = %d, want 1", got)
	}

	// CLK stays high: no further movement no matter how often we poll
	for i := 0; i < 10; i++ {
		r.clock.Advance(DefaultSettle)
		if got := r.s.Poll(); got != 0 {
			t.Fatalf("poll %d without a new edge moved %d", i, got)
		}
	}

	// falling edge alone does not move
	r.clk.level = Low
	if got := r.s.Poll(); got != 0 {
		t.Errorf("falling edge moved %d", got)
	}
}

func TestScroller_Clamps(t *testing.T) {
	r := newRig(4)
	for i := 0; i < 10; i++ {
		r.detent(+1)
	}
	if r.s.Position() != 3 {
		t.Errorf("Position() after spinning up = %d, want 3", r.s.Position())
	}
	if got := r.detent(+1); got != 0 {
		t.Errorf("detent past the upper bound moved %d, want 0", got)
	}

	for i := 0; i < 10; i++ {
		r.detent(-1)
	}
	if r.s.Position() != 0 {
		t.Errorf("Position() after spinning down = %d, want 0", r.s.Position())
	}
	if got := r.detent(-1); got != 0 {
		t.Errorf("detent past the lower bound moved %d, want 0", got)
	}
}

func TestScroller_StaysInRangeUnderNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, options := range []int{1, 2, 4, 7} {
		r := newRig(options)
		for i := 0; i < 5000; i++ {
			r.clk.level = Level(rng.Intn(2) == 1)
			r.dt.level = Level(rng.Intn(2) == 1)
			r.clock.Advance(time.Duration(rng.Intn(15)) * time.Millisecond)
			delta := r.s.Poll()
			if delta < -1 || delta > 1 {
				t.Fatalf("options=%d: delta %d out of [-1, 1]", options, delta)
			}
			if p := r.s.Position(); p < 0 || p > options-1 {
				t.Fatalf("options=%d: position %d out of range", options, p)
			}
		}
	}
}

func TestScroller_SettleWindow(t *testing.T) {
	r := newRig(4)
	r.clk.level = High
	if got := r.s.Poll(); got != 1 {
		t.Fatalf("edge delta = %d, want 1", got)
	}

	// contact chatter inside the settle window is not sampled
	r.clk.level = Low
	r.s.Poll()
	r.clk.level = High
	if got := r.s.Poll(); got != 0 {
		t.Errorf("chatter inside settle window moved %d", got)
	}

	r.clock.Advance(DefaultSettle)
	if got := r.s.Poll(); got != 0 {
		t.Errorf("CLK still high after settle moved %d", got)
	}
}

func TestScroller_SetOptionsReclamps(t *testing.T) {
	r := newRig(8)
	r.s.SetPosition(7)
	r.s.SetOptions(4)
	if r.s.Position() != 3 {
		t.Errorf("Position() = %d after shrinking to 4 options, want 3", r.s.Position())
	}
	r.s.SetOptions(0)
	if r.s.Options() != 1 || r.s.Position() != 0 {
		t.Errorf("SetOptions(0) left options=%d position=%d", r.s.Options(), r.s.Position())
	}
}

func TestEncoder_Poll(t *testing.T) {
	clock := newClock()
	clk, dt, sw := &fakePin{level: Low}, &fakePin{level: Low}, &fakePin{level: High}
	enc := NewEncoder(
		NewScroller(clk, dt, 4, WithScrollerClock(clock.Now)),
		NewButton(sw, WithButtonClock(clock.Now)),
	)

	clk.level = High
	sw.level = Low
	ev := enc.Poll()
	if ev.Delta != 1 || ev.Position != 1 || !ev.Clicked {
		t.Errorf("Poll() = %+v, want delta 1 position 1 clicked", ev)
	}
}
