package input

// Event is the outcome of one encoder poll.
type Event struct {
	Delta    int
	Position int
	Clicked  bool
}

// Encoder is a rotary encoder with its push switch: a Scroller on CLK/DT and
// a Button on SW, polled together.
type Encoder struct {
	*Scroller
	Button *Button
}

func NewEncoder(scroller *Scroller, button *Button) *Encoder {
	return &Encoder{Scroller: scroller, Button: button}
}

func (e *Encoder) Poll() Event {
	delta := e.Scroller.Poll()
	return Event{
		Delta:    delta,
		Position: e.Position(),
		Clicked:  e.Button.Poll(),
	}
}
