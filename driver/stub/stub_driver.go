//go:build !tinygo && !baremetal

// Package stub is an in-memory radio for host-side testing and simulation.
// Radios attached to the same Ether hear each other's writes the way nRF24
// pipes do: a packet reaches every listening radio with a matching pipe.
package stub

import (
	"sync"

	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

// Ether is the shared air between stub radios.
type Ether struct {
	mu     sync.Mutex
	radios []*Driver
}

func NewEther() *Ether { return &Ether{} }

// New attaches a fresh radio to the ether.
func (e *Ether) New() *Driver {
	d := &Driver{ether: e}
	e.mu.Lock()
	e.radios = append(e.radios, d)
	e.mu.Unlock()
	return d
}

// broadcast delivers data to every other radio listening on addr and reports
// whether anyone heard it.
func (e *Ether) broadcast(from *Driver, addr proto.Address, data []byte) bool {
	e.mu.Lock()
	radios := append([]*Driver(nil), e.radios...)
	e.mu.Unlock()

	heard := false
	for _, d := range radios {
		if d == from {
			continue
		}
		if d.deliver(addr, data) {
			heard = true
		}
	}
	return heard
}

// Driver implements transport.RadioDriver in memory.
type Driver struct {
	ether *Ether

	mu        sync.Mutex
	begun     bool
	channel   uint8
	pipes     [proto.MaxPipes]pipe
	writeTo   proto.Address
	listening bool
	rxBuf     ringBuffer
	txBuf     ringBuffer
}

type pipe struct {
	addr proto.Address
	open bool
}

// New returns a radio on a private ether, reachable only through InjectRx.
func New() transport.RadioDriver { return NewEther().New() }

func (d *Driver) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.begun = true
	return nil
}

func (d *Driver) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	d.mu.Lock()
	d.channel = channel
	d.mu.Unlock()
	return nil
}

func (d *Driver) OpenReadingPipe(p uint8, addr proto.Address) error {
	if int(p) >= proto.MaxPipes {
		return transport.ErrTooManyPipes
	}
	d.mu.Lock()
	d.pipes[p] = pipe{addr: addr, open: true}
	d.mu.Unlock()
	return nil
}

func (d *Driver) OpenWritingPipe(addr proto.Address) error {
	d.mu.Lock()
	d.writeTo = addr
	d.mu.Unlock()
	return nil
}

func (d *Driver) StartListening() {
	d.mu.Lock()
	d.listening = true
	d.mu.Unlock()
}

func (d *Driver) StopListening() {
	d.mu.Lock()
	d.listening = false
	d.mu.Unlock()
}

func (d *Driver) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening && d.rxBuf.count > 0
}

func (d *Driver) Read(buf []byte) (int, uint8) {
	d.mu.Lock()
	f, ok := d.rxBuf.pop()
	d.mu.Unlock()
	if !ok {
		return 0, 0
	}
	return copy(buf, f.data), f.pipe
}

// Write sends one packet. Delivery is not acknowledged, so it succeeds whether
// or not anyone is listening; a radio that is still listening cannot send.
func (d *Driver) Write(buf []byte) bool {
	d.mu.Lock()
	if !d.begun || d.listening || len(buf) > proto.PacketSize {
		d.mu.Unlock()
		return false
	}
	data := make([]byte, len(buf))
	copy(data, buf)
	to := d.writeTo
	d.txBuf.push(frame{data: data, addr: to})
	d.mu.Unlock()

	d.ether.broadcast(d, to, data)
	return true
}

func (d *Driver) deliver(addr proto.Address, data []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.listening {
		return false
	}
	for i, p := range d.pipes {
		if p.open && p.addr == addr {
			// received buffers are zero-padded to full packet capacity
			buf := make([]byte, proto.PacketSize)
			copy(buf, data)
			d.rxBuf.push(frame{data: buf, addr: addr, pipe: uint8(i)})
			return true
		}
	}
	return false
}

// InjectRx queues a packet as if it arrived on the given pipe.
func (d *Driver) InjectRx(data []byte, p uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf := make([]byte, proto.PacketSize)
	copy(buf, data)
	d.rxBuf.push(frame{data: buf, addr: d.pipes[p%proto.MaxPipes].addr, pipe: p})
}

// Sent is one logged transmission.
type Sent struct {
	To   proto.Address
	Data []byte
}

func (d *Driver) GetTxLog() []Sent {
	d.mu.Lock()
	defer d.mu.Unlock()
	frames := d.txBuf.snapshot()
	out := make([]Sent, len(frames))
	for i, f := range frames {
		out[i] = Sent{To: f.addr, Data: f.data}
	}
	return out
}

func (d *Driver) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

const ringCapacity = 64

type frame struct {
	data []byte
	addr proto.Address
	pipe uint8
}

type ringBuffer struct {
	data       [ringCapacity]frame
	head, tail int // head = next pop, tail = next push
	count      int
}

func (rb *ringBuffer) push(f frame) {
	if rb.count == ringCapacity {
		// Overwrite the oldest when buffer is full to keep memory bounded
		rb.data[rb.tail] = frame{}
		rb.head = (rb.head + 1) % ringCapacity
		rb.count--
	}
	rb.data[rb.tail] = f
	rb.tail = (rb.tail + 1) % ringCapacity
	rb.count++
}

func (rb *ringBuffer) pop() (frame, bool) {
	if rb.count == 0 {
		return frame{}, false
	}
	f := rb.data[rb.head]
	rb.data[rb.head] = frame{}
	rb.head = (rb.head + 1) % ringCapacity
	rb.count--
	return f, true
}

func (rb *ringBuffer) snapshot() []frame {
	out := make([]frame, rb.count)
	i := rb.head
	for c := 0; c < rb.count; c++ {
		f := rb.data[i]
		cp := make([]byte, len(f.data))
		copy(cp, f.data)
		out[c] = frame{data: cp, addr: f.addr, pipe: f.pipe}
		i = (i + 1) % ringCapacity
	}
	return out
}
