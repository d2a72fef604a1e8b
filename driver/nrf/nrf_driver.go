//go:build tinygo || baremetal

// Package nrf drives the nRF52 on-chip RADIO in Nordic's 1 Mbit proprietary
// mode with an nRF24-style packet header, so nRF52 boards can stand in for
// nRF24L01 modules.
package nrf

import (
	"unsafe"

	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"

	"device/nrf"
)

// RAM layout: LENGTH (6 bits), S1 (3 bits, one byte in RAM), payload.
const (
	headerSize = 2
	lengthBits = 6
	s1Bits     = 3
	baseLen    = 4
)

// Driver implements transport.RadioDriver on the RADIO peripheral. The
// peripheral has a single packet buffer, so the RX FIFO depth is one.
type Driver struct {
	buffer    [headerSize + proto.PacketSize]byte
	pipes     pipeTable
	writeTo   proto.Address
	listening bool
}

func New() transport.RadioDriver { return &Driver{} }

// startHFCLK starts the high-frequency crystal the radio needs.
func startHFCLK() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
}

func (d *Driver) Begin() error {
	startHFCLK()

	nrf.RADIO.POWER.Set(1)
	nrf.RADIO.MODE.Set(nrf.RADIO_MODE_MODE_Nrf_1Mbit)
	nrf.RADIO.TXPOWER.Set(nrf.RADIO_TXPOWER_TXPOWER_0dBm)
	nrf.RADIO.FREQUENCY.Set(proto.DefaultChannel)

	nrf.RADIO.PCNF0.Set(
		(lengthBits << nrf.RADIO_PCNF0_LFLEN_Pos) |
			(0 << nrf.RADIO_PCNF0_S0LEN_Pos) |
			(s1Bits << nrf.RADIO_PCNF0_S1LEN_Pos))

	nrf.RADIO.PCNF1.Set(
		(proto.PacketSize << nrf.RADIO_PCNF1_MAXLEN_Pos) |
			(0 << nrf.RADIO_PCNF1_STATLEN_Pos) |
			(baseLen << nrf.RADIO_PCNF1_BALEN_Pos) |
			(nrf.RADIO_PCNF1_ENDIAN_Big << nrf.RADIO_PCNF1_ENDIAN_Pos))

	// 16-bit CRC, matching EN_CRC|CRCO on the nRF24
	nrf.RADIO.CRCCNF.Set(2)
	nrf.RADIO.CRCINIT.Set(0xFFFF)
	nrf.RADIO.CRCPOLY.Set(0x11021)

	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.buffer[0]))))
	nrf.RADIO.RXADDRESSES.Set(0)
	return nil
}

func (d *Driver) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	nrf.RADIO.FREQUENCY.Set(uint32(channel))
	return nil
}

func (d *Driver) OpenReadingPipe(pipe uint8, addr proto.Address) error {
	if err := d.pipes.set(pipe, addr); err != nil {
		return err
	}
	d.loadRxAddresses()
	return nil
}

func (d *Driver) loadRxAddresses() {
	nrf.RADIO.BASE0.Set(d.pipes.base[0])
	nrf.RADIO.BASE1.Set(d.pipes.base[1])
	nrf.RADIO.PREFIX0.Set(d.pipes.prefix0())
	nrf.RADIO.PREFIX1.Set(d.pipes.prefix1())
	nrf.RADIO.RXADDRESSES.Set(uint32(d.pipes.enabled))
}

func (d *Driver) OpenWritingPipe(addr proto.Address) error {
	d.writeTo = addr
	return nil
}

func disable() {
	nrf.RADIO.EVENTS_DISABLED.Set(0)
	nrf.RADIO.TASKS_DISABLE.Set(1)
	for nrf.RADIO.EVENTS_DISABLED.Get() == 0 {
	}
}

// StartListening restores the receive addresses, which a write borrows
// logical address 0 from, and arms the receiver.
func (d *Driver) StartListening() {
	disable()
	d.loadRxAddresses()
	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.TASKS_RXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_START.Set(1)
	d.listening = true
}

func (d *Driver) StopListening() {
	disable()
	d.listening = false
}

// Available reports a received packet with a valid CRC. A corrupt packet
// is dropped and the receiver re-armed.
func (d *Driver) Available() bool {
	if !d.listening || nrf.RADIO.EVENTS_END.Get() == 0 {
		return false
	}
	if nrf.RADIO.CRCSTATUS.Get() == 0 {
		d.rearm()
		return false
	}
	return true
}

func (d *Driver) rearm() {
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_START.Set(1)
}

func (d *Driver) Read(buf []byte) (int, uint8) {
	if !d.Available() {
		return 0, 0
	}
	n := int(d.buffer[0])
	if n > proto.PacketSize {
		n = proto.PacketSize
	}
	pipe := uint8(nrf.RADIO.RXMATCH.Get())
	n = copy(buf, d.buffer[headerSize:headerSize+n])
	d.rearm()
	return n, pipe
}

func (d *Driver) Write(buf []byte) bool {
	if d.listening || len(buf) == 0 || len(buf) > proto.PacketSize {
		return false
	}
	base, prefix := splitAddress(d.writeTo)
	nrf.RADIO.BASE0.Set(base)
	nrf.RADIO.PREFIX0.Set(d.pipes.prefix0()&^0xFF | uint32(prefix))
	nrf.RADIO.TXADDRESS.Set(0)

	d.buffer[0] = byte(len(buf))
	d.buffer[1] = 0
	copy(d.buffer[headerSize:], buf)

	nrf.RADIO.EVENTS_READY.Set(0)
	nrf.RADIO.TASKS_TXEN.Set(1)
	for nrf.RADIO.EVENTS_READY.Get() == 0 {
	}
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.TASKS_START.Set(1)
	for nrf.RADIO.EVENTS_END.Get() == 0 {
	}
	disable()
	return true
}
