//go:build !tinygo && !baremetal

// Package nrf24 drives an nRF24L01(+) transceiver from a Linux host over SPI,
// with CE on a GPIO line. The chip is polled; the IRQ line is not used.
package nrf24

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"

	proto "github.com/ystepanoff/digiware/protocol"
)

var ErrNotFound = errors.New("nrf24: transceiver not responding")

// Conn is the SPI connection to the chip. periph's spi.Conn satisfies it.
type Conn interface {
	Tx(w, r []byte) error
}

// CE is the chip-enable line. periph's gpio.PinOut satisfies it.
type CE interface {
	Out(l gpio.Level) error
}

// DefaultSendTimeout bounds the wait for TX_DS or MAX_RT after a write. Five
// retries 500µs apart finish well inside it.
const DefaultSendTimeout = 10 * time.Millisecond

// Device is an nRF24L01 implementing transport.RadioDriver with the RF24
// library's air settings: static 32-byte payloads, auto-ack with hardware
// retries, 16-bit CRC, 1 Mbps, 5-byte addresses.
type Device struct {
	mu          sync.Mutex
	conn        Conn
	ce          CE
	status      byte
	sendTimeout time.Duration
	log         *logrus.Entry

	// pipe 0 doubles as the ack pipe while transmitting
	rxAddr0    proto.Address
	hasRxAddr0 bool
}

func New(conn Conn, ce CE) *Device {
	return &Device{
		conn:        conn,
		ce:          ce,
		sendTimeout: DefaultSendTimeout,
		log:         logrus.WithField("component", "nrf24"),
	}
}

// command clocks one command byte plus len(data) bytes and returns what the
// chip shifted back after the status byte.
func (d *Device) command(cmd command, data []byte) ([]byte, error) {
	w := make([]byte, 1+len(data))
	w[0] = byte(cmd)
	copy(w[1:], data)
	r := make([]byte, len(w))
	if err := d.conn.Tx(w, r); err != nil {
		return nil, fmt.Errorf("nrf24 command %#02x: %w", byte(cmd), err)
	}
	d.status = r[0]
	return r[1:], nil
}

func (d *Device) readRegister(reg register, n int) ([]byte, error) {
	return d.command(cmdReadRegister|command(reg), make([]byte, n))
}

func (d *Device) writeRegister(reg register, data ...byte) error {
	_, err := d.command(cmdWriteRegister|command(reg), data)
	return err
}

func (d *Device) setCE(high bool) error {
	if err := d.ce.Out(gpio.Level(high)); err != nil {
		return fmt.Errorf("nrf24 CE: %w", err)
	}
	return nil
}

// updateConfig read-modify-writes CONFIG.
func (d *Device) updateConfig(set, clear byte) error {
	cfg, err := d.readRegister(regConfig, 1)
	if err != nil {
		return err
	}
	return d.writeRegister(regConfig, (cfg[0]|set)&^clear)
}

func (d *Device) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.setCE(false); err != nil {
		return err
	}
	steps := []struct {
		reg register
		val byte
	}{
		{regSetupAW, addrWidth5},
		{regConfig, bitEnCrc | bitCrcO | bitPwrUp},
		{regEnAA, allPipes},
		{regSetupRetr, retries500us5},
		{regEnRxAddr, 0},
		{regDynPd, 0},
		{regFeature, 0},
		{regRFSetup, rfSetup1MbpsMax},
		{regStatus, statusIRQMask},
	}
	for _, s := range steps {
		if err := d.writeRegister(s.reg, s.val); err != nil {
			return err
		}
	}
	if _, err := d.command(cmdFlushRx, nil); err != nil {
		return err
	}
	if _, err := d.command(cmdFlushTx, nil); err != nil {
		return err
	}

	// a missing chip reads back as all zeros or all ones
	aw, err := d.readRegister(regSetupAW, 1)
	if err != nil {
		return err
	}
	if aw[0] != addrWidth5 {
		return ErrNotFound
	}
	// power-up settle
	time.Sleep(5 * time.Millisecond)
	d.log.Info("transceiver ready")
	return nil
}

func (d *Device) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(regRFCh, channel)
}

// OpenReadingPipe sets the address of pipe 0-5 and enables it. Pipes 2-5
// only take the least significant address byte and share the upper four
// with pipe 1.
func (d *Device) OpenReadingPipe(pipe uint8, addr proto.Address) error {
	if int(pipe) >= proto.MaxPipes {
		return fmt.Errorf("nrf24 pipe %d: %w", pipe, proto.ErrInvalidAddress)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if pipe < 2 {
		err = d.writeRegister(regRxAddr(pipe), addr[:]...)
	} else {
		err = d.writeRegister(regRxAddr(pipe), addr[0])
	}
	if err != nil {
		return err
	}
	if pipe == 0 {
		d.rxAddr0, d.hasRxAddr0 = addr, true
	}
	return d.enablePipe(pipe)
}

// OpenWritingPipe sets the destination. Acks come back on pipe 0, so it is
// pointed at the same address until StartListening restores it.
func (d *Device) OpenWritingPipe(addr proto.Address) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writeRegister(regTxAddr, addr[:]...); err != nil {
		return err
	}
	if err := d.writeRegister(regRxAddr(0), addr[:]...); err != nil {
		return err
	}
	return d.enablePipe(0)
}

func (d *Device) enablePipe(pipe uint8) error {
	if err := d.writeRegister(regRxPw(pipe), payloadWidth); err != nil {
		return err
	}
	en, err := d.readRegister(regEnRxAddr, 1)
	if err != nil {
		return err
	}
	return d.writeRegister(regEnRxAddr, en[0]|1<<pipe)
}

// restorePipe0 puts pipe 0 back on its reading address, or closes it when
// it was only ever used for acks.
func (d *Device) restorePipe0() error {
	if d.hasRxAddr0 {
		return d.writeRegister(regRxAddr(0), d.rxAddr0[:]...)
	}
	en, err := d.readRegister(regEnRxAddr, 1)
	if err != nil {
		return err
	}
	return d.writeRegister(regEnRxAddr, en[0]&^1)
}

func (d *Device) StartListening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.restorePipe0(); err != nil {
		d.log.WithError(err).Warn("start listening")
		return
	}
	if err := d.updateConfig(bitPrimRx, 0); err != nil {
		d.log.WithError(err).Warn("start listening")
		return
	}
	if err := d.writeRegister(regStatus, statusIRQMask); err != nil {
		d.log.WithError(err).Warn("start listening")
		return
	}
	if err := d.setCE(true); err != nil {
		d.log.WithError(err).Warn("start listening")
	}
}

func (d *Device) StopListening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.setCE(false); err != nil {
		d.log.WithError(err).Warn("stop listening")
	}
	if err := d.updateConfig(0, bitPrimRx); err != nil {
		d.log.WithError(err).Warn("stop listening")
	}
}

func (d *Device) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	fifo, err := d.readRegister(regFifoStatus, 1)
	if err != nil {
		d.log.WithError(err).Debug("fifo status")
		return false
	}
	return fifo[0]&bitRxEmpty == 0
}

// Read pops one static-width payload from the RX FIFO.
func (d *Device) Read(buf []byte) (int, uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.command(cmdNop, nil); err != nil {
		return 0, 0
	}
	pipe := (d.status & rxPipeMask) >> rxPipeShift
	if pipe == rxPipeEmpty {
		return 0, 0
	}

	payload, err := d.command(cmdReadRxPayload, make([]byte, payloadWidth))
	if err != nil {
		return 0, 0
	}
	d.writeRegister(regStatus, bitRxDr)
	return copy(buf, payload), pipe
}

// Write sends one payload, zero-padded to the static width, and waits for
// TX_DS (acked) or MAX_RT (retries exhausted).
func (d *Device) Write(buf []byte) bool {
	if len(buf) == 0 || len(buf) > payloadWidth {
		return false
	}
	payload := make([]byte, payloadWidth)
	copy(payload, buf)
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.writeRegister(regStatus, bitTxDs|bitMaxRt); err != nil {
		return false
	}
	if _, err := d.command(cmdWriteTxPayload, payload); err != nil {
		return false
	}
	// CE must stay high for at least 10µs to start the transmission
	if err := d.setCE(true); err != nil {
		return false
	}
	time.Sleep(10 * time.Microsecond)
	d.setCE(false)

	deadline := time.Now().Add(d.sendTimeout)
	for {
		if _, err := d.command(cmdNop, nil); err != nil {
			return false
		}
		if d.status&bitTxDs != 0 {
			d.writeRegister(regStatus, bitTxDs)
			return true
		}
		if d.status&bitMaxRt != 0 || !time.Now().Before(deadline) {
			d.log.WithField("status", d.status).Warn("transmit not acknowledged")
			d.command(cmdFlushTx, nil)
			d.writeRegister(regStatus, bitTxDs|bitMaxRt)
			return false
		}
		time.Sleep(50 * time.Microsecond)
	}
}
