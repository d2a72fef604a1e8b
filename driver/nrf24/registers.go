//go:build !tinygo && !baremetal

package nrf24

type command byte
type register byte

// SPI commands.
const (
	cmdReadRegister   command = 0x00
	cmdWriteRegister  command = 0x20
	cmdReadRxPayload  command = 0x61
	cmdWriteTxPayload command = 0xA0
	cmdFlushTx        command = 0xE1
	cmdFlushRx        command = 0xE2
	cmdNop            command = 0xFF
)

// Registers.
const (
	regConfig     register = 0x00
	regEnAA       register = 0x01
	regEnRxAddr   register = 0x02
	regSetupAW    register = 0x03
	regSetupRetr  register = 0x04
	regRFCh       register = 0x05
	regRFSetup    register = 0x06
	regStatus     register = 0x07
	regRxAddrP0   register = 0x0A
	regRxAddrP1   register = 0x0B
	regTxAddr     register = 0x10
	regRxPwP0     register = 0x11
	regFifoStatus register = 0x17
	regDynPd      register = 0x1C
	regFeature    register = 0x1D
)

// CONFIG bits.
const (
	bitEnCrc  byte = 1 << 3
	bitCrcO   byte = 1 << 2
	bitPwrUp  byte = 1 << 1
	bitPrimRx byte = 1 << 0
)

// STATUS bits.
const (
	bitRxDr       byte = 1 << 6
	bitTxDs       byte = 1 << 5
	bitMaxRt      byte = 1 << 4
	rxPipeShift        = 1
	rxPipeMask    byte = 0x0E
	rxPipeEmpty   byte = 7
	statusIRQMask      = bitRxDr | bitTxDs | bitMaxRt
)

const (
	bitRxEmpty      byte = 1 << 0    // FIFO_STATUS
	addrWidth5      byte = 0x03      // SETUP_AW
	rfSetup1MbpsMax byte = 0x03 << 1 // RF_SETUP: 1 Mbps, 0 dBm
	retries500us5   byte = 0x15      // SETUP_RETR: 500µs delay, 5 retries
	allPipes        byte = 0x3F
	payloadWidth         = 32
)

// regRxAddr returns the RX_ADDR_Pn register for pipe n.
func regRxAddr(pipe uint8) register { return regRxAddrP0 + register(pipe) }

// regRxPw returns the RX_PW_Pn register for pipe n.
func regRxPw(pipe uint8) register { return regRxPwP0 + register(pipe) }
