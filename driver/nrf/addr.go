package nrf

import (
	"fmt"
	"math/bits"

	proto "github.com/ystepanoff/digiware/protocol"
)

// splitAddress maps a 5-byte pipe address onto the RADIO's 4-byte base and
// 1-byte prefix. The first byte becomes the prefix, so addresses that differ
// only in their first byte share a base the way nRF24 pipes 1-5 do. Bytes
// are bit-reversed because the peripheral runs big-endian on air.
func splitAddress(a proto.Address) (base uint32, prefix uint8) {
	prefix = bits.Reverse8(a[0])
	for i := len(a) - 1; i >= 1; i-- {
		base = base<<8 | uint32(bits.Reverse8(a[i]))
	}
	return base, prefix
}

// pipeTable mirrors the BASE0/BASE1/PREFIX0/PREFIX1/RXADDRESSES registers.
// Logical address 0 is pipe 0; pipes 1-5 use BASE1.
type pipeTable struct {
	base    [2]uint32
	prefix  [8]uint8
	enabled uint8
}

func (t *pipeTable) set(pipe uint8, a proto.Address) error {
	if int(pipe) >= proto.MaxPipes {
		return fmt.Errorf("pipe %d: %w", pipe, proto.ErrInvalidAddress)
	}
	base, prefix := splitAddress(a)
	if pipe == 0 {
		t.base[0] = base
	} else {
		others := t.enabled &^ 1 &^ (1 << pipe)
		if others != 0 && t.base[1] != base {
			return fmt.Errorf("pipe %d address %s must share bytes 1-4 with pipes 1-5: %w",
				pipe, a, proto.ErrInvalidAddress)
		}
		t.base[1] = base
	}
	t.prefix[pipe] = prefix
	t.enabled |= 1 << pipe
	return nil
}

func (t *pipeTable) prefix0() uint32 {
	return uint32(t.prefix[0]) | uint32(t.prefix[1])<<8 | uint32(t.prefix[2])<<16 | uint32(t.prefix[3])<<24
}

func (t *pipeTable) prefix1() uint32 {
	return uint32(t.prefix[4]) | uint32(t.prefix[5])<<8 | uint32(t.prefix[6])<<16 | uint32(t.prefix[7])<<24
}
