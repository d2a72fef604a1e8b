package protocol

import (
	"encoding/hex"
	"fmt"
)

// Address names a logical radio pipe. The Arduino nodes use five ASCII
// digits ("00001"); raw 40-bit addresses are written as ten hex digits.
type Address [AddressSize]byte

// ParseAddress accepts either five printable bytes or ten hex digits.
func ParseAddress(s string) (Address, error) {
	var a Address
	switch len(s) {
	case AddressSize:
		copy(a[:], s)
		return a, nil
	case AddressSize * 2:
		if _, err := hex.Decode(a[:], []byte(s)); err != nil {
			return a, fmt.Errorf("%w %q: %v", ErrInvalidAddress, s, err)
		}
		return a, nil
	}
	return a, fmt.Errorf("%w %q: want %d bytes or %d hex digits", ErrInvalidAddress, s, AddressSize, AddressSize*2)
}

// MustAddress is ParseAddress for compile-time constants.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string {
	for _, b := range a {
		if b < 0x20 || b > 0x7e {
			return hex.EncodeToString(a[:])
		}
	}
	return string(a[:])
}
