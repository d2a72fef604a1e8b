package nrf

import (
	"errors"
	"testing"

	proto "github.com/ystepanoff/digiware/protocol"
)

func TestSplitAddress(t *testing.T) {
	base, prefix := splitAddress(proto.Address{0x01, 0x80, 0x00, 0x00, 0x01})
	if prefix != 0x80 {
		t.Errorf("prefix = %#02x, want 0x80", prefix)
	}
	if base != 0x80000001 {
		t.Errorf("base = %#08x, want 0x80000001", base)
	}
}

func TestPipeTable(t *testing.T) {
	var tbl pipeTable
	if err := tbl.set(0, proto.MustAddress("00002")); err != nil {
		t.Fatal(err)
	}
	if err := tbl.set(1, proto.MustAddress("1DIGI")); err != nil {
		t.Fatal(err)
	}
	if err := tbl.set(2, proto.MustAddress("2DIGI")); err != nil {
		t.Fatal(err)
	}
	if tbl.enabled != 0x07 {
		t.Errorf("enabled = %#02x, want 0x07", tbl.enabled)
	}

	_, p1 := splitAddress(proto.MustAddress("1DIGI"))
	_, p2 := splitAddress(proto.MustAddress("2DIGI"))
	if got := tbl.prefix0(); got>>8&0xFF != uint32(p1) || got>>16&0xFF != uint32(p2) {
		t.Errorf("PREFIX0 = %#08x", got)
	}

	err := tbl.set(3, proto.MustAddress("3NODE"))
	if !errors.Is(err, proto.ErrInvalidAddress) {
		t.Errorf("mismatched base: err = %v", err)
	}
	// reopening the only BASE1 pipe may change the base
	var single pipeTable
	single.set(1, proto.MustAddress("1DIGI"))
	if err := single.set(1, proto.MustAddress("1NODE")); err != nil {
		t.Errorf("reopen pipe 1: %v", err)
	}
	if err := tbl.set(6, proto.MustAddress("00001")); err == nil {
		t.Error("pipe 6 accepted")
	}
}
