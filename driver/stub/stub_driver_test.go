//go:build !tinygo && !baremetal

package stub

import (
	"bytes"
	"testing"

	proto "github.com/ystepanoff/digiware/protocol"
)

var (
	hubAddr    = proto.MustAddress("00001")
	playerAddr = proto.MustAddress("00002")
)

func TestEther_DeliversToMatchingPipe(t *testing.T) {
	ether := NewEther()
	hub, player := ether.New(), ether.New()
	for _, d := range []*Driver{hub, player} {
		if err := d.Begin(); err != nil {
			t.Fatal(err)
		}
	}

	if err := player.OpenReadingPipe(0, playerAddr); err != nil {
		t.Fatal(err)
	}
	if err := hub.OpenReadingPipe(3, hubAddr); err != nil {
		t.Fatal(err)
	}
	player.StartListening()
	hub.StartListening()

	hub.StopListening()
	hub.OpenWritingPipe(playerAddr)
	if !hub.Write([]byte("go\x00")) {
		t.Fatal("Write failed")
	}
	hub.StartListening()

	if !player.Available() {
		t.Fatal("player has nothing available")
	}
	buf := make([]byte, proto.PacketSize)
	n, pipe := player.Read(buf)
	if n != proto.PacketSize || pipe != 0 {
		t.Errorf("Read = (%d, %d), want (%d, 0)", n, pipe, proto.PacketSize)
	}
	if !bytes.HasPrefix(buf, []byte("go\x00")) {
		t.Errorf("payload = %q", buf[:4])
	}
	if hub.Available() {
		t.Error("sender heard its own packet")
	}

	player.StopListening()
	player.OpenWritingPipe(hubAddr)
	player.Write([]byte("ROLL\x00"))
	player.StartListening()
	if _, pipe := hub.Read(buf); pipe != 3 {
		t.Errorf("hub pipe = %d, want 3", pipe)
	}
}

func TestDriver_WriteWhileListeningFails(t *testing.T) {
	d := NewEther().New()
	d.Begin()
	d.StartListening()
	if d.Write([]byte("go\x00")) {
		t.Error("Write succeeded while listening")
	}
	if len(d.GetTxLog()) != 0 {
		t.Error("failed write was logged")
	}
}

func TestDriver_NotListeningHearsNothing(t *testing.T) {
	ether := NewEther()
	tx, rx := ether.New(), ether.New()
	tx.Begin()
	rx.Begin()
	rx.OpenReadingPipe(0, playerAddr)

	tx.OpenWritingPipe(playerAddr)
	tx.Write([]byte("go\x00"))

	rx.StartListening()
	if rx.Available() {
		t.Error("packet sent before listening was delivered")
	}
}

func TestDriver_InjectAndTxLog(t *testing.T) {
	d := NewEther().New()
	d.Begin()
	d.InjectRx([]byte("Boardwalk\x00"), 2)
	d.StartListening()

	buf := make([]byte, proto.PacketSize)
	n, pipe := d.Read(buf)
	if n != proto.PacketSize || pipe != 2 || string(proto.Content(buf)) != "Boardwalk" {
		t.Errorf("Read = (%d, %d, %q)", n, pipe, proto.Content(buf))
	}
	if n, _ := d.Read(buf); n != 0 {
		t.Errorf("empty Read returned %d bytes", n)
	}

	d.StopListening()
	d.OpenWritingPipe(hubAddr)
	d.Write([]byte("ROLL\x00"))
	log := d.GetTxLog()
	if len(log) != 1 || log[0].To != hubAddr || string(log[0].Data) != "ROLL\x00" {
		t.Errorf("TxLog = %+v", log)
	}
}

func TestDriver_InvalidSetup(t *testing.T) {
	d := NewEther().New()
	if err := d.SetChannel(proto.MaxChannel + 1); err == nil {
		t.Error("SetChannel accepted an out-of-range channel")
	}
	if err := d.OpenReadingPipe(proto.MaxPipes, hubAddr); err == nil {
		t.Error("OpenReadingPipe accepted pipe 6")
	}
}

func TestRingBuffer_OverwritesOldest(t *testing.T) {
	var rb ringBuffer
	for i := 0; i < ringCapacity+3; i++ {
		rb.push(frame{data: []byte{byte(i)}})
	}
	if rb.count != ringCapacity {
		t.Fatalf("count = %d, want %d", rb.count, ringCapacity)
	}
	f, ok := rb.pop()
	if !ok || f.data[0] != 3 {
		t.Errorf("oldest = %v, want 3", f.data)
	}
}
