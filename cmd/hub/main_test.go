package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ystepanoff/digiware/config"
	"github.com/ystepanoff/digiware/driver/stub"
	"github.com/ystepanoff/digiware/transport"
)

type spyCloser struct{ closed bool }

func (c *spyCloser) Close() error {
	c.closed = true
	return nil
}

// deadRadio is a stub radio that never powers up.
type deadRadio struct{ transport.RadioDriver }

func (deadRadio) Begin() error { return errors.New("no transceiver") }

func TestRun_InitFailureClosesRadio(t *testing.T) {
	spy := &spyCloser{}
	orig := newLink
	t.Cleanup(func() { newLink = orig })
	newLink = func(config.RadioConfig) (*transport.Link, io.Closer, error) {
		return transport.NewLink(deadRadio{stub.New()}), spy, nil
	}

	path := filepath.Join(t.TempDir(), "hub.toml")
	if err := os.WriteFile(path, []byte("[radio]\ndriver = \"stub\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer
	if code := run([]string{"-config", path}, &stderr); code != 1 {
		t.Errorf("run() = %d, want 1 (stderr %q)", code, stderr.String())
	}
	if !spy.closed {
		t.Error("radio left open after init failure")
	}
}

func TestRun_RadioOpenFails(t *testing.T) {
	orig := newLink
	t.Cleanup(func() { newLink = orig })
	newLink = func(config.RadioConfig) (*transport.Link, io.Closer, error) {
		return nil, nil, errors.New("spi busy")
	}

	var stderr bytes.Buffer
	if code := run([]string{"-config", filepath.Join(t.TempDir(), "none.toml")}, &stderr); code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}
}
