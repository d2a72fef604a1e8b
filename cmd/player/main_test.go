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

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "player.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_InitFailureClosesRadio(t *testing.T) {
	tests := []struct {
		name  string
		radio transport.RadioDriver
		body  string
	}{
		{"radio does not begin", deadRadio{stub.New()}, "[display]\ndriver = \"memory\"\n"},
		{"encoder pin missing", stub.New(), "[display]\ndriver = \"memory\"\n[input]\nclk = \"NOSUCHPIN\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyCloser{}
			orig := newLink
			t.Cleanup(func() { newLink = orig })
			newLink = func(config.RadioConfig) (*transport.Link, io.Closer, error) {
				return transport.NewLink(tt.radio), spy, nil
			}

			var stderr bytes.Buffer
			if code := run([]string{"-config", writeConfig(t, tt.body)}, &stderr); code != 1 {
				t.Errorf("run() = %d, want 1 (stderr %q)", code, stderr.String())
			}
			if !spy.closed {
				t.Error("radio left open after init failure")
			}
		})
	}
}

func TestRun_BadConfig(t *testing.T) {
	var stderr bytes.Buffer
	path := writeConfig(t, "[node]\npoll_interval = \"0s\"\n")
	if code := run([]string{"-config", path}, &stderr); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
	if stderr.Len() == 0 {
		t.Error("no error printed")
	}
}
