// Command sim plays a whole game in the terminal: one hub and several player
// nodes share an in-memory radio, and the keyboard drives the focused
// player's encoder.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	proto "github.com/ystepanoff/digiware/protocol"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	players := fs.Int("players", 2, "number of player nodes")
	framing := fs.String("framing", "legacy", "wire framing: legacy or framed")
	seed := fs.Int64("seed", 0, "dice seed; 0 seeds from the clock")
	logPath := fs.String("log", "", "write node logs to this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	codec, err := proto.ParseFraming(*framing)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	logrus.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		logrus.SetOutput(f)
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	dice := rand.New(rand.NewSource(*seed))

	m, err := newModel(context.Background(), simConfig{
		players: *players,
		codec:   codec,
		dice:    func() int { return dice.Intn(6) + 1 },
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
