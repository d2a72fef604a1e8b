// Command player runs a player node on a Linux board: an nRF24 on SPI, a
// rotary encoder on GPIO and an SSD1306 on I²C.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/digiware"
	"github.com/ystepanoff/digiware/config"
	"github.com/ystepanoff/digiware/display"
	"github.com/ystepanoff/digiware/driver/gpio"
	"github.com/ystepanoff/digiware/input"
	"github.com/ystepanoff/digiware/player"
)

// newLink is swapped out by tests.
var newLink = digiware.NewLink

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("player", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultConfigPath, "path to the TOML config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.FromEnv(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log := logrus.StandardLogger()
	if err := cfg.Log.Apply(log); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	link, closer, err := newLink(cfg.Radio)
	if err != nil {
		log.WithError(err).Error("radio init failed")
		return 1
	}
	defer closer.Close()
	listen, _ := cfg.Radio.ListenAddress()
	if err := link.Begin(cfg.Radio.Channel, listen); err != nil {
		log.WithError(err).Error("radio init failed")
		return 1
	}

	enc, err := openEncoder(cfg.Input)
	if err != nil {
		log.WithError(err).Error("encoder init failed")
		return 1
	}
	drv, err := openDisplay(cfg.Display)
	if err != nil {
		log.WithError(err).Error("display init failed")
		return 1
	}

	codec, _ := cfg.Radio.Codec()
	hubAddr, _ := cfg.Radio.Hub()
	node := player.New(link, enc,
		display.NewScreen(drv, display.WithRows(cfg.Display.Rows), display.WithLineHeight(int16(cfg.Display.LineHeight))),
		player.Config{
			Hub:        hubAddr,
			Codec:      codec,
			Holdoff:    cfg.Radio.HoldoffDuration(),
			Options:    cfg.Player.Options,
			SplashHold: cfg.SplashHold(),
		})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval, _ := cfg.PollInterval()
	log.WithFields(logrus.Fields{"name": cfg.Node.Name, "listen": listen, "hub": hubAddr}).Info("player node started")
	if err := node.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("player stopped")
		return 1
	}
	return 0
}

func openEncoder(in config.InputConfig) (*input.Encoder, error) {
	pull := gpio.Pull(in.Pull)
	clk, err := gpio.Open(in.CLK, pull)
	if err != nil {
		return nil, err
	}
	dt, err := gpio.Open(in.DT, pull)
	if err != nil {
		return nil, err
	}
	sw, err := gpio.Open(in.SW, pull)
	if err != nil {
		return nil, err
	}

	buttonOpts := []input.ButtonOption{input.WithDebounce(in.DebounceDuration())}
	if in.ActiveHigh {
		buttonOpts = append(buttonOpts, input.WithActiveHigh())
	}
	return input.NewEncoder(
		input.NewScroller(clk, dt, input.DefaultOptions, input.WithSettle(in.SettleDuration())),
		input.NewButton(sw, buttonOpts...),
	), nil
}

func openDisplay(d config.DisplayConfig) (display.Driver, error) {
	switch d.Driver {
	case "oled":
		return display.OpenOLED(d.I2CBus, d.Width, d.Height)
	case "memory":
		return display.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown display driver %q", d.Driver)
}
