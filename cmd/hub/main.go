// Command hub runs the hub node: it rotates the turn between the configured
// players and mirrors the game to Redis and a serial board display.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ystepanoff/digiware"
	"github.com/ystepanoff/digiware/config"
	"github.com/ystepanoff/digiware/hub"
	"github.com/ystepanoff/digiware/internal/telemetry"
	proto "github.com/ystepanoff/digiware/protocol"
)

// newLink is swapped out by tests.
var newLink = digiware.NewLink

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("hub", flag.ContinueOnError)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seats, _ := cfg.Hub.Seats()
	link, closer, err := newLink(cfg.Radio)
	if err != nil {
		log.WithError(err).Error("radio init failed")
		return 1
	}
	defer closer.Close()
	listen := make([]proto.Address, len(seats))
	hubSeats := make([]hub.Seat, len(seats))
	for i, s := range seats {
		listen[i] = s.Listen
		hubSeats[i] = hub.Seat{Name: s.Name, Address: s.Address, Pipe: s.Pipe}
	}
	if err := link.Begin(cfg.Radio.Channel, listen...); err != nil {
		log.WithError(err).Error("radio init failed")
		return 1
	}

	tracer := telemetry.NoopTracer()
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
		if err != nil {
			log.WithError(err).Warn("telemetry setup failed, running without traces")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.WithError(err).Warn("telemetry shutdown")
				}
			}()
			tracer = telemetry.Tracer("hub")
		}
	}

	pubs, closeAll := openPublishers(ctx, cfg.Scoreboard, log)
	defer closeAll()

	seed := cfg.Hub.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	dice := rand.New(rand.NewSource(seed))
	codec, _ := cfg.Radio.Codec()

	h, err := hub.New(link, hubSeats, hub.Config{
		Codec:     codec,
		Holdoff:   cfg.Radio.HoldoffDuration(),
		Dice:      func() int { return dice.Intn(6) + 1 },
		Session:   uuid.NewString(),
		Publisher: pubs,
		Tracer:    tracer,
	})
	if err != nil {
		log.WithError(err).Error("hub init failed")
		return 1
	}

	interval, _ := cfg.PollInterval()
	if err := h.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("hub stopped")
		return 1
	}
	return 0
}

// openPublishers connects the configured scoreboards. A scoreboard that
// cannot be reached is logged and left out; the game runs without it.
func openPublishers(ctx context.Context, sb config.ScoreboardConfig, log *logrus.Logger) (hub.MultiPublisher, func()) {
	var pubs hub.MultiPublisher
	var closers []io.Closer

	if sb.RedisAddr != "" {
		client, err := hub.DialRedis(ctx, sb.RedisAddr, sb.RedisPassword, sb.RedisDB)
		if err != nil {
			log.WithError(err).Warn("redis scoreboard disabled")
		} else {
			pubs = append(pubs, hub.NewRedisPublisher(client, sb.KeyPrefix))
			closers = append(closers, client)
		}
	}
	if sb.SerialPort != "" {
		port, err := hub.OpenSerial(sb.SerialPort, sb.Baud)
		if err != nil {
			log.WithError(err).Warn("serial scoreboard disabled")
		} else {
			pubs = append(pubs, hub.NewSerialPublisher(port))
			closers = append(closers, port)
		}
	}
	return pubs, func() {
		for _, c := range closers {
			c.Close()
		}
	}
}
