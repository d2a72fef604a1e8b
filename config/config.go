// Package config loads node settings from TOML, with .env and environment
// overrides for the host binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	proto "github.com/ystepanoff/digiware/protocol"
	"github.com/ystepanoff/digiware/transport"
)

const DefaultConfigPath = "digiware.toml"

type Config struct {
	Node       NodeConfig       `toml:"node"`
	Radio      RadioConfig      `toml:"radio"`
	Input      InputConfig      `toml:"input"`
	Display    DisplayConfig    `toml:"display"`
	Player     PlayerConfig     `toml:"player"`
	Hub        HubConfig        `toml:"hub"`
	Log        LogConfig        `toml:"log"`
	Telemetry  TelemetryConfig  `toml:"telemetry"`
	Scoreboard ScoreboardConfig `toml:"scoreboard"`
	configPath string           `toml:"-"`
}

type NodeConfig struct {
	Name         string `toml:"name"`
	PollInterval string `toml:"poll_interval"`
}

type RadioConfig struct {
	// Driver is "nrf24" for SPI hardware or "stub" for an in-memory radio.
	Driver     string `toml:"driver"`
	Topology   string `toml:"topology"`
	Framing    string `toml:"framing"`
	Channel    uint8  `toml:"channel"`
	SPIPort    string `toml:"spi_port"`
	CEPin      string `toml:"ce_pin"`
	TxSPIPort  string `toml:"tx_spi_port,omitempty"`
	TxCEPin    string `toml:"tx_ce_pin,omitempty"`
	Listen     string `toml:"listen"`
	HubAddress string `toml:"hub_address"`
	Holdoff    string `toml:"holdoff"`
}

type InputConfig struct {
	CLK        string `toml:"clk"`
	DT         string `toml:"dt"`
	SW         string `toml:"sw"`
	Pull       string `toml:"pull"`
	ActiveHigh bool   `toml:"active_high"`
	Debounce   string `toml:"debounce"`
	Settle     string `toml:"settle"`
}

type DisplayConfig struct {
	// Driver is "oled" or "memory".
	Driver     string `toml:"driver"`
	I2CBus     string `toml:"i2c_bus"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Rows       int    `toml:"rows"`
	LineHeight int    `toml:"line_height"`
}

type PlayerConfig struct {
	Options    []string `toml:"options"`
	SplashHold string   `toml:"splash_hold"`
}

type SeatConfig struct {
	Name string `toml:"name"`
	// Address is where the hub sends to this player.
	Address string `toml:"address"`
	// Listen is the hub pipe address this player sends to.
	Listen string `toml:"listen"`
}

type HubConfig struct {
	Players []SeatConfig `toml:"players"`
	// Seed fixes the dice for reproducible games; 0 seeds from the clock.
	Seed int64 `toml:"seed"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

type ScoreboardConfig struct {
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"key_prefix"`
	SerialPort    string `toml:"serial_port,omitempty"`
	Baud          int    `toml:"baud"`
}

func Default() Config {
	return Config{
		Node: NodeConfig{
			Name:         "player",
			PollInterval: "2ms",
		},
		Radio: RadioConfig{
			Driver:     "nrf24",
			Topology:   "single",
			Framing:    "legacy",
			Channel:    proto.DefaultChannel,
			SPIPort:    "/dev/spidev0.0",
			CEPin:      "GPIO25",
			Listen:     proto.DefaultPlayerAddress,
			HubAddress: proto.DefaultHubAddress,
			Holdoff:    transport.DefaultHoldoff.String(),
		},
		Input: InputConfig{
			CLK:      "GPIO17",
			DT:       "GPIO27",
			SW:       "GPIO22",
			Pull:     "up",
			Debounce: "50ms",
			Settle:   "10ms",
		},
		Display: DisplayConfig{
			Driver:     "oled",
			Width:      128,
			Height:     64,
			Rows:       4,
			LineHeight: 16,
		},
		Player: PlayerConfig{
			Options:    []string{"Buy", "Pass", "Pay Rent", "Trade"},
			SplashHold: "200ms",
		},
		Hub: HubConfig{
			Players: []SeatConfig{
				{Name: "Player 1", Address: proto.DefaultPlayerAddress, Listen: proto.DefaultHubAddress},
				{Name: "Player 2", Address: "00003", Listen: "2PLYR"},
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "digiware",
		},
		Scoreboard: ScoreboardConfig{
			KeyPrefix: "digiware",
			Baud:      9600,
		},
	}
}

// Load reads path over the defaults. A missing file is an error.
func Load(path string) (Config, error) {
	cfg, exists, err := LoadOrDefault(path)
	if err != nil {
		return Config{}, err
	}
	if !exists {
		return Config{}, fmt.Errorf("config %s: %w", path, os.ErrNotExist)
	}
	return cfg, nil
}

// LoadOrDefault reads path over the defaults and reports whether the file
// existed.
func LoadOrDefault(path string) (Config, bool, error) {
	cfg := Default()
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}
	// lists in the file replace the defaults rather than extend them
	defaults := Default()
	cfg.Player.Options, cfg.Hub.Players = nil, nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, true, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Player.Options == nil {
		cfg.Player.Options = defaults.Player.Options
	}
	if cfg.Hub.Players == nil {
		cfg.Hub.Players = defaults.Hub.Players
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

func (cfg *Config) ConfigPath() string { return cfg.configPath }

func (cfg *Config) Validate() error {
	if _, err := cfg.PollInterval(); err != nil {
		return err
	}
	if err := cfg.Radio.validate(); err != nil {
		return err
	}
	if err := cfg.Input.validate(); err != nil {
		return err
	}
	if cfg.Display.Rows < 2 {
		return fmt.Errorf("display.rows must be at least 2, got %d", cfg.Display.Rows)
	}
	if len(cfg.Player.Options) == 0 {
		return errors.New("player.options must not be empty")
	}
	if _, err := parseDuration("player.splash_hold", cfg.Player.SplashHold); err != nil {
		return err
	}
	if err := cfg.Hub.validate(); err != nil {
		return err
	}
	if _, err := cfg.Log.ParseLevel(); err != nil {
		return err
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", cfg.Log.Format)
	}
	return nil
}

func (cfg *Config) PollInterval() (time.Duration, error) {
	d, err := parseDuration("node.poll_interval", cfg.Node.PollInterval)
	if err != nil {
		return 0, err
	}
	// feeds time.NewTicker
	if d == 0 {
		return 0, fmt.Errorf("node.poll_interval must be positive, got %s", cfg.Node.PollInterval)
	}
	return d, nil
}

func (cfg *Config) SplashHold() time.Duration {
	d, _ := parseDuration("player.splash_hold", cfg.Player.SplashHold)
	return d
}

func (r *RadioConfig) validate() error {
	switch r.Driver {
	case "nrf24", "stub":
	default:
		return fmt.Errorf("radio.driver must be nrf24 or stub, got %q", r.Driver)
	}
	if _, err := transport.ParseTopology(r.Topology); err != nil {
		return fmt.Errorf("radio.topology: %w", err)
	}
	if _, err := proto.ParseFraming(r.Framing); err != nil {
		return fmt.Errorf("radio.framing: %w", err)
	}
	if r.Channel > proto.MaxChannel {
		return fmt.Errorf("radio.channel %d: %w", r.Channel, proto.ErrInvalidChannel)
	}
	if _, err := proto.ParseAddress(r.Listen); err != nil {
		return fmt.Errorf("radio.listen: %w", err)
	}
	if _, err := proto.ParseAddress(r.HubAddress); err != nil {
		return fmt.Errorf("radio.hub_address: %w", err)
	}
	if _, err := parseDuration("radio.holdoff", r.Holdoff); err != nil {
		return err
	}
	return nil
}

func (r *RadioConfig) Codec() (proto.Codec, error) { return proto.ParseFraming(r.Framing) }

func (r *RadioConfig) TopologyKind() (transport.Topology, error) {
	return transport.ParseTopology(r.Topology)
}

func (r *RadioConfig) ListenAddress() (proto.Address, error) { return proto.ParseAddress(r.Listen) }

func (r *RadioConfig) Hub() (proto.Address, error) { return proto.ParseAddress(r.HubAddress) }

func (r *RadioConfig) HoldoffDuration() time.Duration {
	d, _ := parseDuration("radio.holdoff", r.Holdoff)
	return d
}

func (in *InputConfig) validate() error {
	if _, err := parseDuration("input.debounce", in.Debounce); err != nil {
		return err
	}
	if _, err := parseDuration("input.settle", in.Settle); err != nil {
		return err
	}
	return nil
}

func (in *InputConfig) DebounceDuration() time.Duration {
	d, _ := parseDuration("input.debounce", in.Debounce)
	return d
}

func (in *InputConfig) SettleDuration() time.Duration {
	d, _ := parseDuration("input.settle", in.Settle)
	return d
}

// Seat is a validated hub player entry. Pipe is the hub's reading pipe for
// this player, in configuration order.
type Seat struct {
	Name    string
	Address proto.Address
	Listen  proto.Address
	Pipe    uint8
}

func (h *HubConfig) validate() error {
	_, err := h.Seats()
	return err
}

// Seats parses the player list. Reading pipes 2-5 only differ from pipe 1
// in the first address byte, so those listen addresses must share bytes 1-4
// with the second player's.
func (h *HubConfig) Seats() ([]Seat, error) {
	if len(h.Players) == 0 {
		return nil, errors.New("hub.players must not be empty")
	}
	if len(h.Players) > proto.MaxPipes {
		return nil, fmt.Errorf("hub.players: at most %d players, got %d", proto.MaxPipes, len(h.Players))
	}

	seats := make([]Seat, len(h.Players))
	seen := make(map[proto.Address]string, len(h.Players))
	for i, p := range h.Players {
		addr, err := proto.ParseAddress(p.Address)
		if err != nil {
			return nil, fmt.Errorf("hub.players[%d].address: %w", i, err)
		}
		listen, err := proto.ParseAddress(p.Listen)
		if err != nil {
			return nil, fmt.Errorf("hub.players[%d].listen: %w", i, err)
		}
		if prev, dup := seen[listen]; dup {
			return nil, fmt.Errorf("hub.players[%d].listen %s already used by %s", i, listen, prev)
		}
		seen[listen] = p.Name
		if i >= 2 && string(listen[1:]) != string(seats[1].Listen[1:]) {
			return nil, fmt.Errorf("hub.players[%d].listen %s must share bytes 1-4 with %s",
				i, listen, seats[1].Listen)
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		seats[i] = Seat{Name: name, Address: addr, Listen: listen, Pipe: uint8(i)}
	}
	return seats, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", field, s)
	}
	return d, nil
}
