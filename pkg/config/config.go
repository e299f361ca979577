// Package config loads the server's TOML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/StoreStation/phantomcraft/pkg/version"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Roam    RoamConfig    `toml:"roam"`
}

type ServerConfig struct {
	Address           string          `toml:"address"`
	MaxPlayers        int             `toml:"max_players"`
	MOTD              string          `toml:"motd"`
	DefaultGameMode   string          `toml:"default_gamemode"` // survival, creative, adventure, spectator
	Build             version.Version `toml:"build"`            // revision identifier the server declares
	KeepAliveInterval time.Duration   `toml:"keep_alive_interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// RoamConfig configures the companion phantom each player gets on join.
type RoamConfig struct {
	Enabled           bool            `toml:"enabled"`
	NameTag           string          `toml:"name_tag"` // {owner} is replaced by the owner's name
	RemovalDelayTicks int             `toml:"removal_delay_ticks"`
	SkinFile          string          `toml:"skin_file"` // session profile JSON; empty copies the owner's skin
	Offset            OffsetConfig    `toml:"offset"`
	Equipment         EquipmentConfig `toml:"equipment"`
}

type OffsetConfig struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	Z float64 `toml:"z"`
}

// EquipmentConfig names a material per slot. Empty slots stay empty.
type EquipmentConfig struct {
	Helmet     string `toml:"helmet"`
	ChestPlate string `toml:"chest_plate"`
	Leggings   string `toml:"leggings"`
	Boots      string `toml:"boots"`
	Hand       string `toml:"hand"`
}

// OwnerPlaceholder is substituted in RoamConfig.NameTag.
const OwnerPlaceholder = "{owner}"

// NameTagFor returns the name tag for a phantom owned by owner.
func (c RoamConfig) NameTagFor(owner string) string {
	return strings.ReplaceAll(c.NameTag, OwnerPlaceholder, owner)
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	var errs error
	if c.Server.Address == "" {
		errs = multierr.Append(errs, fmt.Errorf("server.address is empty"))
	}
	if c.Server.MaxPlayers <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("server.max_players must be positive, got %d", c.Server.MaxPlayers))
	}
	if c.Server.Build == version.Unknown {
		errs = multierr.Append(errs, fmt.Errorf("server.build is not set"))
	}
	if c.Server.KeepAliveInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("server.keep_alive_interval must be positive"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	if c.Roam.RemovalDelayTicks < 0 {
		errs = multierr.Append(errs, fmt.Errorf("roam.removal_delay_ticks must not be negative"))
	}
	return errs
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           ":25565",
			MaxPlayers:        20,
			MOTD:              "A phantomcraft server",
			DefaultGameMode:   "survival",
			Build:             version.V1_8_R3,
			KeepAliveInterval: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Roam: RoamConfig{
			Enabled:           true,
			NameTag:           OwnerPlaceholder,
			RemovalDelayTicks: 20,
			Offset:            OffsetConfig{X: 1.5},
		},
	}
}
