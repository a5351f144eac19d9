package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the propbox.yaml document. Zero fields fall back to defaults
// during Normalize, so a partial file only overrides what it names.
type Config struct {
	Addr string `yaml:"addr"`

	TickRate        int `yaml:"tick_rate"`
	CatchupMaxTicks int `yaml:"catchup_max_ticks"`
	CommandCapacity int `yaml:"command_capacity"`
	PerActorLimit   int `yaml:"per_actor_limit"`

	MoveSpeed     float64 `yaml:"move_speed"`     // world units per second
	RotationSpeed float64 `yaml:"rotation_speed"` // degrees per second
	HandOffset    float64 `yaml:"hand_offset"`
	HandHeight    float64 `yaml:"hand_height"`

	SpawnX float64 `yaml:"spawn_x"`
	SpawnY float64 `yaml:"spawn_y"`
	SpawnZ float64 `yaml:"spawn_z"`

	HeartbeatSeconds       int `yaml:"heartbeat_seconds"`
	DisconnectAfterSeconds int `yaml:"disconnect_after_seconds"`

	// Catalog lists the spawnable prototype IDs in cycle order. Left empty
	// it is populated with the built-in box/sphere/cylinder set.
	Catalog []string `yaml:"catalog,omitempty"`

	Logging LoggingSpec `yaml:"logging"`
}

// LoggingSpec selects sinks and verbosity for the structured event router.
type LoggingSpec struct {
	Sinks           []string `yaml:"sinks,omitempty"`
	MinimumSeverity string   `yaml:"minimum_severity"`
	JSONPath        string   `yaml:"json_path,omitempty"`
}

// Load reads the YAML document at path. An empty path yields the defaults;
// a missing file is an error so a typoed path does not silently run with
// defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, cfg.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("propbox.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("propbox.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Addr:                   ":8080",
		TickRate:               15,
		CatchupMaxTicks:        4,
		CommandCapacity:        256,
		PerActorLimit:          8,
		MoveSpeed:              5,
		RotationSpeed:          540,
		HandOffset:             1,
		HandHeight:             1.2,
		HeartbeatSeconds:       2,
		DisconnectAfterSeconds: 6,
		Logging: LoggingSpec{
			Sinks:           []string{"console"},
			MinimumSeverity: "info",
		},
	}
}

// Normalize fills defaulted fields and bootstraps the catalog when the
// document supplied none.
func (c *Config) Normalize() {
	def := defaults()
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = def.Addr
	}
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if c.CatchupMaxTicks <= 0 {
		c.CatchupMaxTicks = def.CatchupMaxTicks
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = def.CommandCapacity
	}
	if c.PerActorLimit <= 0 {
		c.PerActorLimit = def.PerActorLimit
	}
	if c.MoveSpeed <= 0 {
		c.MoveSpeed = def.MoveSpeed
	}
	if c.RotationSpeed <= 0 {
		c.RotationSpeed = def.RotationSpeed
	}
	if c.HandOffset <= 0 {
		c.HandOffset = def.HandOffset
	}
	if c.HandHeight == 0 {
		c.HandHeight = def.HandHeight
	}
	if c.HeartbeatSeconds <= 0 {
		c.HeartbeatSeconds = def.HeartbeatSeconds
	}
	if c.DisconnectAfterSeconds <= 0 {
		c.DisconnectAfterSeconds = def.DisconnectAfterSeconds
	}
	if len(c.Catalog) == 0 {
		c.Catalog = []string{"box", "sphere", "cylinder"}
	}
	if len(c.Logging.Sinks) == 0 {
		c.Logging.Sinks = append([]string(nil), def.Logging.Sinks...)
	}
	if strings.TrimSpace(c.Logging.MinimumSeverity) == "" {
		c.Logging.MinimumSeverity = def.Logging.MinimumSeverity
	}
}

// Validate reports configuration mistakes at startup.
func (c Config) Validate() error {
	if c.TickRate <= 0 || c.TickRate > 240 {
		return fmt.Errorf("tick_rate %d out of range", c.TickRate)
	}
	if c.DisconnectAfterSeconds < c.HeartbeatSeconds {
		return fmt.Errorf("disconnect_after_seconds %d shorter than heartbeat_seconds %d", c.DisconnectAfterSeconds, c.HeartbeatSeconds)
	}
	if len(c.Catalog) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(c.Catalog))
	for _, id := range c.Catalog {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("catalog contains a blank prototype id")
		}
		if seen[id] {
			return fmt.Errorf("catalog repeats prototype %q", id)
		}
		seen[id] = true
	}
	switch c.Logging.MinimumSeverity {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging severity %q", c.Logging.MinimumSeverity)
	}
	return nil
}

// HeartbeatInterval returns the heartbeat cadence expected from clients.
func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// DisconnectAfter returns how long a silent player survives before pruning.
func (c Config) DisconnectAfter() time.Duration {
	return time.Duration(c.DisconnectAfterSeconds) * time.Second
}
