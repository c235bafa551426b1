package audiomux

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// defaultPoolSize backs the implicit group when the configuration leaves
// DefaultPoolSize unset.
const defaultPoolSize = 8

// Config declares the manager's groups and initial master volume. It is
// consumed once by New; nothing here is runtime-mutable.
//
// Zero volumes mean "unset" and are raised to 1 during initialization, so a
// TOML file may omit them.
type Config struct {
	// MasterVolume is the initial global multiplier. 0 means 1.
	MasterVolume float64 `toml:"master_volume"`
	// DefaultPoolSize sizes the implicit catch-all group. 0 means 8.
	DefaultPoolSize int `toml:"default_pool_size"`
	// Groups are created in declaration order, ahead of the implicit one.
	Groups []GroupConfig `toml:"groups"`
}

// GroupConfig declares one named group.
type GroupConfig struct {
	ID GroupID `toml:"id"`
	// PoolSize is the fixed number of channels; must be at least 1.
	PoolSize int `toml:"pool_size"`
	// Volume is the initial group multiplier. 0 means 1.
	Volume float64 `toml:"volume"`
	// Route is an opaque token handed to external mixer integration.
	Route string `toml:"route"`
}

// DefaultConfig returns a configuration with no declared groups: just the
// implicit group at full volume.
func DefaultConfig() *Config {
	return &Config{MasterVolume: 1, DefaultPoolSize: defaultPoolSize}
}

// LoadConfig reads and parses a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the declaration for problems New would otherwise trip
// over: negative volumes, non-positive pool sizes, duplicate ids and use of
// the reserved default id.
func (c *Config) Validate() error {
	if c.MasterVolume < 0 {
		return fmt.Errorf("master_volume must not be negative, got %v", c.MasterVolume)
	}
	if c.DefaultPoolSize < 0 {
		return fmt.Errorf("default_pool_size must not be negative, got %d", c.DefaultPoolSize)
	}
	seen := make(map[GroupID]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.ID == "" {
			return fmt.Errorf("group declared without an id")
		}
		if g.ID == GroupDefault {
			return fmt.Errorf("group id %q is reserved for the implicit group", GroupDefault)
		}
		if seen[g.ID] {
			return fmt.Errorf("duplicate group id %q", g.ID)
		}
		seen[g.ID] = true
		if g.PoolSize < 1 {
			return fmt.Errorf("group %q: pool_size must be at least 1, got %d", g.ID, g.PoolSize)
		}
		if g.Volume < 0 {
			return fmt.Errorf("group %q: volume must not be negative, got %v", g.ID, g.Volume)
		}
	}
	return nil
}
