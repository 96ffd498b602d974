// Package config loads flowkit configuration from an optional TOML file.
//
// Every setting has a compiled-in default, so a missing file is not an
// error: Load on a nonexistent path returns Default(). A typical file:
//
//	direction = "LR"
//
//	[padding]
//	base = 24
//	increment = 18
//	decay = 0.6
//	min_step = 4
//
//	[spacing]
//	node_sep = 40
//	rank_sep = 120
//	component_sep = 80
//
//	[node]
//	width = 150
//	height = 40
//
//	[cache]
//	backend = "file"       # "file", "redis", or "none"
//	redis_addr = "localhost:6379"
//	ttl_hours = 168
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowkit/pkg/flow"
	"github.com/matzehuels/flowkit/pkg/layout"
	"github.com/matzehuels/flowkit/pkg/view"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// NodeSize is the fallback node size used when the caller supplies no
// geometry provider.
type NodeSize struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// CacheConfig selects and configures the derived-result cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
	TTLHours  int    `toml:"ttl_hours"`
}

// Config is the full flowkit configuration.
type Config struct {
	// Direction is the default layout direction ("LR", "RL", "TB", "BT").
	Direction string             `toml:"direction"`
	Padding   view.PaddingConfig `toml:"padding"`
	Spacing   layout.Spacing     `toml:"spacing"`
	Node      NodeSize           `toml:"node"`
	Cache     CacheConfig        `toml:"cache"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Direction: flow.DirectionLR,
		Padding:   view.DefaultPadding,
		Spacing:   layout.DefaultSpacing,
		Node:      NodeSize{Width: 150, Height: 40},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			TTLHours:  168,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. A nonexistent
// path yields Default() without error; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Dimensions returns the geometry provider derived from the configured
// fallback node size.
func (c Config) Dimensions() flow.DimensionsFunc {
	return flow.FixedDimensions(c.Node.Width, c.Node.Height)
}
