// Package config loads simulator settings from a file, environment
// variables, and flags via viper, replacing the ad hoc flag parsing an
// earlier version of this tool used.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every knob the simulate command exposes.
type Config struct {
	Plies             int     `mapstructure:"plies"`
	Iterations        int     `mapstructure:"iterations"`
	Threads           int     `mapstructure:"threads"`
	NumPlayers        int     `mapstructure:"num_players"`
	RackCapacity      int     `mapstructure:"rack_capacity"`
	LogFile           string  `mapstructure:"log_file"`
	LogFormat         string  `mapstructure:"log_format"`
	StoppingCondition string  `mapstructure:"stopping_condition"`
	PruneEquityGap    float64 `mapstructure:"prune_equity_gap"`
	PruneMaxMoves     int     `mapstructure:"prune_max_moves"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Plies:          2,
		Iterations:     1000,
		Threads:        1,
		NumPlayers:     2,
		RackCapacity:   7,
		LogFormat:      "trace",
		PruneEquityGap: 3.0,
		PruneMaxMoves:  20,
	}
}

// Load reads configuration from (in ascending priority) a config file
// named simulate.yaml/.json/.toml on the given search paths, then
// environment variables prefixed SIMULATE_. Pass a *viper.Viper the caller
// has already bound command-line flags into to let flags take the highest
// priority, or nil to use just the file, environment, and defaults.
func Load(v *viper.Viper, searchPaths ...string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetConfigName("simulate")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("SIMULATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("plies", def.Plies)
	v.SetDefault("iterations", def.Iterations)
	v.SetDefault("threads", def.Threads)
	v.SetDefault("num_players", def.NumPlayers)
	v.SetDefault("rack_capacity", def.RackCapacity)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("prune_equity_gap", def.PruneEquityGap)
	v.SetDefault("prune_max_moves", def.PruneMaxMoves)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading simulate config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling simulate config: %w", err)
	}
	return cfg, nil
}
