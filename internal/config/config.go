// Package config provides configuration loading for dice.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (DICE_*)
//  2. Project config (.dice/config.yml)
//  3. Built-in defaults
//
// Nested fields use underscores in environment variables, e.g.
// DICE_EXTRACT_AMBIGUITY=first.
package config

import "time"

// Config represents the complete dice configuration.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	List    ListConfig    `yaml:"list" mapstructure:"list"`
}

// ExtractConfig configures how functions are located and invoked.
type ExtractConfig struct {
	Ambiguity string        `yaml:"ambiguity" mapstructure:"ambiguity"`   // "strict" or "first"
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`       // JS invocation bound, 0 disables
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"` // parsed files kept, 0 disables
}

// WatchConfig configures `dice watch`.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// ListConfig configures `dice list`.
type ListConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns over function names
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Ambiguity: "strict",
			Timeout:   5 * time.Second,
			CacheSize: 256,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		List: ListConfig{
			Include: []string{"*"},
		},
	}
}
