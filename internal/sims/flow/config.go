package flow

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// NeighborMode selects how left/right/above neighbours are resolved.
type NeighborMode string

// PropagationMode selects how far one scan carries the flow.
type PropagationMode string

// StalePolicy selects what happens when a deferred action outlives the state
// it was scheduled for.
type StalePolicy string

const (
	// NeighborsLegacy checks left as i-1 >= 0 and right as i+1 < width, so
	// left wraps across rows and right only works on the first row.
	NeighborsLegacy NeighborMode = "legacy"
	// NeighborsBounded resolves neighbours on the same row and column only.
	NeighborsBounded NeighborMode = "bounded"

	// SingleHop advances the flow one cell per completed transition.
	SingleHop PropagationMode = "single-hop"
	// FixedPoint rescans until the flowing count stops growing.
	FixedPoint PropagationMode = "fixed-point"

	// StaleFire applies every deferred action when it expires.
	StaleFire StalePolicy = "fire"
	// StaleDrop discards deferred actions whose cell generation moved on.
	StaleDrop StalePolicy = "drop"
)

const maxSide = 256

// Config controls the flow simulation.
type Config struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`

	BlockChance float64 `yaml:"blockChance"`

	FlowDelay        time.Duration `yaml:"flowDelay"`
	DisableDelay     time.Duration `yaml:"disableDelay"`
	AutoDisableDelay time.Duration `yaml:"autoDisableDelay"`

	Neighbors   NeighborMode    `yaml:"neighbors"`
	Propagation PropagationMode `yaml:"propagation"`
	StaleTimers StalePolicy     `yaml:"staleTimers"`
}

// DefaultConfig returns the stock 10x10 grid with the legacy rules.
func DefaultConfig() Config {
	return Config{
		Width:            10,
		Height:           10,
		BlockChance:      0.2,
		FlowDelay:        3000 * time.Millisecond,
		DisableDelay:     3000 * time.Millisecond,
		AutoDisableDelay: 10000 * time.Millisecond,
		Neighbors:        NeighborsLegacy,
		Propagation:      SingleHop,
		StaleTimers:      StaleFire,
	}
}

// GuardedConfig returns the defaults with row-aware neighbours, fixed-point
// propagation and stale deferred actions dropped.
func GuardedConfig() Config {
	c := DefaultConfig()
	c.Neighbors = NeighborsBounded
	c.Propagation = FixedPoint
	c.StaleTimers = StaleDrop
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Width > maxSide {
		return fmt.Errorf("width must be between 1 and %d, got %d", maxSide, c.Width)
	}
	if c.Height <= 0 || c.Height > maxSide {
		return fmt.Errorf("height must be between 1 and %d, got %d", maxSide, c.Height)
	}
	if c.BlockChance < 0 || c.BlockChance > 1 {
		return fmt.Errorf("blockChance must be within [0,1], got %v", c.BlockChance)
	}
	if c.FlowDelay < 0 || c.DisableDelay < 0 || c.AutoDisableDelay < 0 {
		return errors.New("delays must not be negative")
	}
	switch c.Neighbors {
	case NeighborsLegacy, NeighborsBounded:
	default:
		return fmt.Errorf("unknown neighbors mode %q", c.Neighbors)
	}
	switch c.Propagation {
	case SingleHop, FixedPoint:
	default:
		return fmt.Errorf("unknown propagation mode %q", c.Propagation)
	}
	switch c.StaleTimers {
	case StaleFire, StaleDrop:
	default:
		return fmt.Errorf("unknown staleTimers policy %q", c.StaleTimers)
	}
	return nil
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read flow config: %w", err)
	}
	return ParseConfig(data, DefaultConfig())
}

// ParseConfig decodes YAML over base and validates the result.
func ParseConfig(data []byte, base Config) (Config, error) {
	c := base
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse flow config YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid flow config: %w", err)
	}
	return c, nil
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	return ApplyMap(DefaultConfig(), cfg)
}

// ApplyMap overrides fields of c from a string map. Unparseable or
// out-of-range values are ignored.
func ApplyMap(c Config, cfg map[string]string) Config {
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxSide {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxSide {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["block_chance"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.BlockChance = parsed
		}
	}
	if v, ok := cfg["flow_delay_ms"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.FlowDelay = time.Duration(parsed) * time.Millisecond
		}
	}
	if v, ok := cfg["disable_delay_ms"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.DisableDelay = time.Duration(parsed) * time.Millisecond
		}
	}
	if v, ok := cfg["auto_disable_ms"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.AutoDisableDelay = time.Duration(parsed) * time.Millisecond
		}
	}
	if v, ok := cfg["neighbors"]; ok {
		switch m := NeighborMode(v); m {
		case NeighborsLegacy, NeighborsBounded:
			c.Neighbors = m
		}
	}
	if v, ok := cfg["propagation"]; ok {
		switch m := PropagationMode(v); m {
		case SingleHop, FixedPoint:
			c.Propagation = m
		}
	}
	if v, ok := cfg["stale_timers"]; ok {
		switch p := StalePolicy(v); p {
		case StaleFire, StaleDrop:
			c.StaleTimers = p
		}
	}
	return c
}
