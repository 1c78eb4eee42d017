package app

import (
	"flag"
	"time"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Sim        string
	ConfigPath string
	Tile       int
	Panel      int
	TPS        int
	Seed       int64
	LogLevel   string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "flow", Tile: 48, Panel: 220, TPS: 60, LogLevel: "info"}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML grid configuration")
	fs.IntVar(&c.Tile, "tile", c.Tile, "tile size in pixels")
	fs.IntVar(&c.Panel, "panel", c.Panel, "side panel width in pixels, 0 hides it")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset, 0 keeps the configured seed")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "logrus level")
}

// Step is the virtual time advanced per tick.
func (c *Config) Step() time.Duration {
	if c.TPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TPS)
}
