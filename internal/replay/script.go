package replay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"flowgrid/internal/sims/flow"

	"gopkg.in/yaml.v3"
)

// Step clicks one cell at a virtual time.
type Step struct {
	At    time.Duration `yaml:"at"`
	Click int           `yaml:"click"`
}

// ConfigSource is either a path to a YAML grid config or an inline mapping.
type ConfigSource struct {
	Path   string
	inline *yaml.Node
}

// UnmarshalYAML accepts a scalar path or a mapping of config fields.
func (c *ConfigSource) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		c.Path = value.Value
	case yaml.MappingNode:
		c.inline = value
	default:
		return fmt.Errorf("config must be a path or a mapping (line %d)", value.Line)
	}
	return nil
}

// Script is a replayable sequence of clicks.
type Script struct {
	Sim      string        `yaml:"sim"`
	Config   ConfigSource  `yaml:"config"`
	Steps    []Step        `yaml:"steps"`
	Duration time.Duration `yaml:"duration"`

	// Grid, when set, replaces the variant and config section entirely.
	Grid *flow.Config `yaml:"-"`
}

// Load reads a script. A relative config path is resolved against the
// script's directory.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Script{}, err
	}
	if s.Config.Path != "" && !filepath.IsAbs(s.Config.Path) {
		s.Config.Path = filepath.Join(filepath.Dir(path), s.Config.Path)
	}
	return s, nil
}

// Parse decodes a script and orders its steps by time.
func Parse(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script YAML: %w", err)
	}
	if s.Sim == "" {
		s.Sim = "flow"
	}
	if s.Duration < 0 {
		return Script{}, errors.New("duration must not be negative")
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			return Script{}, fmt.Errorf("step %d: at must not be negative", i)
		}
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return s, nil
}

// GridConfig resolves the grid configuration for the script's variant.
func (s Script) GridConfig() (flow.Config, error) {
	if s.Grid != nil {
		return *s.Grid, nil
	}
	cfg, err := flow.Variant(s.Sim)
	if err != nil {
		return flow.Config{}, err
	}
	switch {
	case s.Config.Path != "":
		data, err := os.ReadFile(s.Config.Path)
		if err != nil {
			return flow.Config{}, fmt.Errorf("failed to read flow config: %w", err)
		}
		return flow.ParseConfig(data, cfg)
	case s.Config.inline != nil:
		if err := s.Config.inline.Decode(&cfg); err != nil {
			return flow.Config{}, fmt.Errorf("failed to decode inline config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return flow.Config{}, fmt.Errorf("invalid flow config: %w", err)
		}
	}
	return cfg, nil
}

// End is the virtual time the replay stops at.
func (s Script) End() time.Duration {
	end := s.Duration
	if n := len(s.Steps); n > 0 && s.Steps[n-1].At > end {
		end = s.Steps[n-1].At
	}
	return end
}
