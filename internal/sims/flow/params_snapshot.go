package flow

import (
	"fmt"
	"strconv"
	"time"

	"flowgrid/internal/core"
)

const (
	keyFlowDelay        = "flow_delay_ms"
	keyDisableDelay     = "disable_delay_ms"
	keyAutoDisableDelay = "auto_disable_ms"
)

// Parameters reports the current configuration grouped for the side panel.
func (s *Simulation) Parameters() core.ParameterSnapshot {
	cfg := s.cfg
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("w", "Width", cfg.Width),
				intParam("h", "Height", cfg.Height),
				int64Param("seed", "Seed", cfg.Seed),
				floatParam("block_chance", "Block chance", cfg.BlockChance),
			},
		},
		{
			Name: "Timers",
			Params: []core.Parameter{
				msParam(keyFlowDelay, "Flow delay", cfg.FlowDelay),
				msParam(keyDisableDelay, "Disable delay", cfg.DisableDelay),
				msParam(keyAutoDisableDelay, "Auto-disable", cfg.AutoDisableDelay),
			},
		},
		{
			Name: "Rules",
			Params: []core.Parameter{
				stringParam("neighbors", "Neighbours", string(cfg.Neighbors)),
				stringParam("propagation", "Propagation", string(cfg.Propagation)),
				stringParam("stale_timers", "Stale timers", string(cfg.StaleTimers)),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the delays adjustable from the panel.
func (s *Simulation) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: keyFlowDelay, Label: "Flow delay", Step: 500, Min: 0, Max: 60000, HasMin: true, HasMax: true},
		{Key: keyDisableDelay, Label: "Disable delay", Step: 500, Min: 0, Max: 60000, HasMin: true, HasMax: true},
		{Key: keyAutoDisableDelay, Label: "Auto-disable", Step: 1000, Min: 0, Max: 120000, HasMin: true, HasMax: true},
	}
}

// SetIntParameter updates a delay in milliseconds. Actions already queued keep
// the delay they were scheduled with.
func (s *Simulation) SetIntParameter(key string, value int) bool {
	for _, ctrl := range s.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		d := time.Duration(ctrl.Clamp(value)) * time.Millisecond
		switch key {
		case keyFlowDelay:
			s.cfg.FlowDelay = d
		case keyDisableDelay:
			s.cfg.DisableDelay = d
		case keyAutoDisableDelay:
			s.cfg.AutoDisableDelay = d
		}
		return true
	}
	return false
}

// StatusLines reports the counters shown in the side panel.
func (s *Simulation) StatusLines() []string {
	st := s.Stats()
	return []string{
		fmt.Sprintf("clock    %.1fs", st.Clock.Seconds()),
		fmt.Sprintf("enabled  %d", st.Enabled),
		fmt.Sprintf("flowing  %d", st.Flowing),
		fmt.Sprintf("changing %d", st.Changing),
		fmt.Sprintf("blocked  %d", st.Blocked),
		fmt.Sprintf("pending  %d", st.Pending),
	}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func msParam(key, label string, d time.Duration) core.Parameter {
	return intParam(key, label, int(d/time.Millisecond))
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}
