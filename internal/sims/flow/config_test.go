package flow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsStockGrid(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 10, c.Width)
	assert.Equal(t, 10, c.Height)
	assert.Equal(t, 0.2, c.BlockChance)
	assert.Equal(t, 3*time.Second, c.FlowDelay)
	assert.Equal(t, 3*time.Second, c.DisableDelay)
	assert.Equal(t, 10*time.Second, c.AutoDisableDelay)
	assert.Equal(t, NeighborsLegacy, c.Neighbors)
	assert.Equal(t, SingleHop, c.Propagation)
	assert.Equal(t, StaleFire, c.StaleTimers)
	require.NoError(t, c.Validate())
}

func TestFromMapOverrides(t *testing.T) {
	c := FromMap(map[string]string{
		"w":                "12",
		"h":                "0",
		"seed":             "42",
		"block_chance":     "0.5",
		"flow_delay_ms":    "1500",
		"auto_disable_ms":  "bogus",
		"disable_delay_ms": "250",
		"neighbors":        "bounded",
		"propagation":      "sideways",
		"stale_timers":     "drop",
	})
	assert.Equal(t, 12, c.Width)
	assert.Equal(t, 10, c.Height, "invalid height is ignored")
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, 0.5, c.BlockChance)
	assert.Equal(t, 1500*time.Millisecond, c.FlowDelay)
	assert.Equal(t, 250*time.Millisecond, c.DisableDelay)
	assert.Equal(t, 10*time.Second, c.AutoDisableDelay)
	assert.Equal(t, NeighborsBounded, c.Neighbors)
	assert.Equal(t, SingleHop, c.Propagation)
	assert.Equal(t, StaleDrop, c.StaleTimers)

	assert.Equal(t, DefaultConfig(), FromMap(nil))
}

func TestParseConfigYAML(t *testing.T) {
	data := []byte(`
width: 8
blockChance: 0
flowDelay: 1500ms
autoDisableDelay: 20s
propagation: fixed-point
`)
	c, err := ParseConfig(data, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 8, c.Width)
	assert.Equal(t, 10, c.Height)
	assert.Equal(t, 0.0, c.BlockChance)
	assert.Equal(t, 1500*time.Millisecond, c.FlowDelay)
	assert.Equal(t, 3*time.Second, c.DisableDelay)
	assert.Equal(t, 20*time.Second, c.AutoDisableDelay)
	assert.Equal(t, FixedPoint, c.Propagation)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"width":       "width: 0",
		"chance":      "blockChance: 1.5",
		"neighbours":  "neighbors: diagonal",
		"stale":       "staleTimers: maybe",
		"delay":       "flowDelay: -1s",
		"propagation": "propagation: everywhere",
		"syntax":      "width: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc), DefaultConfig())
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("height: 6\nstaleTimers: drop\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Height)
	assert.Equal(t, StaleDrop, c.StaleTimers)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetIntParameterClamps(t *testing.T) {
	s := New(openConfig())
	require.True(t, s.SetIntParameter(keyFlowDelay, 1000))
	assert.Equal(t, time.Second, s.Config().FlowDelay)

	require.True(t, s.SetIntParameter(keyAutoDisableDelay, 999999))
	assert.Equal(t, 120*time.Second, s.Config().AutoDisableDelay)

	require.True(t, s.SetIntParameter(keyDisableDelay, -5))
	assert.Equal(t, time.Duration(0), s.Config().DisableDelay)

	assert.False(t, s.SetIntParameter("w", 3))

	p, ok := s.Parameters().Lookup(keyFlowDelay)
	require.True(t, ok)
	assert.Equal(t, "1000", p.Value)
}

func TestShorterFlowDelayAppliesToNewTransitions(t *testing.T) {
	s := New(openConfig())
	require.True(t, s.SetIntParameter(keyFlowDelay, 500))
	mustClick(t, s, 1)
	s.Advance(500 * time.Millisecond)
	assert.True(t, cellAt(t, s, 1).Flowing)
}

func TestStatusLinesReportCounters(t *testing.T) {
	s := New(openConfig())
	mustClick(t, s, 1)
	s.Advance(1500 * time.Millisecond)

	lines := s.StatusLines()
	require.Len(t, lines, 6)
	assert.Equal(t, "clock    1.5s", lines[0])
	assert.Equal(t, "enabled  2", lines[1])
	assert.Equal(t, "changing 1", lines[3])
}

func TestOpenLayersFileOverVariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 4\nflowDelay: 1s\n"), 0o644))

	s, err := Open("flow-guarded", path)
	require.NoError(t, err)
	assert.Equal(t, "flow-guarded", s.Name())
	assert.Equal(t, 4, s.Config().Width)
	assert.Equal(t, time.Second, s.Config().FlowDelay)
	assert.Equal(t, StaleDrop, s.Config().StaleTimers)

	plain, err := Open("flow", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Neighbors, plain.Config().Neighbors)

	_, err = Open("life", "")
	assert.Error(t, err)
}
