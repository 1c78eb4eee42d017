package flow

import (
	"errors"
	"testing"
	"time"

	"flowgrid/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.BlockChance = 0
	return cfg
}

func mustClick(t *testing.T, s *Simulation, i int) {
	t.Helper()
	require.NoError(t, s.Click(i))
}

func cellAt(t *testing.T, s *Simulation, i int) Cell {
	t.Helper()
	c, ok := s.Cell(i)
	require.True(t, ok, "cell %d out of range", i)
	return c
}

func TestInitialState(t *testing.T) {
	s := New(DefaultConfig())
	cells := s.Snapshot()
	require.Len(t, cells, 100)

	for i, c := range cells {
		if c.Entry != (i == 0) {
			t.Fatalf("cell %d entry=%v", i, c.Entry)
		}
		if c.Exit != (i == 99) {
			t.Fatalf("cell %d exit=%v", i, c.Exit)
		}
		if c.Enabled != (i == 0) || c.Flowing != (i == 0) {
			t.Fatalf("cell %d enabled=%v flowing=%v", i, c.Enabled, c.Flowing)
		}
		if c.Changing {
			t.Fatalf("cell %d should not start changing", i)
		}
	}
	st := s.Stats()
	assert.Equal(t, 1, st.Enabled)
	assert.Equal(t, 1, st.Flowing)
	assert.Equal(t, 0, st.Pending)
}

func TestBlockedFractionApproachesChance(t *testing.T) {
	cfg := DefaultConfig()
	blocked, total := 0, 0
	for seed := int64(1); seed <= 400; seed++ {
		cfg.Seed = seed
		st := New(cfg).Stats()
		blocked += st.Blocked
		total += 100
	}
	frac := float64(blocked) / float64(total)
	assert.InDelta(t, 0.2, frac, 0.02, "blocked fraction %v", frac)
}

func TestResetDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	s := New(cfg)
	first := s.Snapshot()

	mustClick(t, s, 1)
	s.Advance(time.Second)
	s.Reset(0)

	assert.Equal(t, first, s.Snapshot())
	assert.Equal(t, 0, s.Stats().Pending)
	assert.Equal(t, time.Duration(0), s.Now())

	s.Reset(1234)
	other := s.Snapshot()
	s.Reset(1234)
	assert.Equal(t, other, s.Snapshot())
}

func TestClickNextToFlowStartsTransition(t *testing.T) {
	s := New(openConfig())

	mustClick(t, s, 1)
	c := cellAt(t, s, 1)
	require.True(t, c.Enabled)
	require.True(t, c.Changing, "cell beside the entry should start changing")
	require.False(t, c.Flowing)

	s.Advance(2999 * time.Millisecond)
	c = cellAt(t, s, 1)
	assert.True(t, c.Changing)
	assert.False(t, c.Flowing)

	s.Advance(time.Millisecond)
	c = cellAt(t, s, 1)
	assert.False(t, c.Changing)
	assert.True(t, c.Flowing)
}

func TestSingleHopPropagation(t *testing.T) {
	s := New(openConfig())
	for _, i := range []int{4, 3, 2} {
		mustClick(t, s, i)
	}
	assert.Equal(t, 0, s.Stats().Changing, "no enabled cell touches flow yet")

	mustClick(t, s, 1)
	assert.True(t, cellAt(t, s, 1).Changing)
	assert.False(t, cellAt(t, s, 2).Changing, "one scan reaches one hop only")

	s.Advance(3 * time.Second)
	assert.True(t, cellAt(t, s, 1).Flowing)
	assert.True(t, cellAt(t, s, 2).Changing)

	s.Advance(3 * time.Second)
	assert.True(t, cellAt(t, s, 2).Flowing)
	assert.True(t, cellAt(t, s, 3).Changing)

	s.Advance(3 * time.Second)
	assert.True(t, cellAt(t, s, 3).Flowing)
	assert.True(t, cellAt(t, s, 4).Changing)
}

func TestFixedPointPropagation(t *testing.T) {
	cfg := openConfig()
	cfg.Propagation = FixedPoint
	s := New(cfg)
	for _, i := range []int{4, 3, 2} {
		mustClick(t, s, i)
	}

	mustClick(t, s, 1)
	for i := 1; i <= 4; i++ {
		c := cellAt(t, s, i)
		assert.True(t, c.Flowing, "cell %d should flow after one fixed-point scan", i)
		assert.True(t, c.Changing, "cell %d keeps its pending transition", i)
	}
	assert.False(t, cellAt(t, s, 5).Flowing)

	s.Advance(3 * time.Second)
	for i := 1; i <= 4; i++ {
		assert.False(t, cellAt(t, s, i).Changing, "cell %d transition should complete", i)
	}
}

func TestForcedDisableRegardlessOfClicks(t *testing.T) {
	s := New(openConfig())

	mustClick(t, s, 5)
	s.Advance(2 * time.Second)
	mustClick(t, s, 5)
	s.Advance(2 * time.Second)
	mustClick(t, s, 5)
	require.True(t, cellAt(t, s, 5).Enabled)

	// First click's disable starts at 10s and completes at 13s.
	s.Advance(6 * time.Second)
	assert.True(t, cellAt(t, s, 5).Enabled)
	assert.False(t, cellAt(t, s, 5).Changing)

	s.Advance(3 * time.Second)
	c := cellAt(t, s, 5)
	assert.False(t, c.Enabled)
	assert.False(t, c.Flowing)
	assert.False(t, c.Changing)
}

func TestForcedDisableClearsFlow(t *testing.T) {
	s := New(openConfig())
	mustClick(t, s, 1)
	s.Advance(3 * time.Second)
	require.True(t, cellAt(t, s, 1).Flowing)

	s.Advance(10 * time.Second)
	c := cellAt(t, s, 1)
	assert.False(t, c.Enabled)
	assert.False(t, c.Flowing)
	assert.False(t, c.Changing)
}

func TestBlockedCellsStillCarryFlow(t *testing.T) {
	cfg := openConfig()
	cfg.BlockChance = 1
	s := New(cfg)
	before := s.Snapshot()
	for i, c := range before {
		require.True(t, c.Blocked, "cell %d should be blocked", i)
	}

	mustClick(t, s, 1)
	c := cellAt(t, s, 1)
	assert.True(t, c.Enabled)
	assert.True(t, c.Changing, "blocked cell beside the entry should start changing")

	s.Advance(3 * time.Second)
	c = cellAt(t, s, 1)
	assert.True(t, c.Flowing)
	assert.False(t, c.Changing)

	mustClick(t, s, 2)
	mustClick(t, s, 11)
	s.Advance(20 * time.Second)
	c = cellAt(t, s, 1)
	assert.False(t, c.Enabled, "forced disable should still apply")
	assert.False(t, c.Flowing)

	for i, after := range s.Snapshot() {
		assert.Equal(t, before[i].Entry, after.Entry, "cell %d entry changed", i)
		assert.Equal(t, before[i].Exit, after.Exit, "cell %d exit changed", i)
		assert.Equal(t, before[i].Blocked, after.Blocked, "cell %d blocked changed", i)
	}
}

func TestNeighborsFlowingEntryCell(t *testing.T) {
	s := New(openConfig())
	assert.False(t, s.NeighborsFlowing(0), "entry has no flowing neighbour")

	mustClick(t, s, 0)
	require.False(t, cellAt(t, s, 0).Enabled)
	assert.False(t, s.NeighborsFlowing(0))

	assert.False(t, s.NeighborsFlowing(-1))
	assert.False(t, s.NeighborsFlowing(100))
}

func TestClickEntryDoesNotReachDisabledNeighbour(t *testing.T) {
	s := New(openConfig())

	mustClick(t, s, 0)
	entry := cellAt(t, s, 0)
	assert.False(t, entry.Enabled)
	assert.True(t, entry.Flowing, "toggling the entry leaves its flow until the forced disable")

	right := cellAt(t, s, 1)
	assert.False(t, right.Enabled)
	assert.False(t, right.Changing)
	assert.False(t, s.NeighborsFlowing(1), "disabled cells never report flowing neighbours")
	assert.Equal(t, 0, s.Stats().Changing)
	assert.Equal(t, 1, s.Stats().Pending, "only the forced disable is queued")
}

func TestLegacyNeighbourQuirks(t *testing.T) {
	s := New(openConfig())

	// Right is bounded by the width, so it only works on the first row.
	s.cells[11].Enabled = true
	s.cells[12].Flowing = true
	assert.False(t, s.NeighborsFlowing(11))

	// Left wraps from the start of one row to the end of the previous one.
	s.cells[20].Enabled = true
	s.cells[19].Flowing = true
	assert.True(t, s.NeighborsFlowing(20))

	s.cells[25].Enabled = true
	s.cells[15].Flowing = true
	assert.True(t, s.NeighborsFlowing(25), "above uses i-width")
}

func TestBoundedNeighbours(t *testing.T) {
	cfg := openConfig()
	cfg.Neighbors = NeighborsBounded
	s := New(cfg)

	s.cells[11].Enabled = true
	s.cells[12].Flowing = true
	assert.True(t, s.NeighborsFlowing(11))

	s.cells[20].Enabled = true
	s.cells[19].Flowing = true
	assert.False(t, s.NeighborsFlowing(20))
}

func TestLegacyStaleFlowTimerStillFires(t *testing.T) {
	s := New(openConfig())
	mustClick(t, s, 1)
	s.Advance(time.Second)
	mustClick(t, s, 1)
	require.False(t, cellAt(t, s, 1).Enabled)

	s.Advance(2 * time.Second)
	c := cellAt(t, s, 1)
	assert.True(t, c.Flowing, "legacy timers apply even after the cell was disabled")
	assert.False(t, c.Enabled)
}

func TestLegacyRescanDuplicatesTransitions(t *testing.T) {
	s := New(openConfig())
	mustClick(t, s, 1)
	mustClick(t, s, 50)
	assert.Equal(t, 3, s.PendingFor(1), "two flow transitions plus the forced disable")

	guarded := openConfig()
	guarded.StaleTimers = StaleDrop
	g := New(guarded)
	mustClick(t, g, 1)
	mustClick(t, g, 50)
	assert.Equal(t, 2, g.PendingFor(1))
}

func TestGuardedDropsStaleFlowTimer(t *testing.T) {
	cfg := openConfig()
	cfg.StaleTimers = StaleDrop
	s := New(cfg)

	mustClick(t, s, 1)
	s.Advance(time.Second)
	mustClick(t, s, 1)
	c := cellAt(t, s, 1)
	require.False(t, c.Enabled)
	require.False(t, c.Changing)

	s.Advance(2 * time.Second)
	c = cellAt(t, s, 1)
	assert.False(t, c.Flowing)
	assert.False(t, c.Changing)
}

func TestGuardedLatestClickOwnsDisable(t *testing.T) {
	cfg := openConfig()
	cfg.StaleTimers = StaleDrop
	s := New(cfg)

	mustClick(t, s, 5)
	s.Advance(5 * time.Second)
	mustClick(t, s, 5)
	s.Advance(time.Second)
	mustClick(t, s, 5)
	require.True(t, cellAt(t, s, 5).Enabled)

	s.Advance(10 * time.Second) // 16s: earlier disables were superseded
	assert.True(t, cellAt(t, s, 5).Enabled)

	s.Advance(3 * time.Second) // 19s: third click's disable completes
	assert.False(t, cellAt(t, s, 5).Enabled)
}

func TestGuardedClickDuringDisableKeepsCell(t *testing.T) {
	cfg := openConfig()
	cfg.StaleTimers = StaleDrop
	s := New(cfg)

	mustClick(t, s, 5)
	s.Advance(11 * time.Second)
	mustClick(t, s, 5)
	require.False(t, cellAt(t, s, 5).Enabled)
	mustClick(t, s, 5)

	s.Advance(2 * time.Second)
	assert.True(t, cellAt(t, s, 5).Enabled, "disable started before the clicks must not land")
}

func TestClickOutOfRange(t *testing.T) {
	s := New(openConfig())
	before := s.Version()
	err := s.Click(100)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	assert.ErrorIs(t, s.Click(-1), ErrOutOfRange)
	assert.Equal(t, before, s.Version())
}

func TestRenderHookAndDisplay(t *testing.T) {
	renders := 0
	s := New(openConfig(), WithRenderHook(func() { renders++ }))
	require.Equal(t, 1, renders, "Reset renders once")

	mustClick(t, s, 1)
	assert.Equal(t, 3, renders, "enableFlowing and the click each render")
	assert.Equal(t, TagEnabled|TagChanging, s.Cells()[1])
	assert.Equal(t, TagEntry|TagEnabled|TagFlowing, s.Cells()[0])

	s.Advance(3 * time.Second)
	assert.Equal(t, 4, renders)
	assert.Equal(t, TagEnabled|TagFlowing, s.Cells()[1])
}

func TestRegistryVariants(t *testing.T) {
	legacy, ok := core.Sims()["flow"]
	require.True(t, ok)
	sim := legacy(map[string]string{"seed": "3"})
	require.Equal(t, "flow", sim.Name())
	assert.Equal(t, core.Size{W: 10, H: 10}, sim.Size())

	guarded, ok := core.Sims()["flow-guarded"]
	require.True(t, ok)
	g := guarded(nil).(*Simulation)
	assert.Equal(t, "flow-guarded", g.Name())
	assert.Equal(t, NeighborsBounded, g.Config().Neighbors)
	assert.Equal(t, FixedPoint, g.Config().Propagation)
	assert.Equal(t, StaleDrop, g.Config().StaleTimers)

	assert.Contains(t, core.SimNames(), "flow")
}
