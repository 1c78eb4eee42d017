package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rowScript = `
config:
  width: 3
  height: 1
  blockChance: 0
steps:
  - at: 0s
    click: 1
  - at: 0s
    click: 2
duration: 12s
`

func findOutcome(t *testing.T, all []Outcome, sc Scenario) Outcome {
	t.Helper()
	for _, o := range all {
		if o.Scenario == sc {
			return o
		}
	}
	t.Fatalf("no outcome for %s", sc)
	return Outcome{}
}

func TestPlayReachesExit(t *testing.T) {
	s, err := Parse([]byte(rowScript))
	require.NoError(t, err)

	out := Play(s, Scenario{Sim: "flow", FlowDelay: time.Second}, 100*time.Millisecond)
	require.NoError(t, out.Err)
	assert.True(t, out.ExitReached)
	assert.Equal(t, 2*time.Second, out.ExitAt)
	assert.Equal(t, 3, out.PeakFlowing)
	assert.Equal(t, 12*time.Second, out.Final.Clock)

	bad := Play(s, Scenario{Sim: "life"}, 0)
	assert.Error(t, bad.Err)
}

func TestSweepRanksAndIsDeterministic(t *testing.T) {
	s, err := Parse([]byte(rowScript))
	require.NoError(t, err)
	scenarios := Grid([]string{"flow", "flow-guarded"},
		[]time.Duration{time.Second, 3 * time.Second},
		[]time.Duration{2 * time.Second, 10 * time.Second})
	require.Len(t, scenarios, 8)

	serial := Sweep(s, scenarios, 1, 100*time.Millisecond)
	parallel := Sweep(s, scenarios, 4, 100*time.Millisecond)
	require.Len(t, serial, 8)
	assert.Equal(t, serial, parallel)

	// Fixed-point propagation marks the whole enabled run flowing at once.
	assert.Equal(t, "flow-guarded", serial[0].Scenario.Sim)
	assert.Equal(t, time.Duration(0), serial[0].ExitAt)

	fast := findOutcome(t, serial, Scenario{Sim: "flow", FlowDelay: time.Second, AutoDisableDelay: 10 * time.Second})
	assert.Equal(t, 2*time.Second, fast.ExitAt)
	slow := findOutcome(t, serial, Scenario{Sim: "flow", FlowDelay: 3 * time.Second, AutoDisableDelay: 10 * time.Second})
	assert.Equal(t, 6*time.Second, slow.ExitAt)

	for _, o := range serial {
		assert.True(t, o.ExitReached, "%s", o.Scenario)
	}
}

func TestPlayObservesBetweenSamples(t *testing.T) {
	s, err := Parse([]byte(rowScript))
	require.NoError(t, err)

	out := Play(s, Scenario{Sim: "flow", FlowDelay: 1250 * time.Millisecond}, time.Hour)
	require.NoError(t, out.Err)
	assert.True(t, out.ExitReached)
	assert.Equal(t, 2500*time.Millisecond, out.ExitAt)
	assert.Equal(t, 3, out.PeakFlowing)
}
