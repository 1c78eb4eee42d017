package replay

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"flowgrid/internal/sims/flow"
)

// Scenario overrides the script's variant and delays for one sweep run.
type Scenario struct {
	Sim              string
	FlowDelay        time.Duration
	AutoDisableDelay time.Duration
}

func (s Scenario) String() string {
	return fmt.Sprintf("sim=%s flow=%s autoDisable=%s", s.Sim, s.FlowDelay, s.AutoDisableDelay)
}

// Outcome is what one scenario produced.
type Outcome struct {
	Scenario    Scenario
	PeakFlowing int
	ExitReached bool
	ExitAt      time.Duration
	Skipped     int
	Final       flow.Stats
	Err         error
}

// Grid builds every combination of the given variants and delays.
func Grid(sims []string, flowDelays, autoDisables []time.Duration) []Scenario {
	var out []Scenario
	for _, sim := range sims {
		for _, fd := range flowDelays {
			for _, ad := range autoDisables {
				out = append(out, Scenario{Sim: sim, FlowDelay: fd, AutoDisableDelay: ad})
			}
		}
	}
	return out
}

// Play runs the script under sc, observing the grid after every deferred
// action and at least every sample of virtual time.
func Play(s Script, sc Scenario, sample time.Duration) Outcome {
	out := Outcome{Scenario: sc}
	if sample <= 0 {
		sample = 100 * time.Millisecond
	}
	if sc.Sim != "" {
		s.Sim = sc.Sim
	}
	cfg, err := s.GridConfig()
	if err != nil {
		out.Err = err
		return out
	}
	if sc.FlowDelay > 0 {
		cfg.FlowDelay = sc.FlowDelay
	}
	if sc.AutoDisableDelay > 0 {
		cfg.AutoDisableDelay = sc.AutoDisableDelay
	}
	sim := flow.New(cfg, flow.WithName(s.Sim))
	exit := sim.Grid().Len() - 1

	observe := func() {
		st := sim.Stats()
		if st.Flowing > out.PeakFlowing {
			out.PeakFlowing = st.Flowing
		}
		if c, _ := sim.Cell(exit); c.Flowing && !out.ExitReached {
			out.ExitReached = true
			out.ExitAt = sim.Now()
		}
	}
	advanceTo := func(t time.Duration) {
		for sim.Now() < t {
			d := t - sim.Now()
			if d > sample {
				d = sample
			}
			if due, ok := sim.NextDue(); ok && due > sim.Now() && due-sim.Now() < d {
				d = due - sim.Now()
			}
			sim.Advance(d)
			observe()
		}
	}

	observe()
	for _, st := range s.Steps {
		advanceTo(st.At)
		if err := sim.Click(st.Click); err != nil {
			out.Skipped++
			continue
		}
		observe()
	}
	advanceTo(s.End())
	out.Final = sim.Stats()
	return out
}

// Sweep plays every scenario on a pool of workers and returns the outcomes
// best first: exit reached, then earliest, then most flow.
func Sweep(s Script, scenarios []Scenario, workers int, sample time.Duration) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan Scenario)
	results := make(chan Outcome)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- Play(s, sc, sample)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, sc := range scenarios {
			jobs <- sc
		}
		close(jobs)
	}()

	all := make([]Outcome, 0, len(scenarios))
	for res := range results {
		all = append(all, res)
	}
	sort.SliceStable(all, func(i, j int) bool { return better(all[i], all[j]) })
	return all
}

func better(a, b Outcome) bool {
	if (a.Err == nil) != (b.Err == nil) {
		return a.Err == nil
	}
	if a.ExitReached != b.ExitReached {
		return a.ExitReached
	}
	if a.ExitReached && a.ExitAt != b.ExitAt {
		return a.ExitAt < b.ExitAt
	}
	if a.PeakFlowing != b.PeakFlowing {
		return a.PeakFlowing > b.PeakFlowing
	}
	return a.Scenario.String() < b.Scenario.String()
}
