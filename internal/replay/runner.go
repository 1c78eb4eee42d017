package replay

import (
	"fmt"
	"io"
	"time"

	"flowgrid/internal/render"
	"flowgrid/internal/sims/flow"

	"github.com/sirupsen/logrus"
)

// Runner plays a Script against a fresh simulation in virtual time.
type Runner struct {
	Out    io.Writer
	Log    logrus.FieldLogger
	Frames bool
}

// Run builds the script's grid, applies every step and returns the final
// counters. Rejected clicks are logged and skipped.
func (r Runner) Run(s Script) (flow.Stats, error) {
	cfg, err := s.GridConfig()
	if err != nil {
		return flow.Stats{}, err
	}
	log := r.Log
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}
	sim := flow.New(cfg, flow.WithName(s.Sim), flow.WithLogger(log))

	for i, st := range s.Steps {
		sim.Advance(st.At - sim.Now())
		if err := sim.Click(st.Click); err != nil {
			log.WithError(err).WithField("step", i).Warn("click skipped")
			continue
		}
		r.frame(sim, fmt.Sprintf("click %d", st.Click))
	}
	if end := s.End(); end > sim.Now() {
		sim.Advance(end - sim.Now())
	}
	r.frame(sim, "end")

	st := sim.Stats()
	if r.Out != nil {
		fmt.Fprintln(r.Out, FormatStats(st))
	}
	return st, nil
}

func (r Runner) frame(sim *flow.Simulation, label string) {
	if !r.Frames || r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, "t=%s %s\n", formatClock(sim.Now()), label)
	fmt.Fprint(r.Out, render.ASCII(sim.Cells(), sim.Size().W, flow.Glyph))
	fmt.Fprintln(r.Out)
}

// FormatStats renders the counters as a single key=value line.
func FormatStats(st flow.Stats) string {
	return fmt.Sprintf("clock=%s enabled=%d flowing=%d changing=%d blocked=%d pending=%d version=%d",
		formatClock(st.Clock), st.Enabled, st.Flowing, st.Changing, st.Blocked, st.Pending, st.Version)
}

func formatClock(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
