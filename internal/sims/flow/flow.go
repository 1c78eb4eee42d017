package flow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"flowgrid/internal/core"

	"github.com/sirupsen/logrus"
)

// ErrOutOfRange is returned for cell indices outside the grid.
var ErrOutOfRange = errors.New("flow: cell index out of range")

// Cell is a copy of one grid position. Entry, Exit and Blocked are fixed at
// creation; the remaining flags are mutated only by the Simulation.
type Cell struct {
	Entry   bool
	Exit    bool
	Blocked bool

	Enabled  bool
	Flowing  bool
	Changing bool
}

// Stats summarises the grid for panels and logs.
type Stats struct {
	Enabled  int
	Flowing  int
	Changing int
	Blocked  int
	Pending  int
	Clock    time.Duration
	Version  uint64
}

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger routes transition logs to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRenderHook registers fn to run after every visible state change.
func WithRenderHook(fn func()) Option {
	return func(s *Simulation) { s.onRender = fn }
}

// WithName overrides the registry name reported by Name.
func WithName(name string) Option {
	return func(s *Simulation) {
		if name != "" {
			s.name = name
		}
	}
}

// Simulation owns the cell array and the deferred actions that mutate it.
// It is not safe for concurrent use; a single owner drives Click and Advance.
type Simulation struct {
	cfg  Config
	name string
	grid core.Grid

	cells   []Cell
	gen     []uint64
	display []uint8

	sched    *core.Scheduler
	version  uint64
	onRender func()

	log logrus.FieldLogger
}

// New builds a simulation and seeds it from cfg.Seed.
func New(cfg Config, opts ...Option) *Simulation {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	grid := core.NewGrid(cfg.Width, cfg.Height)
	cfg.Width, cfg.Height = grid.W, grid.H
	s := &Simulation{
		cfg:     cfg,
		name:    "flow",
		grid:    grid,
		cells:   make([]Cell, grid.Len()),
		gen:     make([]uint64, grid.Len()),
		display: make([]uint8, grid.Len()),
		sched:   core.NewScheduler(),
		log:     quiet,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset(0)
	return s
}

// Name returns the simulation identifier.
func (s *Simulation) Name() string { return s.name }

// Size reports the grid dimensions.
func (s *Simulation) Size() core.Size { return core.Size{W: s.grid.W, H: s.grid.H} }

// Grid exposes the layout used for neighbour and hit-testing math.
func (s *Simulation) Grid() core.Grid { return s.grid }

// Config returns the active configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Reset rebuilds every cell and drops all pending deferred actions. A zero
// seed falls back to the configured seed; a zero configured seed draws from
// the wall clock.
func (s *Simulation) Reset(seed int64) {
	if seed == 0 {
		seed = s.cfg.Seed
	}
	rng := core.NewRNG(seed)
	last := len(s.cells) - 1
	for i := range s.cells {
		s.cells[i] = Cell{
			Entry:   i == 0,
			Exit:    i == last,
			Blocked: rng.Chance(s.cfg.BlockChance),
			Enabled: i == 0,
			Flowing: i == 0,
		}
		s.gen[i] = 0
	}
	s.sched.Clear()
	s.render()
}

// Advance moves the virtual clock forward, firing every expired action.
func (s *Simulation) Advance(dt time.Duration) { s.sched.Advance(dt) }

// Now reports the virtual clock.
func (s *Simulation) Now() time.Duration { return s.sched.Now() }

// Click toggles the cell's enabled flag, rescans the grid and schedules the
// cell's forced disable.
func (s *Simulation) Click(i int) error {
	if !s.grid.InBounds(i) {
		return ErrOutOfRange
	}
	c := &s.cells[i]
	c.Enabled = !c.Enabled
	if s.guarded() {
		s.gen[i]++
		c.Changing = false
	}
	s.logCell(i).WithField("enabled", c.Enabled).Debug("cell clicked")

	s.CheckAll()
	s.render()

	g := s.gen[i]
	s.sched.AfterFor(i, s.cfg.AutoDisableDelay, func() {
		if s.stale(i, g) {
			s.logCell(i).Debug("auto-disable superseded by a later click")
			return
		}
		s.disableCell(i)
	})
	return nil
}

// NeighborsFlowing reports whether an enabled cell touches a flowing cell on
// its left, right or above.
func (s *Simulation) NeighborsFlowing(i int) bool {
	if !s.grid.InBounds(i) || !s.cells[i].Enabled {
		return false
	}
	if s.cfg.Neighbors == NeighborsBounded {
		return s.flowingAt(s.grid.Left(i)) ||
			s.flowingAt(s.grid.Right(i)) ||
			s.flowingAt(s.grid.Above(i))
	}
	w := s.grid.W
	left := i-1 >= 0 && s.cells[i-1].Flowing
	right := i+1 < w && s.cells[i+1].Flowing
	above := i >= w && s.cells[i-w].Flowing
	return left || right || above
}

// CheckAll scans every cell once and starts a transition for each cell that
// is not flowing but touches flow. With fixed-point propagation the scan
// result is applied immediately and the scan repeats while it keeps growing.
func (s *Simulation) CheckAll() {
	wouldFlow := make([]bool, len(s.cells))
	for {
		before := 0
		for i := range s.cells {
			c := &s.cells[i]
			if c.Flowing {
				before++
			}
			if !c.Flowing && s.NeighborsFlowing(i) && !(s.guarded() && c.Changing) {
				s.enableFlowing(i)
			}
			wouldFlow[i] = c.Flowing || s.NeighborsFlowing(i)
		}
		if s.cfg.Propagation != FixedPoint {
			return
		}
		after := 0
		for i, f := range wouldFlow {
			if f {
				s.cells[i].Flowing = true
				after++
			}
		}
		if after == before {
			return
		}
		s.render()
	}
}

func (s *Simulation) enableFlowing(i int) {
	s.cells[i].Changing = true
	s.render()

	g := s.gen[i]
	s.sched.AfterFor(i, s.cfg.FlowDelay, func() {
		if s.stale(i, g) {
			s.logCell(i).Debug("flow transition dropped: cell changed since scheduling")
			return
		}
		if s.guarded() && !s.cells[i].Enabled {
			s.logCell(i).Debug("flow transition dropped: cell disabled")
			return
		}
		s.cells[i].Flowing = true
		s.cells[i].Changing = false
		s.logCell(i).Debug("cell flowing")
		s.render()
		s.CheckAll()
	})
}

func (s *Simulation) disableCell(i int) {
	s.cells[i].Changing = false
	if s.guarded() {
		s.gen[i]++
	}
	s.render()

	g := s.gen[i]
	s.sched.AfterFor(i, s.cfg.DisableDelay, func() {
		if s.stale(i, g) {
			s.logCell(i).Debug("disable dropped: cell clicked meanwhile")
			return
		}
		c := &s.cells[i]
		c.Enabled = false
		c.Flowing = false
		c.Changing = false
		if s.guarded() {
			s.gen[i]++
		}
		s.logCell(i).Debug("cell disabled")
		s.render()
	})
}

func (s *Simulation) guarded() bool { return s.cfg.StaleTimers == StaleDrop }

func (s *Simulation) stale(i int, g uint64) bool {
	return s.guarded() && s.gen[i] != g
}

func (s *Simulation) flowingAt(i int, ok bool) bool {
	return ok && s.cells[i].Flowing
}

func (s *Simulation) render() {
	for i, c := range s.cells {
		s.display[i] = Encode(c)
	}
	s.version++
	if s.onRender != nil {
		s.onRender()
	}
}

func (s *Simulation) logCell(i int) logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{"cell": i, "clock": s.sched.Now()})
}

// Cells exposes the display encoding of every cell.
func (s *Simulation) Cells() []uint8 { return s.display }

// Cell returns a copy of cell i.
func (s *Simulation) Cell(i int) (Cell, bool) {
	if !s.grid.InBounds(i) {
		return Cell{}, false
	}
	return s.cells[i], true
}

// Snapshot returns a copy of every cell.
func (s *Simulation) Snapshot() []Cell {
	return append([]Cell(nil), s.cells...)
}

// Version increments on every visible change.
func (s *Simulation) Version() uint64 { return s.version }

// NextDue reports when the earliest deferred action fires.
func (s *Simulation) NextDue() (time.Duration, bool) { return s.sched.NextDue() }

// PendingFor reports deferred actions queued for cell i.
func (s *Simulation) PendingFor(i int) int { return s.sched.PendingFor(i) }

// Stats counts the current cell flags and pending actions.
func (s *Simulation) Stats() Stats {
	st := Stats{Pending: s.sched.Pending(), Clock: s.sched.Now(), Version: s.version}
	for _, c := range s.cells {
		if c.Enabled {
			st.Enabled++
		}
		if c.Flowing {
			st.Flowing++
		}
		if c.Changing {
			st.Changing++
		}
		if c.Blocked {
			st.Blocked++
		}
	}
	return st
}

var variants = map[string]func() Config{
	"flow":         DefaultConfig,
	"flow-guarded": GuardedConfig,
}

// Variant returns the default configuration of a registry variant.
func Variant(name string) (Config, error) {
	base, ok := variants[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown flow variant %q", name)
	}
	return base(), nil
}

// Open builds the named registry variant, layering the YAML file at path over
// the variant's defaults when path is not empty.
func Open(name, path string, opts ...Option) (*Simulation, error) {
	cfg, err := Variant(name)
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read flow config: %w", err)
		}
		if cfg, err = ParseConfig(data, cfg); err != nil {
			return nil, err
		}
	}
	return New(cfg, append([]Option{WithName(name)}, opts...)...), nil
}

func init() {
	for name, base := range variants {
		name, base := name, base
		core.Register(name, func(cfg map[string]string) core.Sim {
			return New(ApplyMap(base(), cfg), WithName(name))
		})
	}
}
