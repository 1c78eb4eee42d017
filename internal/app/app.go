//go:build ebiten

package app

import (
	"image/color"
	"time"

	"flowgrid/internal/core"
	"flowgrid/internal/render"
	"flowgrid/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type pulseMaskProvider interface {
	PulseMask() uint8
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	grid    core.Grid
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	pulse   *render.Pulse
	log     logrus.FieldLogger

	palette   []color.RGBA
	pulseMask uint8

	tile     int
	panel    int
	step     time.Duration
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, cfg *Config, log logrus.FieldLogger) *Game {
	size := sim.Size()
	g := &Game{
		sim:     sim,
		grid:    core.NewGrid(size.W, size.H),
		painter: render.NewGridPainter(size.W, size.H),
		overlay: ui.NewOverlay(sim, cfg.Tile),
		hud:     ui.NewHUD(sim, cfg.Panel),
		pulse:   render.NewPulse(0.35, 1, 1200*time.Millisecond),
		log:     log,
		tile:    cfg.Tile,
		panel:   cfg.Panel,
		step:    cfg.Step(),
		seed:    cfg.Seed,
	}
	if p, ok := sim.(paletteProvider); ok {
		g.palette = p.Palette()
	}
	if p, ok := sim.(pulseMaskProvider); ok {
		g.pulseMask = p.PulseMask()
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.log.WithField("seed", seed).Info("grid reset")
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	if g.overlay != nil {
		g.overlay.Update()
	}
	gridW := g.grid.W * g.tile
	consumed := g.hud.Update(gridW)
	if !consumed && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if i, ok := g.grid.At(mx, my, g.tile); ok {
			if err := g.sim.Click(i); err != nil {
				g.log.WithError(err).WithField("cell", i).Warn("click rejected")
			}
		}
	}

	if !g.paused || g.tickOnce {
		g.sim.Advance(g.step)
		g.pulse.Update(g.step)
		g.tickOnce = false
	}
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.tile, g.pulseMask, g.pulse.Value())
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	g.hud.Draw(screen, g.grid.W*g.tile, g.grid.H*g.tile)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.grid.W*g.tile + g.panel, g.grid.H * g.tile
}
