//go:build ebiten

package ui

import (
	"image/color"
	"strconv"

	"flowgrid/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

type pendingProvider interface {
	PendingFor(i int) int
}

// Overlay draws optional debugging visuals on top of the grid.
type Overlay struct {
	sim         core.Sim
	tile        int
	showPending bool
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, tile int) *Overlay {
	return &Overlay{sim: sim, tile: tile}
}

// Update toggles the overlay layers from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showPending = !o.showPending
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.showPending {
		return
	}
	provider, ok := o.sim.(pendingProvider)
	if !ok {
		return
	}
	size := o.sim.Size()
	grid := core.NewGrid(size.W, size.H)
	tile := o.tile
	if tile <= 0 {
		tile = 1
	}
	face := basicfont.Face7x13
	for i := 0; i < grid.Len(); i++ {
		n := provider.PendingFor(i)
		if n == 0 {
			continue
		}
		cx, cy := grid.Coords(i)
		x, y := cx*tile, cy*tile
		label := strconv.Itoa(n)
		bounds := text.BoundString(face, label)
		w, h := bounds.Dx()+6, bounds.Dy()+4
		vector.DrawFilledRect(screen, float32(x+3), float32(y+3), float32(w), float32(h), color.RGBA{R: 20, G: 20, B: 24, A: 200}, false)
		text.Draw(screen, label, face, x+6, y+3+bounds.Dy()+1, color.RGBA{R: 255, G: 214, B: 90, A: 255})
	}
}
