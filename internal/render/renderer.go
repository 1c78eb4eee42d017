//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// GridPainter uploads one pixel per cell and scales it up to tiles.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{w: w, h: h, buf: make([]byte, 4*w*h)}
	gp.img = ebiten.NewImage(w, h)
	return gp
}

// Blit draws the cells as tiles. Tiles whose value has any bit of pulseMask
// set are dimmed by the pulse value in [0,1].
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []uint8, palette []color.RGBA, tile int, pulseMask uint8, pulse float32) {
	if len(cells) != gp.w*gp.h || tile <= 0 {
		return
	}
	fillPaletteRGBA(gp.buf, cells, palette)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(tile), float64(tile))
	dst.DrawImage(gp.img, op)

	if pulseMask != 0 {
		shade := uint8((1 - clamp01(pulse)) * 160)
		for i, c := range cells {
			if c&pulseMask == 0 {
				continue
			}
			x, y := i%gp.w, i/gp.w
			vector.DrawFilledRect(dst, float32(x*tile), float32(y*tile), float32(tile), float32(tile), color.RGBA{A: shade}, false)
		}
	}

	gap := color.RGBA{R: 10, G: 10, B: 12, A: 255}
	for x := 0; x <= gp.w; x++ {
		fx := float32(x * tile)
		vector.StrokeLine(dst, fx, 0, fx, float32(gp.h*tile), 2, gap, false)
	}
	for y := 0; y <= gp.h; y++ {
		fy := float32(y * tile)
		vector.StrokeLine(dst, 0, fy, float32(gp.w*tile), fy, 2, gap, false)
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
