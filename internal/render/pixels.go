package render

import (
	"image"
	"image/color"
)

// fillPaletteRGBA converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Image rasterises a w x h grid into tiles of the given size separated by a
// one-pixel gap in the gap colour.
func Image(cells []uint8, w, h int, palette []color.RGBA, tile int, gap color.RGBA) *image.RGBA {
	if tile < 2 {
		tile = 2
	}
	img := image.NewRGBA(image.Rect(0, 0, w*tile, h*tile))
	if len(cells) != w*h {
		return img
	}
	px := make([]byte, 4*len(cells))
	fillPaletteRGBA(px, cells, palette)

	for y := 0; y < h*tile; y++ {
		for x := 0; x < w*tile; x++ {
			off := img.PixOffset(x, y)
			if x%tile == tile-1 || y%tile == tile-1 {
				img.Pix[off+0], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = gap.R, gap.G, gap.B, gap.A
				continue
			}
			src := ((y/tile)*w + x/tile) * 4
			copy(img.Pix[off:off+4], px[src:src+4])
		}
	}
	return img
}
