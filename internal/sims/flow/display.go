package flow

import "image/color"

// Display bits, one per style tag. The order matches Classes.
const (
	TagChanging uint8 = 1 << iota
	TagEntry
	TagExit
	TagBlocked
	TagEnabled
	TagFlowing

	tagCount = iota
)

// BaseClass is always the first class of a rendered cell.
const BaseClass = "grid-item"

var tagNames = [tagCount]string{"changing", "entry", "exit", "blocked", "enabled", "flowing"}

var flowPalette = buildFlowPalette()

// Encode projects a cell onto its display byte.
func Encode(c Cell) uint8 {
	var v uint8
	if c.Changing {
		v |= TagChanging
	}
	if c.Entry {
		v |= TagEntry
	}
	if c.Exit {
		v |= TagExit
	}
	if c.Blocked {
		v |= TagBlocked
	}
	if c.Enabled {
		v |= TagEnabled
	}
	if c.Flowing {
		v |= TagFlowing
	}
	return v
}

// Classes lists the style classes for a display byte, BaseClass first.
func Classes(v uint8) []string {
	out := []string{BaseClass}
	for bit := 0; bit < tagCount; bit++ {
		if v&(1<<bit) != 0 {
			out = append(out, tagNames[bit])
		}
	}
	return out
}

// Palette exposes the colour used for each display byte.
func (s *Simulation) Palette() []color.RGBA { return flowPalette }

// PulseMask selects the tiles the GUI animates.
func (s *Simulation) PulseMask() uint8 { return TagChanging }

// Palette returns the shared flow palette.
func Palette() []color.RGBA { return flowPalette }

func buildFlowPalette() []color.RGBA {
	palette := make([]color.RGBA, 1<<tagCount)
	for i := range palette {
		palette[i] = toRGBA(paletteColorFor(uint8(i)))
	}
	return palette
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// paletteColorFor layers the tags the way the stylesheet cascades: later
// tags win, entry and exit tint whatever is underneath.
func paletteColorFor(v uint8) color.NRGBA {
	base := color.NRGBA{R: 40, G: 42, B: 48, A: 255}
	if v&TagBlocked != 0 {
		base = color.NRGBA{R: 18, G: 18, B: 20, A: 255}
	}
	if v&TagEnabled != 0 {
		base = color.NRGBA{R: 200, G: 200, B: 205, A: 255}
	}
	if v&TagChanging != 0 {
		base = blendColors(base, color.NRGBA{R: 90, G: 160, B: 240, A: 255}, 0.5)
	}
	if v&TagFlowing != 0 {
		base = color.NRGBA{R: 40, G: 120, B: 230, A: 255}
	}
	if v&TagEntry != 0 {
		base = blendColors(base, color.NRGBA{R: 60, G: 190, B: 90, A: 255}, 0.6)
	}
	if v&TagExit != 0 {
		base = blendColors(base, color.NRGBA{R: 220, G: 70, B: 60, A: 255}, 0.6)
	}
	return base
}

func blendColors(base, overlay color.NRGBA, overlayWeight float64) color.NRGBA {
	if overlayWeight <= 0 {
		return base
	}
	if overlayWeight >= 1 {
		return overlay
	}
	br, bg, bb, ba := float64(base.R), float64(base.G), float64(base.B), float64(base.A)
	or, og, ob, oa := float64(overlay.R), float64(overlay.G), float64(overlay.B), float64(overlay.A)
	w := overlayWeight
	inv := 1 - w
	return color.NRGBA{
		R: uint8(br*inv + or*w + 0.5),
		G: uint8(bg*inv + og*w + 0.5),
		B: uint8(bb*inv + ob*w + 0.5),
		A: uint8(ba*inv + oa*w + 0.5),
	}
}

// Glyph returns the character used for a display byte in text frames.
func Glyph(v uint8) rune {
	switch {
	case v&TagEntry != 0:
		return 'E'
	case v&TagExit != 0:
		return 'X'
	case v&TagFlowing != 0:
		return '~'
	case v&TagChanging != 0:
		return '*'
	case v&TagEnabled != 0:
		return 'o'
	case v&TagBlocked != 0:
		return '#'
	default:
		return '.'
	}
}
