package render

import "strings"

// ASCII draws one rune per cell, w cells per line.
func ASCII(cells []uint8, w int, glyph func(uint8) rune) string {
	if w <= 0 || glyph == nil {
		return ""
	}
	var b strings.Builder
	b.Grow(len(cells) + len(cells)/w)
	for i, c := range cells {
		b.WriteRune(glyph(c))
		if i%w == w-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
