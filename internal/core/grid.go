package core

// Grid describes a row-major W x H layout of cells.
type Grid struct {
	W, H int
}

// NewGrid returns a grid with the given dimensions, clamped to at least 1x1.
func NewGrid(w, h int) Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return Grid{W: w, H: h}
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.W * g.H }

// Index returns the linear slice index for coordinates (x, y).
func (g Grid) Index(x, y int) int { return y*g.W + x }

// Coords returns the (x, y) coordinates of index i.
func (g Grid) Coords(i int) (int, int) { return i % g.W, i / g.W }

// InBounds reports whether i addresses a cell.
func (g Grid) InBounds(i int) bool { return i >= 0 && i < g.Len() }

// Contains reports whether (x, y) lies inside the grid.
func (g Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Left returns the index left of i on the same row.
func (g Grid) Left(i int) (int, bool) {
	if !g.InBounds(i) || i%g.W == 0 {
		return 0, false
	}
	return i - 1, true
}

// Right returns the index right of i on the same row.
func (g Grid) Right(i int) (int, bool) {
	if !g.InBounds(i) || i%g.W == g.W-1 {
		return 0, false
	}
	return i + 1, true
}

// Above returns the index directly above i.
func (g Grid) Above(i int) (int, bool) {
	if !g.InBounds(i) || i < g.W {
		return 0, false
	}
	return i - g.W, true
}

// At maps a pixel position to a cell index given the tile size in pixels.
func (g Grid) At(px, py, tile int) (int, bool) {
	if tile <= 0 || px < 0 || py < 0 {
		return 0, false
	}
	x, y := px/tile, py/tile
	if !g.Contains(x, y) {
		return 0, false
	}
	return g.Index(x, y), true
}
