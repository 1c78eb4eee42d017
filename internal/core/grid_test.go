package core

import "testing"

func TestGridNeighborsRespectRows(t *testing.T) {
	g := NewGrid(10, 10)

	if _, ok := g.Left(10); ok {
		t.Fatal("first cell of a row has no left neighbour")
	}
	if _, ok := g.Right(9); ok {
		t.Fatal("last cell of a row has no right neighbour")
	}
	if _, ok := g.Above(5); ok {
		t.Fatal("top row has no neighbour above")
	}
	if i, ok := g.Right(15); !ok || i != 16 {
		t.Fatalf("right of 15 = %d %v", i, ok)
	}
	if i, ok := g.Above(15); !ok || i != 5 {
		t.Fatalf("above of 15 = %d %v", i, ok)
	}
	if _, ok := g.Left(-1); ok {
		t.Fatal("out of range index has no neighbours")
	}
}

func TestGridAt(t *testing.T) {
	g := NewGrid(10, 10)
	cases := []struct {
		px, py int
		want   int
		ok     bool
	}{
		{0, 0, 0, true},
		{47, 47, 0, true},
		{48, 0, 1, true},
		{48 * 3, 48 * 2, 23, true},
		{480, 0, 0, false},
		{-1, 4, 0, false},
	}
	for _, tc := range cases {
		got, ok := g.At(tc.px, tc.py, 48)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("At(%d,%d) = %d %v, want %d %v", tc.px, tc.py, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNewGridClamps(t *testing.T) {
	g := NewGrid(0, -3)
	if g.W != 1 || g.H != 1 || g.Len() != 1 {
		t.Fatalf("expected 1x1 grid, got %+v", g)
	}
	x, y := NewGrid(10, 10).Coords(37)
	if x != 7 || y != 3 {
		t.Fatalf("Coords(37) = %d,%d", x, y)
	}
}
