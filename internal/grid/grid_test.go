package grid

import (
	"math/rand"
	"testing"
)

func newTestGrid(cols, rows int) *Grid {
	return New(cols, rows, rand.New(rand.NewSource(42)))
}

func TestOccupyRelease(t *testing.T) {
	g := newTestGrid(4, 4)
	p := Position{Col: 1, Row: 2}

	if g.IsOccupied(p) {
		t.Fatal("new grid should be empty")
	}
	g.Occupy(p)
	if !g.IsOccupied(p) || g.Len() != 1 {
		t.Error("occupy failed")
	}
	g.Occupy(p)
	if g.Len() != 1 {
		t.Error("occupying twice should be idempotent")
	}
	g.Release(p)
	if g.IsOccupied(p) || g.Len() != 0 {
		t.Error("release failed")
	}
}

func TestRandomAvailable_FreeAndDistinct(t *testing.T) {
	g := newTestGrid(10, 8)
	for i := 0; i < 30; i++ {
		g.Occupy(Position{Col: i % 10, Row: i / 10})
	}
	before := make(map[Position]bool)
	for _, p := range g.Positions() {
		before[p] = true
	}

	got := g.RandomAvailable(25, nil, 8)
	if len(got) != 25 {
		t.Fatalf("got %d positions, want 25", len(got))
	}
	seen := make(map[Position]bool)
	for _, p := range got {
		if before[p] {
			t.Errorf("%v was already occupied", p)
		}
		if seen[p] {
			t.Errorf("%v returned twice", p)
		}
		if !g.InBounds(p, 8) {
			t.Errorf("%v out of bounds", p)
		}
		seen[p] = true
	}
	if g.Len() != 30 {
		t.Error("RandomAvailable must not modify the grid")
	}
}

func TestRandomAvailable_TruncatesToFree(t *testing.T) {
	g := newTestGrid(5, 4)
	g.Occupy(Position{Col: 0, Row: 0})
	g.Occupy(Position{Col: 1, Row: 0})

	got := g.RandomAvailable(100, nil, 4)
	if len(got) != 18 {
		t.Errorf("got %d positions, want exactly the 18 free cells", len(got))
	}
}

func TestRandomAvailable_FullGrid(t *testing.T) {
	g := newTestGrid(3, 3)
	for _, p := range g.RandomAvailable(9, nil, 3) {
		g.Occupy(p)
	}
	if g.Len() != 9 {
		t.Fatalf("expected full grid, got %d", g.Len())
	}
	if got := g.RandomAvailable(1, nil, 3); len(got) != 0 {
		t.Errorf("full grid returned %v", got)
	}
}

func TestRandomAvailable_EffectiveRows(t *testing.T) {
	g := newTestGrid(6, 10)
	got := g.RandomAvailable(100, nil, 3)
	if len(got) != 18 {
		t.Errorf("got %d positions, want 18", len(got))
	}
	for _, p := range got {
		if p.Row >= 3 {
			t.Errorf("%v is above the visible rows", p)
		}
	}

	// occupied cells above the visible rows don't reduce visible capacity
	g.Occupy(Position{Col: 0, Row: 9})
	if got := g.RandomAvailable(100, nil, 3); len(got) != 18 {
		t.Errorf("got %d positions, want 18", len(got))
	}
}

func TestRandomAvailable_ClampsRows(t *testing.T) {
	g := newTestGrid(2, 2)
	if got := g.RandomAvailable(10, nil, 0); len(got) != 2 {
		t.Errorf("rows=0 should clamp to 1 row, got %d", len(got))
	}
	if got := g.RandomAvailable(10, nil, 99); len(got) != 4 {
		t.Errorf("rows=99 should clamp to 2 rows, got %d", len(got))
	}
}

func TestRandomAvailable_Avoid(t *testing.T) {
	g := newTestGrid(2, 2)
	avoid := []Position{{0, 0}, {1, 1}}
	got := g.RandomAvailable(4, avoid, 2)
	if len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
	for _, p := range got {
		if p == avoid[0] || p == avoid[1] {
			t.Errorf("returned avoided cell %v", p)
		}
	}
}

func TestRandomAvailable_ScanFallbackNearSaturation(t *testing.T) {
	g := New(20, 20, rand.New(rand.NewSource(7)))
	for _, p := range g.RandomAvailable(399, nil, 20) {
		g.Occupy(p)
	}
	if g.Len() != 399 {
		t.Fatalf("expected 399 occupied, got %d", g.Len())
	}
	got := g.RandomAvailable(5, nil, 20)
	if len(got) != 1 || g.IsOccupied(got[0]) {
		t.Errorf("expected the single free cell, got %v", got)
	}
}

func TestPositionsOrder(t *testing.T) {
	g := newTestGrid(3, 3)
	g.Occupy(Position{2, 1})
	g.Occupy(Position{0, 2})
	g.Occupy(Position{1, 1})
	want := []Position{{1, 1}, {2, 1}, {0, 2}}
	got := g.Positions()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Positions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
