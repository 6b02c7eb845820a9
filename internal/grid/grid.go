// Package grid is the occupancy index behind the beaker's particle view.
//
// A Grid is a fixed columns × rows lattice. Cells are either free or
// occupied; placement of new particles samples free cells at random and
// falls back to a row-major scan when the lattice is nearly full, so a
// request always terminates and never returns more cells than are free.
//
// Grid is not safe for concurrent use.
package grid

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Position is a cell address. Row 0 is the bottom of the beaker.
type Position struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

func (p Position) String() string { return fmt.Sprintf("%d,%d", p.Col, p.Row) }

type Grid struct {
	columns  int
	rows     int
	occupied map[Position]struct{}
	rng      *rand.Rand
}

// New returns an empty grid. A nil rng is seeded from the clock.
func New(columns, rows int, rng *rand.Rand) *Grid {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Grid{
		columns:  max(columns, 1),
		rows:     max(rows, 1),
		occupied: make(map[Position]struct{}),
		rng:      rng,
	}
}

func (g *Grid) Columns() int { return g.columns }
func (g *Grid) Rows() int    { return g.rows }

// Capacity is the number of cells in the first effectiveRows rows.
func (g *Grid) Capacity(effectiveRows int) int {
	return g.columns * g.clampRows(effectiveRows)
}

func (g *Grid) Occupy(p Position)  { g.occupied[p] = struct{}{} }
func (g *Grid) Release(p Position) { delete(g.occupied, p) }

func (g *Grid) IsOccupied(p Position) bool {
	_, ok := g.occupied[p]
	return ok
}

func (g *Grid) Len() int { return len(g.occupied) }

func (g *Grid) Clear() { g.occupied = make(map[Position]struct{}) }

// Positions returns the occupied cells in row-major order.
func (g *Grid) Positions() []Position {
	out := make([]Position, 0, len(g.occupied))
	for p := range g.occupied {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func (g *Grid) InBounds(p Position, effectiveRows int) bool {
	return p.Col >= 0 && p.Col < g.columns && p.Row >= 0 && p.Row < g.clampRows(effectiveRows)
}

// RandomAvailable picks up to count distinct free cells within the first
// effectiveRows rows, treating every cell in avoid as occupied. The grid
// itself is not modified; callers Occupy what they use.
//
// The result is shorter than count when fewer cells are free.
func (g *Grid) RandomAvailable(count int, avoid []Position, effectiveRows int) []Position {
	rows := g.clampRows(effectiveRows)
	maxSlots := g.columns * rows

	taken := make(map[Position]struct{}, len(g.occupied)+len(avoid))
	for p := range g.occupied {
		taken[p] = struct{}{}
	}
	for _, p := range avoid {
		taken[p] = struct{}{}
	}

	visible := 0
	for p := range taken {
		if g.InBounds(p, rows) {
			visible++
		}
	}
	count = min(count, maxSlots-visible)
	if count <= 0 {
		return nil
	}

	out := make([]Position, 0, count)
	for attempt := 0; attempt < 2*maxSlots && len(out) < count; attempt++ {
		p := Position{Col: g.rng.Intn(g.columns), Row: g.rng.Intn(rows)}
		if _, ok := taken[p]; ok {
			continue
		}
		taken[p] = struct{}{}
		out = append(out, p)
	}

	for row := 0; row < rows && len(out) < count; row++ {
		for col := 0; col < g.columns && len(out) < count; col++ {
			p := Position{Col: col, Row: row}
			if _, ok := taken[p]; ok {
				continue
			}
			taken[p] = struct{}{}
			out = append(out, p)
		}
	}

	return out
}

func (g *Grid) clampRows(rows int) int {
	return min(max(rows, 1), g.rows)
}
