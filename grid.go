package gglife

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidSize is returned when a grid dimension is not positive.
var ErrInvalidSize = errors.New("gglife: invalid grid size")

// Grid is a toroidal grid of cells, one u32 flag per cell, stored row-major
// (index = row*width + col). It is the CPU reference for the GPU simulation
// stage and uses the same wraparound arithmetic.
type Grid struct {
	width  int
	height int
	cells  []uint32
}

// NewGrid creates an all-dead grid with the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]uint32, width*height),
	}, nil
}

// GridFromCells wraps a copy of cells as a width×height grid. Any non-zero
// value is treated as alive.
func GridFromCells(width, height int, cells []uint32) (*Grid, error) {
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(cells) != len(g.cells) {
		return nil, fmt.Errorf("gglife: %d cells for a %dx%d grid", len(cells), width, height)
	}
	for i, c := range cells {
		if c != Dead {
			g.cells[i] = Alive
		}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Cells returns the backing cell slice. The caller must not retain it
// across mutations of the grid.
func (g *Grid) Cells() []uint32 { return g.cells }

// Index returns the cell index of (x, y) after toroidal wraparound, so any
// integer coordinate maps into range.
func (g *Grid) Index(x, y int) int {
	return wrap(y, g.height)*g.width + wrap(x, g.width)
}

// At returns the state of the cell at (x, y), wrapping coordinates.
func (g *Grid) At(x, y int) uint32 {
	return g.cells[g.Index(x, y)]
}

// Set sets the cell at (x, y), wrapping coordinates.
func (g *Grid) Set(x, y int, alive bool) {
	v := Dead
	if alive {
		v = Alive
	}
	g.cells[g.Index(x, y)] = v
}

// Neighbors counts the live cells among the eight neighbors of (x, y) on
// the torus. On grids narrower than three cells an axis wraps onto itself
// and the same cell is counted more than once.
func (g *Grid) Neighbors(x, y int) int {
	n := 0
	for _, off := range neighborOffsets {
		n += int(g.At(x+off[0], y+off[1]))
	}
	return n
}

// Population returns the number of live cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cells {
		n += int(c)
	}
	return n
}

// Step returns the next generation as a new grid. g is not modified.
func (g *Grid) Step() *Grid {
	next := &Grid{width: g.width, height: g.height, cells: make([]uint32, len(g.cells))}
	stepInto(next.cells, g)
	return next
}

// stepInto writes the next generation of src into dst. dst must not alias
// src.cells.
func stepInto(dst []uint32, src *Grid) {
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			dst[y*src.width+x] = Next(src.cells[y*src.width+x], src.Neighbors(x, y))
		}
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{width: g.width, height: g.height, cells: slices.Clone(g.cells)}
}

// Equal reports whether g and o have the same dimensions and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.width == o.width && g.height == o.height && slices.Equal(g.cells, o.cells)
}

// Stamp copies the live cells of p onto g with p's top-left corner at
// (x0, y0). Coordinates wrap.
func (g *Grid) Stamp(p *Grid, x0, y0 int) {
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			if p.cells[y*p.width+x] != Dead {
				g.Set(x0+x, y0+y, true)
			}
		}
	}
}

// String renders the grid in plaintext form, 'O' for alive and '.' for dead,
// one row per line starting at row 0.
func (g *Grid) String() string {
	var sb strings.Builder
	sb.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] != Dead {
				sb.WriteByte('O')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// wrap maps v into [0, n) the same way the compute shader does:
// (v + n) % n, extended to offsets beyond one period.
func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
