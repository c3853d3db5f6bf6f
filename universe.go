package gglife

// Universe is the CPU counterpart of the GPU grid store: two cell buffers
// that swap input/output roles by step parity without copying.
//
// At step s, buffer s%2 holds the current generation and buffer (s+1)%2 is
// overwritten by Tick. After Tick the step advances, so the buffer just
// written becomes the input of the next tick.
type Universe struct {
	width  int
	height int
	cells  [2][]uint32
	step   uint64
}

// NewUniverse creates a universe whose two buffers both hold a copy of g.
func NewUniverse(g *Grid) *Universe {
	u := &Universe{width: g.width, height: g.height}
	for i := range u.cells {
		u.cells[i] = make([]uint32, len(g.cells))
		copy(u.cells[i], g.cells)
	}
	return u
}

// Step returns the number of completed ticks.
func (u *Universe) Step() uint64 { return u.step }

// Parity returns the buffer slot that is the input for the next tick.
func (u *Universe) Parity() int { return int(u.step & 1) }

// Input returns the buffer read by the tick at the given step.
func (u *Universe) Input(step uint64) []uint32 { return u.cells[step&1] }

// Output returns the buffer written by the tick at the given step.
func (u *Universe) Output(step uint64) []uint32 { return u.cells[(step+1)&1] }

// Tick computes the next generation from the input buffer into the output
// buffer and advances the step counter.
func (u *Universe) Tick() {
	in := &Grid{width: u.width, height: u.height, cells: u.Input(u.step)}
	stepInto(u.Output(u.step), in)
	u.step++
}

// Current returns a copy of the latest generation.
func (u *Universe) Current() *Grid {
	g := &Grid{width: u.width, height: u.height, cells: make([]uint32, u.width*u.height)}
	copy(g.cells, u.Input(u.step))
	return g
}
