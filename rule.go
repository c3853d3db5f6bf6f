package gglife

// Cell states as stored in the cell-state buffers. The GPU stages read and
// write the same u32 values.
const (
	Dead  uint32 = 0
	Alive uint32 = 1
)

// Next returns the next state of a cell given its current state and the
// number of live cells among its eight neighbors.
//
//	2 neighbors: the cell keeps its state
//	3 neighbors: the cell is alive
//	otherwise:   the cell is dead
//
// Next matches the switch in shaders/life_compute.wgsl exactly.
func Next(current uint32, neighbors int) uint32 {
	switch neighbors {
	case 2:
		return current
	case 3:
		return Alive
	default:
		return Dead
	}
}

// neighborOffsets lists the eight Moore-neighborhood offsets. The sum is
// order independent; this order is row-major from the top-left.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}
