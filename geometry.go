package gglife

// quadExtent is the half-size of the base quad in cell units. It is inset
// from 1 so neighboring live cells keep a visible gap.
const quadExtent = 0.8

// QuadVertices is the base quad shared by every cell instance: two
// triangles, counter-clockwise, in the [-1, 1] cell space.
var QuadVertices = [6][2]float32{
	{-quadExtent, -quadExtent},
	{quadExtent, -quadExtent},
	{quadExtent, quadExtent},

	{-quadExtent, -quadExtent},
	{quadExtent, quadExtent},
	{-quadExtent, quadExtent},
}

// CellBlue is the fixed blue channel of every cell color.
const CellBlue = 0.6

// ClearColor is the background the render stage clears to.
var ClearColor = RGBA{R: 0, G: 0, B: 0.4, A: 1}

// CellCoord decodes an instance index into its grid column and row.
func CellCoord(index, width int) (x, y int) {
	return index % width, index / width
}

// CellVertex returns the normalized device coordinates of base vertex pos
// for the cell instance at index. The vertex is scaled by the cell state, so
// a dead cell collapses to the center of its slot, then translated into the
// slot; the whole grid spans [-1, 1] on both axes.
//
// This mirrors vs_main in shaders/life_render.wgsl.
func CellVertex(pos [2]float32, index, width, height int, state uint32) [2]float32 {
	cx, cy := CellCoord(index, width)
	gx, gy := float32(width), float32(height)
	s := float32(state)
	offX := float32(cx) / gx * 2
	offY := float32(cy) / gy * 2
	return [2]float32{
		(pos[0]*s+1)/gx - 1 + offX,
		(pos[1]*s+1)/gy - 1 + offY,
	}
}

// CellColor returns the color of the cell at index. It depends only on the
// cell's position: red and green follow the column and row fractions.
//
// This mirrors fs_main in shaders/life_render.wgsl.
func CellColor(index, width, height int) RGBA {
	cx, cy := CellCoord(index, width)
	return RGBA{
		R: float64(float32(cx) / float32(width)),
		G: float64(float32(cy) / float32(height)),
		B: CellBlue,
		A: 1,
	}
}
