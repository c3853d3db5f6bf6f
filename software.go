package gglife

import "math"

// RenderCells draws g into pm the way the GPU render stage does: clear to
// ClearColor, then one filled quad per live cell in CellColor. Dead cells
// collapse to a point and cover no pixel.
//
// A pixel is covered when its center lies inside the quad, with the left and
// bottom edges inclusive. Row 0 of the pixmap is the top of the image, so
// grid row 0 appears at the bottom, matching the NDC y-up convention.
func RenderCells(pm *Pixmap, g *Grid) {
	pm.Clear(ClearColor)

	w, h := float64(pm.width), float64(pm.height)
	lo := QuadVertices[0]
	hi := QuadVertices[2]

	for i, state := range g.cells {
		if state == Dead {
			continue
		}
		a := CellVertex(lo, i, g.width, g.height, state)
		b := CellVertex(hi, i, g.width, g.height, state)

		// NDC to pixel space, y flipped.
		fx0 := (float64(a[0]) + 1) / 2 * w
		fx1 := (float64(b[0]) + 1) / 2 * w
		fy0 := (1 - float64(b[1])) / 2 * h
		fy1 := (1 - float64(a[1])) / 2 * h

		px0 := int(math.Ceil(fx0 - 0.5))
		px1 := int(math.Ceil(fx1 - 0.5))
		py0 := int(math.Floor(fy0-0.5)) + 1
		py1 := int(math.Floor(fy1-0.5)) + 1

		c := CellColor(i, g.width, g.height)
		for py := max(py0, 0); py < min(py1, pm.height); py++ {
			for px := max(px0, 0); px < min(px1, pm.width); px++ {
				pm.SetPixel(px, py, c)
			}
		}
	}
}

// RenderImage renders g into a new width×height pixmap.
func RenderImage(g *Grid, width, height int) *Pixmap {
	pm := NewPixmap(width, height)
	RenderCells(pm, g)
	return pm
}
