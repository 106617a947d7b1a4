package physics

// grid is a uniform broad-phase grid rebuilt every step. It covers the
// bounding box of the current shapes, so bodies outside the playfield (for
// instance while wrapping) still collide.
type grid struct {
	cellSize   float64
	minX, minY float64
	cols, rows int
	cells      [][]int // indices into the step's candidate list
}

// reset sizes the grid for the given bounds and clears it.
func (g *grid) reset(minX, minY, maxX, maxY, cellSize float64) {
	g.cellSize = cellSize
	g.minX = minX
	g.minY = minY
	g.cols = int((maxX-minX)/cellSize) + 1
	g.rows = int((maxY-minY)/cellSize) + 1

	n := g.cols * g.rows
	if cap(g.cells) < n {
		g.cells = make([][]int, n)
	}
	g.cells = g.cells[:n]
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// insert adds a candidate index at the given position.
func (g *grid) insert(idx int, x, y float64) {
	c := g.cellIndex(x, y)
	g.cells[c] = append(g.cells[c], idx)
}

// neighbors calls fn for every candidate in the 3x3 block around (x, y).
// The cell size is at least one diameter, so that block holds every shape
// that can overlap a shape centered at (x, y).
func (g *grid) neighbors(x, y float64, fn func(idx int)) {
	col := g.col(x)
	row := g.row(y)
	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}
			for _, idx := range g.cells[r*g.cols+c] {
				fn(idx)
			}
		}
	}
}

// cellIndex returns the flat index for a world position.
func (g *grid) cellIndex(x, y float64) int {
	return g.row(y)*g.cols + g.col(x)
}

func (g *grid) col(x float64) int {
	c := int((x - g.minX) / g.cellSize)
	return min(max(c, 0), g.cols-1)
}

func (g *grid) row(y float64) int {
	r := int((y - g.minY) / g.cellSize)
	return min(max(r, 0), g.rows-1)
}
