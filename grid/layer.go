package grid

import "github.com/lixenwraith/gridplan/core"

// layer holds the occupancy and inflation masks shared by Environment and Snapshot
type layer struct {
	width, height int
	occupied      []bool
	inflated      []bool
}

func newLayer(width, height int) layer {
	size := width * height
	return layer{
		width:    width,
		height:   height,
		occupied: make([]bool, size),
		inflated: make([]bool, size),
	}
}

// Width returns the number of columns
func (l *layer) Width() int { return l.width }

// Height returns the number of rows
func (l *layer) Height() int { return l.height }

// InBounds reports whether p lies on the grid
func (l *layer) InBounds(p core.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < l.width && p.Y < l.height
}

// Occupied reports whether p is an obstacle or border cell; out of bounds counts as occupied
func (l *layer) Occupied(p core.Point) bool {
	if !l.InBounds(p) {
		return true
	}
	return l.occupied[p.Y*l.width+p.X]
}

// Inflated reports whether p is in the clearance band around obstacles
func (l *layer) Inflated(p core.Point) bool {
	if !l.InBounds(p) {
		return false
	}
	return l.inflated[p.Y*l.width+p.X]
}

// Traversable reports whether p is in bounds, free and uninflated
func (l *layer) Traversable(p core.Point) bool {
	if !l.InBounds(p) {
		return false
	}
	idx := p.Y*l.width + p.X
	return !l.occupied[idx] && !l.inflated[idx]
}

// Neighbors8 appends the traversable neighbors of p to buf[:0] in DirVectors order
func (l *layer) Neighbors8(p core.Point, buf []core.Neighbor) []core.Neighbor {
	buf = buf[:0]
	for d := int8(0); d < core.DirCount; d++ {
		n := p.Add(core.DirVectors[d])
		if !l.Traversable(n) {
			continue
		}
		buf = append(buf, core.Neighbor{Cell: n, Cost: core.DirCosts[d]})
	}
	return buf
}

// FreeCells lists traversable cells in row-major order
func (l *layer) FreeCells() []core.Point {
	var out []core.Point
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			idx := y*l.width + x
			if !l.occupied[idx] && !l.inflated[idx] {
				out = append(out, core.Point{X: x, Y: y})
			}
		}
	}
	return out
}

// Grid returns occupancy as rows of 0/1
func (l *layer) Grid() [][]int {
	rows := make([][]int, l.height)
	for y := range rows {
		rows[y] = make([]int, l.width)
		for x := range rows[y] {
			if l.occupied[y*l.width+x] {
				rows[y][x] = 1
			}
		}
	}
	return rows
}

// Erosion returns the inflation mask as rows
func (l *layer) Erosion() [][]bool {
	rows := make([][]bool, l.height)
	for y := range rows {
		rows[y] = make([]bool, l.width)
		copy(rows[y], l.inflated[y*l.width:(y+1)*l.width])
	}
	return rows
}

// inflate marks every free cell 8-adjacent to an occupied cell
func (l *layer) inflate() {
	w, h := l.width, l.height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			l.inflated[idx] = false
			if l.occupied[idx] {
				continue
			}
			for _, d := range core.DirVectors {
				nx, ny := x+d.X, y+d.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				if l.occupied[ny*w+nx] {
					l.inflated[idx] = true
					break
				}
			}
		}
	}
}

func (l *layer) copyFrom(src *layer) {
	l.width, l.height = src.width, src.height
	l.occupied = append(l.occupied[:0], src.occupied...)
	l.inflated = append(l.inflated[:0], src.inflated...)
}
