package image

// neighborhood is the 3x3 window around (x, y) clamped to the image.
type neighborhood struct {
	x0, y0 int
	x1, y1 int
	// edge is set for positions on the image border; edge pixels start
	// counting equal siblings at one.
	edge bool
}

func newNeighborhood(x int, y int, width int, height int) neighborhood {
	return neighborhood{
		x0:   max(x-1, 0),
		y0:   max(y-1, 0),
		x1:   min(x+1, width-1),
		y1:   min(y+1, height-1),
		edge: x == 0 || y == 0 || x == width-1 || y == height-1,
	}
}

func (n neighborhood) initialZeroes() int {
	if n.edge {
		return 1
	}
	return 0
}
