package image

// lumaSource looks up the fixed-point luma of any pixel of one image.
type lumaSource interface {
	at(x int, y int) uint32
}

// antialiased reports whether the differing pixel at (x, y) looks like
// anti-aliasing rather than a content change. The darkest and brightest
// neighbors are chosen by luma in image a; the pixel counts as anti-aliased
// when one of them sits in a flat area in a and one of them does in b.
//
// Based on "Anti-aliased Pixel and Intensity Slope Detector" by V. Vysniauskas, 2009.
func antialiased(a lumaSource, b lumaSource, x int, y int, width int, height int) bool {
	n := newNeighborhood(x, y, width, height)
	zeroes := n.initialZeroes()

	center := a.at(x, y)

	var minDiff uint32 = ^uint32(0)
	var maxDiff uint32
	var minX, minY, maxX, maxY int
	found := false

	for ny := n.y0; ny <= n.y1; ny++ {
		for nx := n.x0; nx <= n.x1; nx++ {
			if nx == x && ny == y {
				continue
			}

			l := a.at(nx, ny)
			if l == center {
				zeroes++
				// three equal siblings make this a flat area next to an edge
				if zeroes >= 3 {
					return false
				}
				continue
			}

			var delta uint32
			if l > center {
				delta = l - center
			} else {
				delta = center - l
			}
			found = true
			if delta < minDiff {
				minDiff = delta
				minX, minY = nx, ny
			}
			if delta > maxDiff {
				maxDiff = delta
				maxX, maxY = nx, ny
			}
		}
	}

	if !found {
		return false
	}

	return (hasManySiblings(a, minX, minY, width, height) || hasManySiblings(a, maxX, maxY, width, height)) &&
		(hasManySiblings(b, minX, minY, width, height) || hasManySiblings(b, maxX, maxY, width, height))
}

// hasManySiblings reports whether (x, y) has at least three neighbors with
// exactly its luma.
func hasManySiblings(src lumaSource, x int, y int, width int, height int) bool {
	n := newNeighborhood(x, y, width, height)
	zeroes := n.initialZeroes()

	center := src.at(x, y)
	for ny := n.y0; ny <= n.y1; ny++ {
		for nx := n.x0; nx <= n.x1; nx++ {
			if nx == x && ny == y {
				continue
			}
			if src.at(nx, ny) == center {
				zeroes++
				if zeroes >= 3 {
					return true
				}
			}
		}
	}
	return false
}
