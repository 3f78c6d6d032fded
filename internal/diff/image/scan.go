package image

import "bytes"

// batchWidth is the number of pixels compared per step of the batched scan.
const batchWidth = 8

type scanner struct {
	a      []byte
	b      []byte
	width  int
	height int

	maxDelta  float64
	includeAA bool
	gate      lumaGate
	batched   bool
}

// scanRows renders rows [startY, endY) into c.
func (s *scanner) scanRows(c *compositor, startY int, endY int) {
	if startY >= endY {
		return
	}

	la := newLumaRows(s.a, s.width, s.height, startY)
	lb := newLumaRows(s.b, s.width, s.height, startY)

	for y := startY; y < endY; y++ {
		if y > startY {
			la.advance()
			lb.advance()
		}
		if s.batched {
			s.batchRow(c, la, lb, y)
		} else {
			s.scalarRow(c, la, lb, y, 0)
		}
	}
}

// scalarRow renders row y from column fromX on, one pixel at a time.
func (s *scanner) scalarRow(c *compositor, la *lumaRows, lb *lumaRows, y int, fromX int) {
	rowOffset := y * s.width * 4
	for x := fromX; x < s.width; x++ {
		i := rowOffset + x*4
		p := s.a[i : i+4 : i+4]
		q := s.b[i : i+4 : i+4]

		if s.within(p, q, la.curr[x], lb.curr[x]) {
			c.gray(i, p)
			continue
		}
		if colorDelta(p, q) <= s.maxDelta {
			c.gray(i, p)
			continue
		}
		s.classify(c, la, lb, x, y, i)
	}
}

// within reports whether p and q are known to be similar without computing
// the full color delta.
func (s *scanner) within(p []byte, q []byte, l1 uint32, l2 uint32) bool {
	if p[0] == q[0] && p[1] == q[1] && p[2] == q[2] && p[3] == q[3] {
		return true
	}
	return s.gate.similar(p, q, l1, l2)
}

func (s *scanner) classify(c *compositor, la *lumaRows, lb *lumaRows, x int, y int, i int) {
	if s.includeAA && antialiased(la, lb, x, y, s.width, s.height) {
		c.antialiased(i)
		return
	}
	c.different(i)
}

// batchRow renders row y batchWidth pixels at a time and hands the
// remainder to the scalar path.
func (s *scanner) batchRow(c *compositor, la *lumaRows, lb *lumaRows, y int) {
	const n = batchWidth * 4

	var deltas [batchWidth]float64
	var exceeds [batchWidth]bool

	rowOffset := y * s.width * 4
	x := 0
	for ; x+batchWidth <= s.width; x += batchWidth {
		i := rowOffset + x*4
		pa := s.a[i : i+n : i+n]
		pb := s.b[i : i+n : i+n]

		if bytes.Equal(pa, pb) {
			for lane := 0; lane < batchWidth; lane++ {
				c.gray(i+lane*4, pa[lane*4:lane*4+4])
			}
			continue
		}

		s.batchDelta(pa, pb, la.curr[x:x+batchWidth], lb.curr[x:x+batchWidth], &deltas, &exceeds)

		for lane := 0; lane < batchWidth; lane++ {
			j := i + lane*4
			if !exceeds[lane] {
				c.gray(j, pa[lane*4:lane*4+4])
				continue
			}
			s.classify(c, la, lb, x+lane, y, j)
		}
	}

	s.scalarRow(c, la, lb, y, x)
}

// batchDelta evaluates the color model for every lane of a batch. Lanes
// settled by the exact match or the luma gate get a zero delta.
func (s *scanner) batchDelta(pa []byte, pb []byte, l1 []uint32, l2 []uint32, deltas *[batchWidth]float64, exceeds *[batchWidth]bool) {
	var r1, g1, b1, r2, g2, b2 [batchWidth]float64
	var live [batchWidth]bool

	for lane := 0; lane < batchWidth; lane++ {
		p := pa[lane*4 : lane*4+4 : lane*4+4]
		q := pb[lane*4 : lane*4+4 : lane*4+4]
		if s.within(p, q, l1[lane], l2[lane]) {
			continue
		}
		live[lane] = true
		r1[lane], g1[lane], b1[lane] = composite(p)
		r2[lane], g2[lane], b2[lane] = composite(q)
	}

	for lane := 0; lane < batchWidth; lane++ {
		if !live[lane] {
			deltas[lane] = 0
			exceeds[lane] = false
			continue
		}
		deltas[lane] = yiqDelta(r1[lane], g1[lane], b1[lane], r2[lane], g2[lane], b2[lane])
		exceeds[lane] = deltas[lane] > s.maxDelta
	}
}
