package image

import "math"

// Fixed-point luma uses the Y coefficients scaled by 2^16 and truncated.
const (
	lumaScale        = 65536
	lumaYR    uint32 = 19588
	lumaYG    uint32 = 38444
	lumaYB    uint32 = 7502
	lumaWhite uint32 = 255 * (lumaYR + lumaYG + lumaYB)

	lumaGateScale = 0.7

	// lumaTruncation bounds how far a fixed-point luma can fall below the
	// exact one: 255 * (frac(yR*2^16) + frac(yG*2^16) + frac(yB*2^16)).
	lumaTruncation = 510

	// chromaWeight bounds 0.299*(|iR|+|iG|+|iB|)^2 + 0.1957*(|qR|+|qG|+|qB|)^2
	// from above, so that the I and Q terms never exceed chromaWeight*m^2
	// for a largest channel difference m.
	chromaWeight = 0.6387
)

// lumaAt returns the fixed-point luma of the pixel at pix[i:i+4] composited
// over white.
func lumaAt(pix []byte, i int) uint32 {
	r, g, b, a := uint32(pix[i]), uint32(pix[i+1]), uint32(pix[i+2]), pix[i+3]
	switch a {
	case 0:
		return lumaWhite
	case 255:
		return r*lumaYR + g*lumaYG + b*lumaYB
	}
	alpha := float64(a) / 255
	br := uint32(blendWhite(float64(r), alpha))
	bg := uint32(blendWhite(float64(g), alpha))
	bb := uint32(blendWhite(float64(b), alpha))
	return br*lumaYR + bg*lumaYG + bb*lumaYB
}

func lumaRow(pix []byte, width int, y int, dst []uint32) {
	offset := y * width * 4
	for x := range dst {
		dst[x] = lumaAt(pix, offset+x*4)
	}
}

// lumaRows keeps the luma of rows y-1, y and y+1 of one image. Rows outside
// that window are computed on demand.
type lumaRows struct {
	pix    []byte
	width  int
	height int

	prev []uint32
	curr []uint32
	next []uint32
	y    int
}

func newLumaRows(pix []byte, width int, height int, y int) *lumaRows {
	l := &lumaRows{
		pix:    pix,
		width:  width,
		height: height,
		prev:   make([]uint32, width),
		curr:   make([]uint32, width),
		next:   make([]uint32, width),
		y:      y,
	}
	if y > 0 {
		lumaRow(pix, width, y-1, l.prev)
	}
	lumaRow(pix, width, y, l.curr)
	if y+1 < height {
		lumaRow(pix, width, y+1, l.next)
	}
	return l
}

// advance moves the window down by one row, reusing the oldest slice.
func (l *lumaRows) advance() {
	l.prev, l.curr, l.next = l.curr, l.next, l.prev
	l.y++
	if l.y+1 < l.height {
		lumaRow(l.pix, l.width, l.y+1, l.next)
	}
}

func (l *lumaRows) at(x int, y int) uint32 {
	switch y - l.y {
	case -1:
		return l.prev[x]
	case 0:
		return l.curr[x]
	case 1:
		return l.next[x]
	}
	return lumaAt(l.pix, (y*l.width+x)*4)
}

// lumaGate cheaply proves that a pixel pair is within the threshold without
// evaluating the full color delta.
type lumaGate struct {
	enabled        bool
	threshold      uint32
	maxChannelDiff int
}

func newLumaGate(threshold float64, disabled bool) lumaGate {
	g := lumaGate{
		threshold: uint32(threshold * lumaGateScale * 255 * 255),
	}
	if disabled {
		return g
	}

	dy := (float64(g.threshold) + lumaTruncation) / lumaScale
	budget := maxDelta(threshold)*(1-1e-9) - yWeight*dy*dy
	if budget < 0 {
		return g
	}
	g.enabled = true
	g.maxChannelDiff = int(math.Sqrt(budget / chromaWeight))
	return g
}

// similar reports whether p and q, with lumas l1 and l2, are certainly not
// above the threshold. A false result says nothing.
func (g lumaGate) similar(p []byte, q []byte, l1 uint32, l2 uint32) bool {
	if !g.enabled || p[3] != 255 || q[3] != 255 {
		return false
	}
	var d uint32
	if l1 > l2 {
		d = l1 - l2
	} else {
		d = l2 - l1
	}
	if d > g.threshold {
		return false
	}
	m := g.maxChannelDiff
	return absDiff(p[0], q[0]) <= m && absDiff(p[1], q[1]) <= m && absDiff(p[2], q[2]) <= m
}

func absDiff(a uint8, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
