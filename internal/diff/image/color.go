package image

// YIQ coefficients from "Measuring perceived color difference using YIQ NTSC
// transmission color space in mobile applications" (Kotsarenko, Ramos).
const (
	yR = 0.29889531
	yG = 0.58662247
	yB = 0.11448223

	iR = 0.59597799
	iG = 0.27417610
	iB = 0.32180189

	qR = 0.21147017
	qG = 0.52261711
	qB = 0.31114694

	yWeight = 0.5053
	iWeight = 0.299
	qWeight = 0.1957

	// maxYIQDelta normalizes the threshold so that it lies in [0,1].
	maxYIQDelta = 35215.0
)

// maxDelta is the squared YIQ distance above which two pixels differ.
func maxDelta(threshold float64) float64 {
	return maxYIQDelta * threshold * threshold
}

// blendWhite composites one channel against a white background.
func blendWhite(c float64, a float64) float64 {
	return 255 + float64((c-255)*a)
}

// composite returns the pixel at p[0:4] blended over white.
func composite(p []byte) (float64, float64, float64) {
	r, g, b, a := float64(p[0]), float64(p[1]), float64(p[2]), p[3]
	switch a {
	case 0:
		return 255, 255, 255
	case 255:
		return r, g, b
	}
	alpha := float64(a) / 255
	return blendWhite(r, alpha), blendWhite(g, alpha), blendWhite(b, alpha)
}

// The explicit conversions keep the compiler from fusing multiply-adds, so
// every code path rounds identically on every architecture.
func rgb2y(r, g, b float64) float64 { return float64(r*yR) + float64(g*yG) + float64(b*yB) }
func rgb2i(r, g, b float64) float64 { return float64(r*iR) - float64(g*iG) - float64(b*iB) }
func rgb2q(r, g, b float64) float64 { return float64(r*qR) - float64(g*qG) + float64(b*qB) }

// colorDelta is the weighted squared YIQ distance between the RGBA8 pixels
// p[0:4] and q[0:4]. Byte-equal pixels short-circuit to zero.
func colorDelta(p []byte, q []byte) float64 {
	if p[0] == q[0] && p[1] == q[1] && p[2] == q[2] && p[3] == q[3] {
		return 0
	}

	r1, g1, b1 := composite(p)
	r2, g2, b2 := composite(q)
	return yiqDelta(r1, g1, b1, r2, g2, b2)
}

// yiqDelta is the weighted squared YIQ distance of two composited colors.
func yiqDelta(r1, g1, b1, r2, g2, b2 float64) float64 {
	y := rgb2y(r1, g1, b1) - rgb2y(r2, g2, b2)
	i := rgb2i(r1, g1, b1) - rgb2i(r2, g2, b2)
	q := rgb2q(r1, g1, b1) - rgb2q(r2, g2, b2)

	return float64(yWeight*y*y) + float64(iWeight*i*i) + float64(qWeight*q*q)
}
