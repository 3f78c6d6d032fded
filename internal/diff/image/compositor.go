package image

import "image/color"

// compositor renders classified pixels into the output buffer and counts
// the pixels that differ for real.
type compositor struct {
	out       []byte
	alpha     float64
	aaColor   color.RGBA
	diffColor color.RGBA
	// mask marks the pixels drawn as differences, indexed by i/4.
	mask  []bool
	count uint32
}

// gray draws the pixel src[0:4] as a faded grayscale of its luma.
func (c *compositor) gray(i int, src []byte) {
	y := rgb2y(float64(src[0]), float64(src[1]), float64(src[2]))
	v := 255 + float64((y-255)*c.alpha*(float64(src[3])/255))
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	g := uint8(v)
	c.out[i] = g
	c.out[i+1] = g
	c.out[i+2] = g
	c.out[i+3] = 255
}

func (c *compositor) antialiased(i int) {
	c.fill(i, c.aaColor)
}

func (c *compositor) different(i int) {
	c.fill(i, c.diffColor)
	if c.mask != nil {
		c.mask[i/4] = true
	}
	c.count++
}

func (c *compositor) fill(i int, col color.RGBA) {
	c.out[i] = col.R
	c.out[i+1] = col.G
	c.out[i+2] = col.B
	c.out[i+3] = 255
}
