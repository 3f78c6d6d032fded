package image

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/xerrors"
)

type Result struct {
	Image      *image.NRGBA
	DiffCount  uint32
	DiffAmount float64
	Regions    []Rectangle
}

type Differ interface {
	Calculate(baseline image.Image, target image.Image) (*Result, error)
}

// PerceptualDiff runs Diff over decoded images.
type PerceptualDiff struct {
	options Options
}

func NewPerceptualDiff(options Options) *PerceptualDiff {
	return &PerceptualDiff{
		options,
	}
}

func (p *PerceptualDiff) Calculate(baseline image.Image, target image.Image) (*Result, error) {
	bb, tb := baseline.Bounds(), target.Bounds()
	if bb.Dx() != tb.Dx() || bb.Dy() != tb.Dy() {
		return nil, xerrors.Errorf("image 1: %dx%d, image 2: %dx%d: %w", bb.Dx(), bb.Dy(), tb.Dx(), tb.Dy(), ErrDimensionMismatch)
	}

	a := ToNRGBA(baseline)
	b := ToNRGBA(target)

	r, err := Diff(a.Pix, b.Pix, bb.Dx(), bb.Dy(), p.options)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image: &image.NRGBA{
			Pix:    r.Output,
			Stride: r.Width * 4,
			Rect:   image.Rect(0, 0, r.Width, r.Height),
		},
		DiffCount:  r.DiffCount,
		DiffAmount: r.DiffAmount(),
		Regions:    r.Regions(),
	}, nil
}

// ToNRGBA returns img as a tightly packed, zero-origin *image.NRGBA. Images
// that already have that layout are returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) && n.Stride == bounds.Dx()*4 && len(n.Pix) == bounds.Dx()*bounds.Dy()*4 {
		return n
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
