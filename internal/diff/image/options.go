package image

import (
	"errors"
	"image/color"

	"golang.org/x/xerrors"
)

var (
	ErrInvalidOptions    = errors.New("invalid diff options")
	ErrBufferSize        = errors.New("buffer size does not match dimensions")
	ErrDimensionMismatch = errors.New("images must have equal dimensions")
)

type Options struct {
	// Threshold is the perceptual sensitivity in [0,1]; smaller is stricter.
	Threshold float64
	// IncludeAA enables anti-aliasing detection. Anti-aliased pixels are
	// drawn with AAColor and excluded from the diff count.
	IncludeAA bool
	// Alpha is the blend strength of the grayscale rendering of unchanged pixels.
	Alpha float64

	AAColor   color.RGBA
	DiffColor color.RGBA
	// DiffColorAlt is reserved for distinguishing darker from lighter
	// changes and is not consulted by the scan.
	DiffColorAlt *color.RGBA

	// Concurrency is the number of row-range workers. Zero uses GOMAXPROCS.
	Concurrency int
	// DisableBatching forces the scalar scan.
	DisableBatching bool
	// DisableLumaGate computes the full color delta for every non-equal pixel.
	DisableLumaGate bool
}

func DefaultOptions() Options {
	return Options{
		Threshold: 0.1,
		IncludeAA: false,
		Alpha:     0.1,
		AAColor:   color.RGBA{R: 255, G: 255, B: 0, A: 255},
		DiffColor: color.RGBA{R: 255, G: 0, B: 255, A: 255},
	}
}

func (o Options) Validate() error {
	if !(o.Threshold >= 0 && o.Threshold <= 1) {
		return xerrors.Errorf("threshold %v out of range [0,1]: %w", o.Threshold, ErrInvalidOptions)
	}
	if !(o.Alpha >= 0 && o.Alpha <= 1) {
		return xerrors.Errorf("alpha %v out of range [0,1]: %w", o.Alpha, ErrInvalidOptions)
	}
	if o.Concurrency < 0 {
		return xerrors.Errorf("concurrency %d must not be negative: %w", o.Concurrency, ErrInvalidOptions)
	}
	return nil
}
