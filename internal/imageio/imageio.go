// Package imageio turns encoded images into RGBA8 rasters and back.
package imageio

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	diffimage "pixeldiff/internal/diff/image"
)

var (
	ErrRead              = errors.New("failed to read image")
	ErrDecode            = errors.New("failed to decode image")
	ErrDimensionMismatch = diffimage.ErrDimensionMismatch
	ErrEncode            = errors.New("failed to encode image")
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// maxDecompressed caps the size of a zstd-wrapped image.
const maxDecompressed = 1 << 30

// Raster is a row-major, non-premultiplied RGBA8 image.
type Raster struct {
	Pix    []byte
	Width  int
	Height int
}

// Image returns r as an *image.NRGBA sharing its pixels.
func (r *Raster) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// Decode decodes any registered format, optionally wrapped in zstd.
func Decode(data []byte) (*Raster, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := decompress(data)
		if err != nil {
			return nil, xerrors.Errorf("zstd: %v: %w", err, ErrDecode)
		}
		data = plain
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrDecode)
	}

	n := diffimage.ToNRGBA(img)
	return &Raster{
		Pix:    n.Pix,
		Width:  n.Rect.Dx(),
		Height: n.Rect.Dy(),
	}, nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxDecompressed))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return io.ReadAll(dec)
}

func DecodeFile(path string) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", err, ErrRead)
	}

	r, err := Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// DecodePair decodes both images concurrently and checks that their sizes
// match.
func DecodePair(a []byte, b []byte) (*Raster, *Raster, error) {
	var ra, rb *Raster

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		if ra, err = Decode(a); err != nil {
			return xerrors.Errorf("image 1: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		if rb, err = Decode(b); err != nil {
			return xerrors.Errorf("image 2: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	if ra.Width != rb.Width || ra.Height != rb.Height {
		return nil, nil, xerrors.Errorf("image 1: %dx%d, image 2: %dx%d: %w", ra.Width, ra.Height, rb.Width, rb.Height, ErrDimensionMismatch)
	}
	return ra, rb, nil
}
