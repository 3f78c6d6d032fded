package imageio

import (
	"bytes"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/xerrors"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

const jpegQuality = 90

// FormatFromPath picks the output format from the file extension, falling
// back to PNG.
func FormatFromPath(path string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseFormat is ParseFormatStrict with unknown names mapped to PNG.
func ParseFormat(name string) Format {
	f, err := ParseFormatStrict(name)
	if err != nil {
		return FormatPNG
	}
	return f
}

// ParseFormatStrict accepts the format names and their common aliases. The
// empty name selects PNG.
func ParseFormatStrict(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", xerrors.Errorf("unknown format %q: %w", name, ErrEncode)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// Encode writes r to w in format f.
func Encode(w io.Writer, r *Raster, f Format) error {
	if r.Width < 0 || r.Height < 0 || len(r.Pix) != r.Width*r.Height*4 {
		return xerrors.Errorf("%d bytes for %dx%d: %w", len(r.Pix), r.Width, r.Height, ErrEncode)
	}

	img := r.Image()
	var err error
	switch f {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return xerrors.Errorf("%s: %v: %w", f, err, ErrEncode)
	}
	return nil
}

func EncodeBytes(r *Raster, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, r, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
