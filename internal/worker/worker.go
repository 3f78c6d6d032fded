// Package worker captures two pages, diffs the screenshots and uploads the
// artifacts.
package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"pixeldiff/internal/capture"
	diffimage "pixeldiff/internal/diff/image"
	"pixeldiff/internal/imageio"
	"pixeldiff/internal/storage"
)

type Output struct {
	BaselineURL string                `json:"baselineURL"`
	TargetURL   string                `json:"targetURL"`
	DiffURL     string                `json:"diffURL"`
	DiffCount   uint32                `json:"diffCount"`
	TotalPixels int                   `json:"totalPixels"`
	DiffAmount  float64               `json:"diffAmount"`
	Regions     []diffimage.Rectangle `json:"regions"`
}

type Worker struct {
	Capturer       capture.Capturer
	Storage        storage.Storage
	Prefix         string
	Options        diffimage.Options
	DiffFormat     imageio.Format
	CaptureOptions capture.CaptureOptions
	Logger         *slog.Logger

	now func() time.Time
}

// NewOptions overrides the tunable fields of the default diff options, so
// the marker colors keep their defaults.
func NewOptions(threshold float64, includeAA bool, alpha float64, concurrency int) (diffimage.Options, error) {
	options := diffimage.DefaultOptions()
	options.Threshold = threshold
	options.IncludeAA = includeAA
	options.Alpha = alpha
	options.Concurrency = concurrency
	if err := options.Validate(); err != nil {
		return diffimage.Options{}, err
	}
	return options, nil
}

func (w *Worker) Process(ctx context.Context, baseline string, target string) (*Output, error) {
	var baselineResult *capture.CaptureResult
	var targetResult *capture.CaptureResult

	{
		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			result, err := w.Capturer.Capture(ctx, baseline, w.CaptureOptions)
			if err != nil {
				return xerrors.Errorf("failed to capture baseline screenshot: %w", err)
			}
			baselineResult = result
			return nil
		})
		eg.Go(func() error {
			result, err := w.Capturer.Capture(ctx, target, w.CaptureOptions)
			if err != nil {
				return xerrors.Errorf("failed to capture target screenshot: %w", err)
			}
			targetResult = result
			return nil
		})
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}
	w.logger().DebugContext(ctx, "captured", "baseline", baseline, "target", target)

	a, b, err := imageio.DecodePair(baselineResult.Screenshot, targetResult.Screenshot)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode screenshots: %w", err)
	}
	result, err := diffimage.Diff(a.Pix, b.Pix, a.Width, a.Height, w.Options)
	if err != nil {
		return nil, xerrors.Errorf("failed to generate diff: %w", err)
	}
	format := w.DiffFormat
	if format == "" {
		format = imageio.FormatPNG
	}
	diffData, err := imageio.EncodeBytes(&imageio.Raster{
		Pix:    result.Output,
		Width:  result.Width,
		Height: result.Height,
	}, format)
	if err != nil {
		return nil, xerrors.Errorf("failed to encode diff: %w", err)
	}

	output := &Output{
		DiffCount:   result.DiffCount,
		TotalPixels: result.TotalPixels(),
		DiffAmount:  result.DiffAmount(),
		Regions:     result.Regions(),
	}

	timestamp := w.clock().Format("20060102150405")
	{
		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			url, err := w.Storage.Put(ctx, w.key("capture", baseline, timestamp, "png"), baselineResult.Screenshot)
			if err != nil {
				return xerrors.Errorf("failed to upload baseline screenshot: %w", err)
			}
			output.BaselineURL = url
			return nil
		})
		eg.Go(func() error {
			url, err := w.Storage.Put(ctx, w.key("capture", target, timestamp, "png"), targetResult.Screenshot)
			if err != nil {
				return xerrors.Errorf("failed to upload target screenshot: %w", err)
			}
			output.TargetURL = url
			return nil
		})
		eg.Go(func() error {
			url, err := w.Storage.Put(ctx, w.key("diff", baseline+target, timestamp, string(format)), diffData)
			if err != nil {
				return xerrors.Errorf("failed to upload diff image: %w", err)
			}
			output.DiffURL = url
			return nil
		})
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	w.logger().InfoContext(ctx, "processed snapshot", "diffCount", output.DiffCount, "diffURL", output.DiffURL)
	return output, nil
}

// key lays artifacts out as <prefix>/snapshot/<kind>/<hash of source>/<timestamp>.<ext>.
func (w *Worker) key(kind string, source string, timestamp string, ext string) string {
	h := sha256.Sum256([]byte(source))
	return path.Join(w.Prefix, "snapshot", kind, hex.EncodeToString(h[:])[:16], fmt.Sprintf("%s.%s", timestamp, ext))
}

func (w *Worker) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
