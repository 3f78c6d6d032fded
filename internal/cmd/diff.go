package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pixeldiff/internal/callback"
	diffimage "pixeldiff/internal/diff/image"
	"pixeldiff/internal/imageio"
	"pixeldiff/internal/runnable"
	"pixeldiff/internal/storage"
)

func runDiff(cmd *cobra.Command, f *flags, image1 string, image2 string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if f.debug {
		l, err := runnable.NewLogger(cmd.ErrOrStderr(), true)
		if err != nil {
			return err
		}
		logger = l
	}

	result := compare(ctx, logger, f, image1, image2)

	var err error
	if f.callbackURL != "" {
		if cerr := callback.NewClient(f.callbackTimeout).Send(ctx, f.callbackURL, result); cerr != nil {
			logger.Error("failed to send callback", "error", cerr)
			err = cerr
		}
	}

	if rerr := report(cmd, f, result); rerr != nil && err == nil {
		return rerr
	}
	return err
}

// report prints result and turns an unsuccessful one into exit status 1.
func report(cmd *cobra.Command, f *flags, result *Result) error {
	cmd.SilenceUsage = true
	if f.jsonOutput {
		if perr := jsonPrint(cmd.OutOrStdout(), result); perr != nil {
			return perr
		}
	} else {
		humanPrint(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)
	}

	if !result.Success {
		return &ExitError{Code: 1}
	}
	return nil
}

// compare never fails; every error becomes a failure record.
func compare(ctx context.Context, logger *slog.Logger, f *flags, image1 string, image2 string) *Result {
	for i, path := range []string{image1, image2} {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return failure("Image %d does not exist: %s", i+1, path)
		}
	}

	options := diffimage.DefaultOptions()
	options.Threshold = f.threshold
	options.IncludeAA = f.includeAA
	options.Alpha = f.alpha
	options.Concurrency = f.concurrency
	if err := options.Validate(); err != nil {
		return failure("%v", err)
	}

	a, err := imageio.DecodeFile(image1)
	if err != nil {
		return failure("Failed to load image 1: %v", err)
	}
	b, err := imageio.DecodeFile(image2)
	if err != nil {
		return failure("Failed to load image 2: %v", err)
	}
	if a.Width != b.Width || a.Height != b.Height {
		return failure("Image dimensions do not match: %dx%d vs %dx%d", a.Width, a.Height, b.Width, b.Height)
	}
	logger.Debug("decoded images", "width", a.Width, "height", a.Height)

	diff, err := diffimage.Diff(a.Pix, b.Pix, a.Width, a.Height, options)
	if err != nil {
		return failure("%v", err)
	}
	logger.Debug("compared images", "diffCount", diff.DiffCount)

	result := &Result{
		Success:        true,
		DiffCount:      diff.DiffCount,
		TotalPixels:    diff.TotalPixels(),
		DiffPercentage: diff.DiffAmount() * 100,
		Regions:        diff.Regions(),
		width:          diff.Width,
		height:         diff.Height,
	}

	if f.output != "" {
		location, err := save(ctx, f.output, &imageio.Raster{
			Pix:    diff.Output,
			Width:  diff.Width,
			Height: diff.Height,
		})
		if err != nil {
			return failure("Failed to save output: %v", err)
		}
		result.OutputPath = &location
	}
	return result
}

// save encodes r by the extension of output and writes it through the
// storage backend that owns the directory of output.
func save(ctx context.Context, output string, r *imageio.Raster) (string, error) {
	data, err := imageio.EncodeBytes(r, imageio.FormatFromPath(output))
	if err != nil {
		return "", err
	}

	dir, name := filepath.Dir(output), filepath.Base(output)
	if rest, ok := strings.CutPrefix(output, "s3://"); ok {
		i := strings.LastIndex(rest, "/")
		if i < 0 || i == len(rest)-1 {
			return "", fmt.Errorf("missing object key in %q", output)
		}
		dir, name = "s3://"+rest[:i], rest[i+1:]
	}
	s, err := storage.ForURL(ctx, dir)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, name, data)
}
