package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pixeldiff/internal/capture"
	diffimage "pixeldiff/internal/diff/image"
	"pixeldiff/internal/imageio"
	"pixeldiff/internal/storage"
)

type fakeCapturer struct {
	mu       sync.Mutex
	pages    map[string][]byte
	requests []capture.CaptureOptions
}

func (f *fakeCapturer) Capture(ctx context.Context, url string, options capture.CaptureOptions) (*capture.CaptureResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, options)

	data, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return &capture.CaptureResult{Screenshot: data}, nil
}

func (f *fakeCapturer) Close() error {
	return nil
}

func page(t *testing.T, width int, height int, dirty int) []byte {
	t.Helper()
	r := &imageio.Raster{Pix: make([]byte, width*height*4), Width: width, Height: height}
	for i := range r.Pix {
		r.Pix[i] = 255
	}
	for i := 0; i < dirty; i++ {
		r.Pix[i*4], r.Pix[i*4+1], r.Pix[i*4+2] = 0, 0, 0
	}
	data, err := imageio.EncodeBytes(r, imageio.FormatPNG)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return data
}

func newTestWorker(t *testing.T, capturer capture.Capturer) (*Worker, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewFileStorage(context.Background(), storage.FileConfig{Directory: dir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return &Worker{
		Capturer:       capturer,
		Storage:        s,
		Prefix:         "runs",
		Options:        diffimage.DefaultOptions(),
		CaptureOptions: capture.CaptureOptions{MaskSelectors: []string{".clock"}},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		},
	}, dir
}

func TestProcess(t *testing.T) {
	capturer := &fakeCapturer{pages: map[string][]byte{
		"https://example.com/a": page(t, 8, 4, 0),
		"https://example.com/b": page(t, 8, 4, 1),
	}}
	w, dir := newTestWorker(t, capturer)

	output, err := w.Process(context.Background(), "https://example.com/a", "https://example.com/b")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := cmp.Diff(uint32(1), output.DiffCount); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(32, output.TotalPixels); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]diffimage.Rectangle{{X: 0, Y: 0, Width: 1, Height: 1}}, output.Regions); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	for _, url := range []string{output.BaselineURL, output.TargetURL, output.DiffURL} {
		if !strings.HasPrefix(url, filepath.Join(dir, "runs", "snapshot")) {
			t.Errorf("Expected %s under the storage prefix", url)
		}
		if !strings.HasSuffix(url, "20240102030405.png") {
			t.Errorf("Expected %s to be named after the timestamp", url)
		}
		if _, err := os.Stat(url); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	}

	stored, err := imageio.DecodeFile(output.DiffURL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff([]byte{255, 0, 255, 255}, stored.Pix[:4]); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	for _, options := range capturer.requests {
		if diff := cmp.Diff([]string{".clock"}, options.MaskSelectors); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	}
}

func TestProcess_Errors(t *testing.T) {
	t.Run("CaptureFailure", func(t *testing.T) {
		w, _ := newTestWorker(t, &fakeCapturer{pages: map[string][]byte{
			"a": page(t, 2, 2, 0),
		}})
		if _, err := w.Process(context.Background(), "a", "missing"); err == nil {
			t.Errorf("Expected an error")
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		w, _ := newTestWorker(t, &fakeCapturer{pages: map[string][]byte{
			"a": page(t, 2, 2, 0),
			"b": page(t, 2, 3, 0),
		}})
		_, err := w.Process(context.Background(), "a", "b")
		if !errors.Is(err, imageio.ErrDimensionMismatch) {
			t.Errorf("Expected ErrDimensionMismatch, got %v", err)
		}
	})
}

func TestNewOptions(t *testing.T) {
	t.Run("KeepsMarkerColors", func(t *testing.T) {
		options, err := NewOptions(0.2, true, 0.5, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		want := diffimage.DefaultOptions()
		want.Threshold = 0.2
		want.IncludeAA = true
		want.Alpha = 0.5
		want.Concurrency = 2
		if diff := cmp.Diff(want, options); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("UploadedDiffIsMagenta", func(t *testing.T) {
		capturer := &fakeCapturer{pages: map[string][]byte{
			"a": page(t, 4, 4, 0),
			"b": page(t, 4, 4, 1),
		}}
		w, _ := newTestWorker(t, capturer)
		options, err := NewOptions(0.1, false, 0.1, 0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		w.Options = options

		output, err := w.Process(context.Background(), "a", "b")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		stored, err := imageio.DecodeFile(output.DiffURL)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff([]byte{255, 0, 255, 255}, stored.Pix[:4]); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if _, err := NewOptions(1.5, false, 0.1, 0); !errors.Is(err, diffimage.ErrInvalidOptions) {
			t.Errorf("Expected ErrInvalidOptions, got %v", err)
		}
	})
}
