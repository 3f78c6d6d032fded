package image

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/xerrors"
)

// DiffResult is the raw outcome of comparing two RGBA8 buffers.
type DiffResult struct {
	// DiffCount is the number of pixels that differ beyond the threshold and
	// were not classified as anti-aliasing.
	DiffCount uint32
	// Output is the rendered diff, width*height*4 bytes of RGBA8.
	Output []byte
	Width  int
	Height int

	mask []bool
}

// Diff compares two row-major RGBA8 buffers of the same size. Both buffers
// must be exactly width*height*4 bytes long; they are never modified.
func Diff(a []byte, b []byte, width int, height int, opts Options) (*DiffResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if width < 0 || height < 0 {
		return nil, xerrors.Errorf("negative dimensions %dx%d: %w", width, height, ErrBufferSize)
	}
	size := width * height * 4
	if len(a) != size {
		return nil, xerrors.Errorf("image 1 has %d bytes, want %d for %dx%d: %w", len(a), size, width, height, ErrBufferSize)
	}
	if len(b) != size {
		return nil, xerrors.Errorf("image 2 has %d bytes, want %d for %dx%d: %w", len(b), size, width, height, ErrBufferSize)
	}

	result := &DiffResult{
		Output: make([]byte, size),
		Width:  width,
		Height: height,
		mask:   make([]bool, width*height),
	}
	if size == 0 {
		return result, nil
	}

	s := &scanner{
		a:         a,
		b:         b,
		width:     width,
		height:    height,
		maxDelta:  maxDelta(opts.Threshold),
		includeAA: opts.IncludeAA,
		gate:      newLumaGate(opts.Threshold, opts.DisableLumaGate),
		batched:   !opts.DisableBatching,
	}

	// Use GOMAXPROCS instead of runtime.NumCPU() to consider cgroup.
	numWorkers := opts.Concurrency
	if numWorkers == 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	numWorkers = max(min(numWorkers, height), 1)

	rowsPerWorker := height / numWorkers

	var diffCount int64
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 {
			endY = height
		}

		go func(startY int, endY int) {
			defer wg.Done()

			c := &compositor{
				out:       result.Output,
				alpha:     opts.Alpha,
				aaColor:   opts.AAColor,
				diffColor: opts.DiffColor,
				mask:      result.mask,
			}
			s.scanRows(c, startY, endY)
			atomic.AddInt64(&diffCount, int64(c.count))
		}(startY, endY)
	}

	wg.Wait()

	result.DiffCount = uint32(diffCount)
	return result, nil
}

// TotalPixels is width*height.
func (r *DiffResult) TotalPixels() int {
	return r.Width * r.Height
}

// DiffAmount is the fraction of pixels counted as different, in [0,1].
func (r *DiffResult) DiffAmount() float64 {
	total := r.TotalPixels()
	if total == 0 {
		return 0.0
	}
	return float64(r.DiffCount) / float64(total)
}

// Regions groups the pixels counted as different into bounding rectangles.
func (r *DiffResult) Regions() []Rectangle {
	return findRegions(r.mask, r.Width, r.Height)
}
