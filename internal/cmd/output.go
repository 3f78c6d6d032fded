package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	diffimage "pixeldiff/internal/diff/image"
)

// ExitError signals a non-zero exit code without printing an error message.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// Result is the record printed for every run, successful or not.
type Result struct {
	Success        bool                  `json:"success"`
	DiffCount      uint32                `json:"diff_count"`
	TotalPixels    int                   `json:"total_pixels"`
	DiffPercentage float64               `json:"diff_percentage"`
	OutputPath     *string               `json:"output_path"`
	Error          *string               `json:"error"`
	Regions        []diffimage.Rectangle `json:"regions,omitempty"`

	width  int
	height int
}

func failure(format string, args ...any) *Result {
	msg := fmt.Sprintf(format, args...)
	return &Result{
		Error: &msg,
	}
}

func jsonPrint(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func humanPrint(stdout io.Writer, stderr io.Writer, r *Result) {
	if !r.Success {
		fmt.Fprintf(stderr, "Error: %s\n", *r.Error)
		return
	}

	fmt.Fprintln(stdout, "Diff completed successfully!")
	fmt.Fprintf(stdout, "Image dimensions: %dx%d\n", r.width, r.height)
	fmt.Fprintf(stdout, "Different pixels: %d\n", r.DiffCount)
	fmt.Fprintf(stdout, "Total pixels: %d\n", r.TotalPixels)
	fmt.Fprintf(stdout, "Difference percentage: %.2f%%\n", r.DiffPercentage)
	for _, region := range r.Regions {
		fmt.Fprintf(stdout, "Region: %dx%d at (%d,%d)\n", region.Width, region.Height, region.X, region.Y)
	}
	if r.OutputPath != nil {
		fmt.Fprintf(stdout, "Output saved to: %s\n", *r.OutputPath)
	}
}
