package image

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func maskOf(rows ...string) ([]bool, int, int) {
	if len(rows) == 0 {
		return nil, 0, 0
	}
	width := len(rows[0])
	mask := make([]bool, 0, width*len(rows))
	for _, row := range rows {
		for _, c := range row {
			mask = append(mask, c == '#')
		}
	}
	return mask, width, len(rows)
}

func TestFindRegions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []Rectangle
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			[]string{
				"....",
				"....",
			},
			nil,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			[]string{
				"....",
				".#..",
				"....",
			},
			[]Rectangle{{X: 1, Y: 1, Width: 1, Height: 1}},
		},
		{
			// diagonal neighbors belong to the same cluster
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			[]string{
				"#...",
				".#..",
				"..##",
			},
			[]Rectangle{{X: 0, Y: 0, Width: 4, Height: 3}},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			[]string{
				"#......................#",
			},
			[]Rectangle{
				{X: 0, Y: 0, Width: 1, Height: 1},
				{X: 23, Y: 0, Width: 1, Height: 1},
			},
		},
		{
			// clusters closer than the merge distance are reported together
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			[]string{
				"##.......##",
				"##.......##",
			},
			[]Rectangle{{X: 0, Y: 0, Width: 11, Height: 2}},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mask, width, height := maskOf(in...)
			got := findRegions(mask, width, height)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestRectangle(t *testing.T) {
	a := Rectangle{X: 0, Y: 0, Width: 2, Height: 2}
	b := Rectangle{X: 2, Y: 0, Width: 2, Height: 2}
	c := Rectangle{X: 1, Y: 1, Width: 2, Height: 2}

	if a.overlaps(b) {
		t.Errorf("Expected adjacent rectangles not to overlap")
	}
	if !a.overlaps(c) {
		t.Errorf("Expected rectangles to overlap")
	}
	if !a.close(b, 1) {
		t.Errorf("Expected adjacent rectangles to be close")
	}
	if diff := cmp.Diff(Rectangle{X: 0, Y: 0, Width: 4, Height: 2}, a.union(b)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Rectangle{X: -1, Y: -1, Width: 4, Height: 4}, a.grow(1)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
