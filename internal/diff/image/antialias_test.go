package image

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// lumaGrid is a lumaSource over a literal grid of luma values.
type lumaGrid [][]uint32

func (g lumaGrid) at(x int, y int) uint32 {
	return g[y][x]
}

func TestNewNeighborhood(t *testing.T) {
	type in struct {
		x, y, width, height int
	}

	type want struct {
		first  neighborhood
		second int
	}

	tests := []struct {
		name string
		in   in
		want want
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{2, 2, 5, 5},
			want{
				neighborhood{x0: 1, y0: 1, x1: 3, y1: 3, edge: false},
				0,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{0, 0, 5, 5},
			want{
				neighborhood{x0: 0, y0: 0, x1: 1, y1: 1, edge: true},
				1,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{4, 2, 5, 5},
			want{
				neighborhood{x0: 3, y0: 1, x1: 4, y1: 3, edge: true},
				1,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{0, 0, 1, 1},
			want{
				neighborhood{x0: 0, y0: 0, x1: 0, y1: 0, edge: true},
				1,
			},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{1, 1, 2, 2},
			want{
				neighborhood{x0: 0, y0: 0, x1: 1, y1: 1, edge: true},
				1,
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := newNeighborhood(in.x, in.y, in.width, in.height)
			if diff := cmp.Diff(want.first, got, cmp.AllowUnexported(neighborhood{})); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want.second, got.initialZeroes()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestHasManySiblings(t *testing.T) {
	type in struct {
		grid lumaGrid
		x, y int
	}

	tests := []struct {
		name string
		in   in
		want bool
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{
					{1, 2, 3},
					{4, 5, 6},
					{7, 8, 9},
				},
				1, 1,
			},
			false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{
					{5, 5, 3},
					{4, 5, 6},
					{7, 8, 5},
				},
				1, 1,
			},
			true,
		},
		{
			// an edge pixel needs only two equal neighbors
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{
					{5, 5, 3},
					{5, 1, 6},
					{7, 8, 9},
				},
				0, 0,
			},
			true,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{
					{5, 2, 3},
					{5, 1, 6},
					{7, 8, 9},
				},
				0, 0,
			},
			false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{
					{5},
				},
				0, 0,
			},
			false,
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := hasManySiblings(in.grid, in.x, in.y, len(in.grid[0]), len(in.grid))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestAntialiased(t *testing.T) {
	type in struct {
		a, b lumaGrid
		x, y int
	}

	edge := lumaGrid{
		{0, 0, 128, 255, 255},
		{0, 0, 128, 255, 255},
		{0, 0, 128, 255, 255},
		{0, 0, 128, 255, 255},
		{0, 0, 128, 255, 255},
	}
	edgeChanged := lumaGrid{
		{0, 0, 128, 255, 255},
		{0, 0, 128, 255, 255},
		{0, 0, 200, 255, 255},
		{0, 0, 128, 255, 255},
		{0, 0, 128, 255, 255},
	}
	noise := lumaGrid{
		{10, 20, 30, 40, 50},
		{60, 70, 80, 90, 100},
		{110, 120, 130, 140, 150},
		{160, 170, 180, 190, 200},
		{210, 220, 230, 240, 250},
	}

	tests := []struct {
		name string
		in   in
		want bool
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{edge, edgeChanged, 2, 2},
			true,
		},
		{
			// the extremes must sit in flat areas of both images
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{edge, noise, 2, 2},
			false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{noise, noise, 2, 2},
			false,
		},
		{
			// three equal neighbors end the search early
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{
					{7, 7, 7},
					{0, 7, 255},
					{0, 0, 0},
				},
				lumaGrid{
					{0, 0, 0},
					{0, 0, 0},
					{0, 0, 0},
				},
				1, 1,
			},
			false,
		},
		{
			// a flat neighborhood has no darkest or brightest neighbor
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{{3, 3}},
				lumaGrid{{3, 3}},
				0, 0,
			},
			false,
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				lumaGrid{{9}},
				lumaGrid{{1}},
				0, 0,
			},
			false,
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := antialiased(in.a, in.b, in.x, in.y, len(in.a[0]), len(in.a))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
