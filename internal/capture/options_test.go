package capture

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCaptureOptions(t *testing.T) {
	type in struct {
		headers       []string
		maskSelectors string
	}

	tests := []struct {
		name string
		in   in
		want CaptureOptions
	}{
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{nil, ""},
			CaptureOptions{},
		},
		{
			func() string {
				_, _, line, _ := runtime.Caller(1)
				return fmt.Sprintf("L%d", line)
			}(),
			in{
				[]string{"Authorization: Bearer a:b", "broken", ": empty"},
				" .clock, #ads ,,",
			},
			CaptureOptions{
				Headers:       map[string]string{"Authorization": "Bearer a:b"},
				MaskSelectors: []string{".clock", "#ads"},
			},
		},
	}
	for _, tt := range tests {
		name := tt.name
		in := tt.in
		want := tt.want
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := NewCaptureOptions(in.headers, in.maskSelectors)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
