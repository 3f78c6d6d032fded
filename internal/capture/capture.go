package capture

import (
	"context"
)

type CaptureOptions struct {
	// Headers are sent with every request the page makes.
	Headers map[string]string
	// MaskSelectors are painted over before the screenshot is taken.
	MaskSelectors []string
}

type CaptureResult struct {
	Screenshot []byte
}

type Capturer interface {
	Capture(ctx context.Context, url string, options CaptureOptions) (*CaptureResult, error)
	Close() error
}
