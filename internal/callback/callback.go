// Package callback delivers JSON results to a caller-supplied URL.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/xerrors"

	"pixeldiff/internal/retry"
)

var ErrStatus = errors.New("callback rejected")

type Client struct {
	HTTPClient *http.Client
	Method     string
}

// NewClient retries gateway errors and connection failures with
// exponential backoff, bounded by timeout overall.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &retry.Transport{
				Base:          http.DefaultTransport,
				RetryStrategy: retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
				RetryOn:       retry.NewDefaultRetryOn(),
			},
		},
		Method: http.MethodPatch,
	}
}

// Send encodes v as JSON and delivers it to url. Any non-2xx answer that
// survives the retries is an error.
func (c *Client) Send(ctx context.Context, url string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return xerrors.Errorf("failed to marshal callback body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, c.Method, url, bytes.NewReader(data))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.HTTPClient.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return xerrors.Errorf("%s %s: %d: %w", c.Method, url, response.StatusCode, ErrStatus)
	}
	return nil
}
