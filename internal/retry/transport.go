package retry

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/xerrors"
)

// maxDrain bounds how much of a discarded response body is read so the
// connection can be reused.
const maxDrain = 64 << 10

// Transport retries requests according to RetryOn and RetryStrategy. Requests
// with a body are only retried when their GetBody is set, as it is for the
// bodies accepted by http.NewRequest.
type Transport struct {
	Base          http.RoundTripper
	RetryStrategy Strategy
	RetryOn       *On
	Logger        *slog.Logger
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()

	for n := uint(0); ; n++ {
		response, err := t.base().RoundTrip(request)

		retriable := t.RetryOn != nil && ((err != nil && t.RetryOn.CheckError(err)) || (err == nil && t.RetryOn.CheckResponse(response)))
		if !retriable || (request.Body != nil && request.GetBody == nil) {
			return response, err
		}
		sleep, done := t.retryStrategy().Sleep(n)
		if done {
			return response, err
		}

		if err == nil {
			sleep = max(sleep, retryAfter(response))
			if response.Body != nil {
				_, _ = io.CopyN(io.Discard, response.Body, maxDrain)
				_ = response.Body.Close()
			}
		}
		t.logger().DebugContext(ctx, "retrying request", "url", request.URL.String(), "attempt", n+1, "sleep", sleep, "error", err)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if request.GetBody != nil {
			body, err := request.GetBody()
			if err != nil {
				return nil, xerrors.Errorf("failed to rewind request body: %w", err)
			}
			request = request.Clone(ctx)
			request.Body = body
		}
	}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(response *http.Response) time.Duration {
	seconds, err := strconv.Atoi(response.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) retryStrategy() Strategy {
	if t.RetryStrategy != nil {
		return t.RetryStrategy
	}
	return NewNever()
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
