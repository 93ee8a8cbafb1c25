package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/orgball2608/insta-archive/pkg/retry"
	"github.com/valyala/fasthttp"
)

// Fetcher downloads remote media.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type HTTPFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
	retry   retry.Config
	logger  logger.Logger
}

func NewHTTPFetcher(logger logger.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			ReadBufferSize:      16 * 1024,
			MaxConnsPerHost:     64,
			MaxResponseBodySize: 100 << 20,
		},
		timeout: time.Minute,
		retry:   retry.DefaultConfig(),
		logger:  logger.WithComponent("MediaFetcher"),
	}
}

var _ Fetcher = (*HTTPFetcher)(nil)

const maxRedirects = 5

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return retry.DoValue(ctx, f.logger, "download media", func() ([]byte, error) {
		return f.fetchOnce(ctx, url)
	}, f.retry)
}

// deadline bounds one attempt by the fetcher timeout and the context deadline, whichever
// comes first.
func (f *HTTPFetcher) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(f.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, retry.Permanent(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := f.deadline(ctx)
	for redirects := 0; ; redirects++ {
		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			if errors.Is(err, fasthttp.ErrTimeout) && ctx.Err() != nil {
				return nil, retry.Permanent(fmt.Errorf("request error: %w", ctx.Err()))
			}
			return nil, fmt.Errorf("request error: %w", err)
		}

		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			break
		}
		if redirects == maxRedirects {
			return nil, retry.Permanent(fasthttp.ErrTooManyRedirects)
		}
		location := resp.Header.Peek(fasthttp.HeaderLocation)
		if len(location) == 0 {
			return nil, retry.Permanent(fasthttp.ErrMissingLocation)
		}
		req.URI().UpdateBytes(location)
		req.SetRequestURI(req.URI().String())
		resp.Reset()
	}

	status := resp.StatusCode()
	switch {
	case status >= 500 || status == fasthttp.StatusTooManyRequests:
		return nil, fmt.Errorf("unexpected status %d", status)
	case status != fasthttp.StatusOK:
		return nil, retry.Permanent(fmt.Errorf("unexpected status %d", status))
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	// The response buffer goes back to the pool on release.
	return append([]byte(nil), body...), nil
}
