package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response the pipeline consumes.
type Response interface {
	StatusCode() int
	Body() []byte
	Header(name string) string
}

// Client issues GET requests with per-request headers and a hard timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

const defaultUserAgent = "postsmith/1.0 (+https://github.com/postsmith-hq/postsmith)"

// restyClient implements Client using resty.
type restyClient struct {
	c *resty.Client
}

// NewRestyClient builds a Client with the given hard timeout applied to
// every request.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", defaultUserAgent)
	return &restyClient{c: c}
}

// Get performs the request and returns the raw response. Transport errors
// and timeouts surface as errors; non-2xx statuses do not, callers decide.
func (r *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.c.R().SetContext(ctx)
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("http get %s: %w", url, err)
	}
	return &restyResponse{r: resp}, nil
}

// restyResponse adapts *resty.Response to the Response interface.
type restyResponse struct {
	r *resty.Response
}

func (r *restyResponse) StatusCode() int           { return r.r.StatusCode() }
func (r *restyResponse) Body() []byte              { return r.r.Body() }
func (r *restyResponse) Header(name string) string { return r.r.Header().Get(name) }
