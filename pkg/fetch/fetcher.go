package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/pkg/httpclient"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

// Fetcher retrieves raw records from one kind of source.
type Fetcher interface {
	Type() string
	Fetch(ctx context.Context, src sources.Source) ([]domain.RawRecord, error)
}

// Registry resolves the fetcher for a source by its declared type.
type Registry interface {
	FetcherFor(src sources.Source) (Fetcher, error)
}

type fetcherRegistry struct {
	fetchers map[string]Fetcher
	mu       sync.RWMutex
}

// NewRegistry builds a registry for the provided fetcher implementations.
func NewRegistry(fetchers ...Fetcher) Registry {
	reg := &fetcherRegistry{
		fetchers: make(map[string]Fetcher, len(fetchers)),
	}

	for _, f := range fetchers {
		if f == nil {
			continue
		}
		reg.fetchers[strings.ToLower(strings.TrimSpace(f.Type()))] = f
	}

	return reg
}

// FetcherFor selects the fetcher for the given source based on its type.
func (r *fetcherRegistry) FetcherFor(src sources.Source) (Fetcher, error) {
	if src.Type == "" {
		return nil, fmt.Errorf("source %q has no type configured", src.ID)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.fetchers[strings.ToLower(src.Type)]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no fetcher registered for source type %q", src.Type)
}

// DefaultHTTPClient returns a tuned http client for fetchers.
func DefaultHTTPClient() httpclient.Client { return httpclient.NewRestyClient(15 * time.Second) }

// DefaultRegistry wires up the known source fetchers.
func DefaultRegistry(client httpclient.Client) Registry {
	if client == nil {
		client = DefaultHTTPClient()
	}

	return NewRegistry(
		NewRSSFetcher(client),
		NewNewsAPIFetcher(client),
		NewSitemapFetcher(client),
	)
}

// fetchBody retrieves the raw payload from the given URL, treating any
// non-200 status as a failure.
func fetchBody(ctx context.Context, client httpclient.Client, url, sourceID string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sourceID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", sourceID, resp.StatusCode(), responseSnippet(body))
	}

	return body, nil
}

// responseSnippet returns a truncated snippet of the response body for error
// messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
