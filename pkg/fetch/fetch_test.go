package fetch

import (
	"context"
	"fmt"
	"testing"

	"github.com/postsmith-hq/postsmith/pkg/httpclient"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

// fakeResponse implements httpclient.Response from fixed values.
type fakeResponse struct {
	status int
	body   string
}

func (r *fakeResponse) StatusCode() int           { return r.status }
func (r *fakeResponse) Body() []byte              { return []byte(r.body) }
func (r *fakeResponse) Header(name string) string { return "" }

// fakeClient serves canned responses keyed by URL.
type fakeClient struct {
	responses map[string]*fakeResponse
	calls     []string
}

func (c *fakeClient) Get(ctx context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	c.calls = append(c.calls, url)
	if resp, ok := c.responses[url]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("no route for %s", url)
}

func TestRegistryResolvesByType(t *testing.T) {
	reg := DefaultRegistry(&fakeClient{})

	for _, typ := range []string{sources.TypeRSS, sources.TypeNewsAPI, sources.TypeSitemap} {
		src := sources.Source{ID: "s", Type: typ, URL: "https://example.com"}
		f, err := reg.FetcherFor(src)
		if err != nil {
			t.Fatalf("FetcherFor(%s): %v", typ, err)
		}
		if f.Type() != typ {
			t.Errorf("fetcher type = %s, want %s", f.Type(), typ)
		}
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	reg := DefaultRegistry(&fakeClient{})

	if _, err := reg.FetcherFor(sources.Source{ID: "s", Type: "scrape"}); err == nil {
		t.Error("FetcherFor accepted unknown type")
	}
	if _, err := reg.FetcherFor(sources.Source{ID: "s"}); err == nil {
		t.Error("FetcherFor accepted empty type")
	}
}

func TestFetchBodyRejectsNon200(t *testing.T) {
	client := &fakeClient{responses: map[string]*fakeResponse{
		"https://example.com/feed": {status: 503, body: "upstream down"},
	}}

	_, err := fetchBody(context.Background(), client, "https://example.com/feed", "src", nil)
	if err == nil {
		t.Fatal("fetchBody accepted status 503")
	}
}
