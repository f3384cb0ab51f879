package fetch

import (
	"context"
	"testing"

	"github.com/postsmith-hq/postsmith/pkg/sources"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Wire</title>
    <link>https://example.com</link>
    <item>
      <title>OpenAI ships new agent</title>
      <link>https://example.com/openai-agents</link>
      <description>A managed agent platform for enterprises.</description>
      <pubDate>Sat, 30 Aug 2025 14:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Chipmaker reports record quarter</title>
      <link>https://example.com/chips</link>
      <description>Revenue grew on data center demand.</description>
    </item>
  </channel>
</rss>`

func rssSource() sources.Source {
	return sources.Source{
		ID:   "wire",
		Name: "Example Wire",
		Type: sources.TypeRSS,
		URL:  "https://example.com/rss",
	}
}

func TestRSSFetch(t *testing.T) {
	client := &fakeClient{responses: map[string]*fakeResponse{
		"https://example.com/rss": {status: 200, body: rssFixture},
	}}
	f := NewRSSFetcher(client)

	recs, err := f.Fetch(context.Background(), rssSource())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}

	first := recs[0]
	if first.SourceID != "wire" || first.SourceName != "Example Wire" {
		t.Errorf("source fields = %q/%q", first.SourceID, first.SourceName)
	}
	if first.Title != "OpenAI ships new agent" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Link != "https://example.com/openai-agents" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.Published != "2025-08-30T14:30:00Z" {
		t.Errorf("Published = %q", first.Published)
	}

	if recs[1].Published != "" {
		t.Errorf("second Published = %q, want empty", recs[1].Published)
	}
}

func TestRSSFetchWrongSourceType(t *testing.T) {
	f := NewRSSFetcher(&fakeClient{})

	src := rssSource()
	src.Type = sources.TypeSitemap
	if _, err := f.Fetch(context.Background(), src); err == nil {
		t.Error("Fetch accepted incompatible source type")
	}
}

func TestRSSFetchEmptyFeed(t *testing.T) {
	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`
	client := &fakeClient{responses: map[string]*fakeResponse{
		"https://example.com/rss": {status: 200, body: empty},
	}}
	f := NewRSSFetcher(client)

	if _, err := f.Fetch(context.Background(), rssSource()); err == nil {
		t.Error("Fetch accepted a feed with no items")
	}
}

func TestRSSFetchMalformedFeed(t *testing.T) {
	client := &fakeClient{responses: map[string]*fakeResponse{
		"https://example.com/rss": {status: 200, body: "<html>not a feed</html>"},
	}}
	f := NewRSSFetcher(client)

	if _, err := f.Fetch(context.Background(), rssSource()); err == nil {
		t.Error("Fetch accepted malformed feed content")
	}
}
