package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/pkg/httpclient"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

// rssFetcher reads RSS/Atom feeds through gofeed.
type rssFetcher struct {
	client httpclient.Client
	parser *gofeed.Parser
}

// NewRSSFetcher builds a fetcher for RSS/Atom sources.
func NewRSSFetcher(client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &rssFetcher{
		client: client,
		parser: gofeed.NewParser(),
	}
}

func (f *rssFetcher) Type() string {
	return sources.TypeRSS
}

// Fetch downloads and parses the feed, mapping each entry to a raw record.
func (f *rssFetcher) Fetch(ctx context.Context, src sources.Source) ([]domain.RawRecord, error) {
	if !strings.EqualFold(src.Type, sources.TypeRSS) {
		return nil, fmt.Errorf("rss fetcher received incompatible source type %q", src.Type)
	}

	raw, err := fetchBody(ctx, f.client, src.URL, src.ID, src.Headers)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", src.ID, err)
	}

	records := make([]domain.RawRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		rec := domain.RawRecord{
			SourceID:    src.ID,
			SourceName:  src.Name,
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			Link:        item.Link,
			Published:   item.Published,
		}
		if item.PublishedParsed != nil {
			rec.Published = item.PublishedParsed.Format("2006-01-02T15:04:05Z07:00")
		}
		if item.Image != nil {
			rec.ImageURL = item.Image.URL
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s feed returned no records", src.ID)
	}
	return records, nil
}
