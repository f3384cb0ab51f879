package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/pkg/httpclient"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

// sitemapFetcher reads Google News sitemap sources, following sitemap
// indexes one level at a time and skipping URLs it has already visited.
type sitemapFetcher struct {
	client httpclient.Client
}

// NewSitemapFetcher builds a fetcher for Google News sitemap sources.
func NewSitemapFetcher(client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &sitemapFetcher{client: client}
}

func (f *sitemapFetcher) Type() string {
	return sources.TypeSitemap
}

// Fetch retrieves records from a Google News sitemap source.
func (f *sitemapFetcher) Fetch(ctx context.Context, src sources.Source) ([]domain.RawRecord, error) {
	if !strings.EqualFold(src.Type, sources.TypeSitemap) {
		return nil, fmt.Errorf("sitemap fetcher received incompatible source type %q", src.Type)
	}

	urls, err := f.fetchSitemapURLs(ctx, src, src.URL, nil)
	if err != nil {
		return nil, err
	}

	records := buildRecordsFromSitemap(src, urls)
	if len(records) == 0 {
		return nil, fmt.Errorf("%s sitemap returned no records", src.ID)
	}
	return records, nil
}

// fetchSitemapURLs resolves the given sitemap URL into article entries,
// following sitemap indexes if necessary.
func (f *sitemapFetcher) fetchSitemapURLs(ctx context.Context, src sources.Source, url string, visited map[string]struct{}) ([]sitemapURL, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[url]; seen {
		return nil, nil
	}
	visited[url] = struct{}{}

	raw, err := fetchBody(ctx, f.client, url, src.ID, src.Headers)
	if err != nil {
		return nil, err
	}

	urls, err := parseNewsSitemap(raw)
	if err != nil {
		return nil, fmt.Errorf("decode google news sitemap: %w", err)
	}
	if len(urls) > 0 {
		return urls, nil
	}

	indexURLs, err := parseSitemapIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("decode sitemap index: %w", err)
	}
	if len(indexURLs) == 0 {
		return nil, nil
	}

	var all []sitemapURL
	for _, indexURL := range indexURLs {
		indexURL = strings.TrimSpace(indexURL)
		if indexURL == "" {
			continue
		}

		nested, err := f.fetchSitemapURLs(ctx, src, indexURL, visited)
		if err != nil {
			return nil, err
		}
		all = append(all, nested...)
	}
	return all, nil
}

type newsSitemap struct {
	URLs []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc    string         `xml:"loc"`
	News   sitemapDetail  `xml:"news"`
	Images []sitemapImage `xml:"image:image"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

type sitemapDetail struct {
	PublicationDate string `xml:"publication_date"`
	Title           string `xml:"title"`
}

type sitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title"`
}

// parseNewsSitemap parses the XML data into sitemap URL entries.
func parseNewsSitemap(data []byte) ([]sitemapURL, error) {
	var sitemap newsSitemap
	if err := xml.Unmarshal(data, &sitemap); err != nil {
		return nil, err
	}
	return sitemap.URLs, nil
}

// parseSitemapIndex parses an XML sitemap index file and returns the nested
// sitemap URLs.
func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// buildRecordsFromSitemap constructs raw records from parsed sitemap URLs.
func buildRecordsFromSitemap(src sources.Source, urls []sitemapURL) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(urls))
	for _, entry := range urls {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}

		records = append(records, domain.RawRecord{
			SourceID:   src.ID,
			SourceName: src.Name,
			Title:      strings.TrimSpace(entry.News.Title),
			Link:       loc,
			ImageURL:   firstImageURL(entry.Images),
			Published:  strings.TrimSpace(entry.News.PublicationDate),
		})
	}
	return records
}

// firstImageURL returns the first non-empty image URL from the list.
func firstImageURL(images []sitemapImage) string {
	for _, img := range images {
		if loc := strings.TrimSpace(img.Loc); loc != "" {
			return loc
		}
	}
	return ""
}
