package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/pkg/httpclient"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

// newsAPIFetcher reads JSON article APIs that return an array of records
// under a "results" or "articles" key, authenticated by an API-key query
// parameter. Covers newsdata.io and newsapi.org response shapes.
type newsAPIFetcher struct {
	client httpclient.Client
}

// NewNewsAPIFetcher builds a fetcher for JSON news API sources.
func NewNewsAPIFetcher(client httpclient.Client) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &newsAPIFetcher{client: client}
}

func (f *newsAPIFetcher) Type() string {
	return sources.TypeNewsAPI
}

// apiResponse covers both observed provider envelopes.
type apiResponse struct {
	Results  []apiRecord `json:"results"`
	Articles []apiRecord `json:"articles"`
}

// apiRecord covers both observed field namings; the first non-empty
// candidate wins during mapping.
type apiRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Link        string `json:"link"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	URLToImage  string `json:"urlToImage"`
	PubDate     string `json:"pubDate"`
	PublishedAt string `json:"publishedAt"`
	SourceID    string `json:"source_id"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Fetch queries the API and maps the response records.
func (f *newsAPIFetcher) Fetch(ctx context.Context, src sources.Source) ([]domain.RawRecord, error) {
	if !strings.EqualFold(src.Type, sources.TypeNewsAPI) {
		return nil, fmt.Errorf("newsapi fetcher received incompatible source type %q", src.Type)
	}

	endpoint, err := buildAPIURL(src)
	if err != nil {
		return nil, fmt.Errorf("build %s url: %w", src.ID, err)
	}

	raw, err := fetchBody(ctx, f.client, endpoint, src.ID, src.Headers)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", src.ID, err)
	}

	items := resp.Results
	if len(items) == 0 {
		items = resp.Articles
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s API returned no records", src.ID)
	}

	records := make([]domain.RawRecord, 0, len(items))
	for _, it := range items {
		records = append(records, domain.RawRecord{
			SourceID:    src.ID,
			SourceName:  src.Name,
			Title:       it.Title,
			Description: it.Description,
			Content:     it.Content,
			Link:        firstNonEmpty(it.Link, it.URL),
			ImageURL:    firstNonEmpty(it.ImageURL, it.URLToImage),
			Published:   firstNonEmpty(it.PubDate, it.PublishedAt),
		})
	}
	return records, nil
}

// buildAPIURL appends the API key and optional query to the source URL.
func buildAPIURL(src sources.Source) (string, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("apikey", src.APIKey)
	if src.Query != "" {
		q.Set("q", src.Query)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
