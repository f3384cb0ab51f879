package domain

import "time"

// Domain contains the canonical models shared by every pipeline stage.

// RawRecord is the provider-agnostic shape a fetcher produces for one item.
// Fields are carried verbatim from the provider; normalization happens later.
type RawRecord struct {
	SourceID    string
	SourceName  string
	Title       string
	Description string
	Content     string
	Link        string
	ImageURL    string
	Published   string
}

// Article is the canonical representation of one news item after
// normalization. It is immutable once constructed: Title and Link are always
// non-empty, PublishedAt always resolves to a UTC timestamp.
type Article struct {
	Title       string
	Description string
	Body        string
	Link        string
	Source      string
	PublishedAt time.Time
	ImageURL    string
}

// Text returns the combined title, description and body, the surface the
// quality filter and topic classifier match against.
func (a Article) Text() string {
	return a.Title + " " + a.Description + " " + a.Body
}

// Post is the on-disk artifact derived from an accepted Article.
type Post struct {
	Slug     string
	Date     time.Time
	Filename string
	Front    []FrontField
	Body     string
}

// FrontField is a single ordered front-matter entry.
type FrontField struct {
	Key   string
	Value string
}
