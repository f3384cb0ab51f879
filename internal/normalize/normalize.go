package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/postsmith-hq/postsmith/internal/domain"
)

// dateLayouts is the ordered list of accepted publication date formats;
// the first successful parse wins.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Normalizer maps provider records into canonical articles.
type Normalizer struct {
	now func() time.Time
}

// New creates a Normalizer using the real clock.
func New() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewWithClock creates a Normalizer with an injected clock for tests.
func NewWithClock(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize converts one raw record into a canonical Article. A record
// missing a title or link is rejected (ok=false), never an error: absence of
// optional fields degrades to defaults instead.
func (n *Normalizer) Normalize(rec domain.RawRecord) (domain.Article, bool) {
	title := CollapseWhitespace(StripHTML(rec.Title))
	link := strings.TrimSpace(rec.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	source := strings.TrimSpace(rec.SourceName)
	if source == "" {
		source = strings.TrimSpace(rec.SourceID)
	}
	if source == "" {
		source = "source"
	}

	return domain.Article{
		Title:       title,
		Description: CollapseWhitespace(StripHTML(rec.Description)),
		Body:        CollapseLines(StripHTML(rec.Content)),
		Link:        link,
		Source:      source,
		PublishedAt: n.parseTime(rec.Published),
		ImageURL:    strings.TrimSpace(rec.ImageURL),
	}, true
}

// parseTime resolves the raw publication string to a UTC timestamp, falling
// back to "now" rather than propagating a parse error.
func (n *Normalizer) parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return n.now().UTC()
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t.UTC()
	}
	return n.now().UTC()
}

var (
	brRe  = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML removes markup from the given fragment, turning <br> into
// newlines first so line structure survives for the enricher.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = brRe.ReplaceAllString(s, "\n")
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(tagRe.ReplaceAllString(s, " "))
	}
	return strings.TrimSpace(doc.Text())
}

// CollapseWhitespace collapses all runs of whitespace, newlines included,
// into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// CollapseLines collapses horizontal whitespace within each line while
// preserving line breaks, and squeezes runs of blank lines down to one.
func CollapseLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.Join(lines, "\n")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
