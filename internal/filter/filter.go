package filter

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/postsmith-hq/postsmith/internal/domain"
)

// Rejection reasons reported by Accept. Any single reason is sufficient.
const (
	ReasonTitleTooShort = "title_too_short"
	ReasonPaywall       = "paywall_marker"
	ReasonBlacklisted   = "blacklisted_phrase"
	ReasonThinContent   = "thin_content"
	ReasonEchoedTitle   = "description_echoes_title"
	ReasonNotRelevant   = "not_relevant"
	ReasonStale         = "outside_freshness_window"
)

// Options configures the filter thresholds and phrase sets.
type Options struct {
	MinTitleLen   int
	MinExcerptLen int
	// Relevance is OR-matched against title+description; empty disables the
	// gate.
	Relevance []string
	Paywall   []string
	Blacklist []string
	// Freshness of zero disables the recency gate.
	Freshness time.Duration
}

// Filter decides whether an article is worth publishing. It is pure: no
// network calls, no cross-article state, so it runs before the costlier
// dedup and image stages.
type Filter struct {
	opts Options
	now  func() time.Time
}

// New creates a Filter with the given options.
func New(opts Options) *Filter {
	return &Filter{opts: opts, now: time.Now}
}

// NewWithClock creates a Filter with an injected clock for tests.
func NewWithClock(opts Options, now func() time.Time) *Filter {
	if now == nil {
		now = time.Now
	}
	return &Filter{opts: opts, now: now}
}

// Accept reports whether the article passes every quality gate, returning
// the first failing reason otherwise.
func (f *Filter) Accept(a domain.Article) (bool, string) {
	if utf8.RuneCountInString(a.Title) < f.opts.MinTitleLen {
		return false, ReasonTitleTooShort
	}

	combined := strings.ToLower(a.Text())
	for _, phrase := range f.opts.Paywall {
		if strings.Contains(combined, phrase) {
			return false, ReasonPaywall
		}
	}
	if ContainsAny(combined, f.opts.Blacklist) {
		return false, ReasonBlacklisted
	}

	if a.Body == "" && utf8.RuneCountInString(a.Description) < f.opts.MinExcerptLen {
		return false, ReasonThinContent
	}

	if f.echoesTitle(a) {
		return false, ReasonEchoedTitle
	}

	if len(f.opts.Relevance) > 0 {
		topical := strings.ToLower(a.Title + " " + a.Description)
		if !ContainsAny(topical, f.opts.Relevance) {
			return false, ReasonNotRelevant
		}
	}

	if f.opts.Freshness > 0 && f.now().Sub(a.PublishedAt) > f.opts.Freshness {
		return false, ReasonStale
	}

	return true, ""
}

// echoesTitle catches providers that copy the title into the summary field:
// one contains the other and the description is too short to stand alone.
func (f *Filter) echoesTitle(a domain.Article) bool {
	if a.Description == "" || utf8.RuneCountInString(a.Description) >= f.opts.MinExcerptLen {
		return false
	}
	title := strings.ToLower(strings.TrimSpace(a.Title))
	desc := strings.ToLower(strings.TrimSpace(a.Description))
	return strings.Contains(desc, title) || strings.Contains(title, desc)
}

// ContainsAny reports whether text contains any of the keywords. Phrases
// match as substrings; short single tokens (<=3 chars) require a word
// boundary so "ai" does not match inside "said".
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		if len(k) <= 3 {
			// A \b is only meaningful next to a word character; a token
			// like "vs." ends on punctuation and must match bare.
			pattern := regexp.QuoteMeta(k)
			if isWordByte(k[0]) {
				pattern = `\b` + pattern
			}
			if isWordByte(k[len(k)-1]) {
				pattern += `\b`
			}
			if regexp.MustCompile(pattern).MatchString(text) {
				return true
			}
			continue
		}

		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// isWordByte matches the regexp \w class, which is ASCII-only.
func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
