package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/postsmith-hq/postsmith/internal/domain"
)

var testNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		MinTitleLen:   12,
		MinExcerptLen: 140,
		Relevance:     []string{"ai", "artificial intelligence", "machine learning", "llm"},
		Paywall:       []string{"only available in paid plans", "only for subscribers", "subscribe to read"},
		Blacklist:     []string{"fixtures", "betting odds", "horoscope"},
	}
}

func testFilter(opts Options) *Filter {
	return NewWithClock(opts, func() time.Time { return testNow })
}

func goodArticle() domain.Article {
	return domain.Article{
		Title: "OpenAI ships new agent platform for enterprises",
		Description: "The company released a managed agent platform aimed at enterprise " +
			"AI workflows, with tool calling, evaluation hooks, and usage-based pricing " +
			"that undercuts rivals in several tiers of deployment.",
		Body:        strings.Repeat("Detail about the AI launch and what changes for teams. ", 12),
		Link:        "https://example.com/openai-agents",
		Source:      "Example Wire",
		PublishedAt: testNow.Add(-2 * time.Hour),
	}
}

func TestAcceptGoodArticle(t *testing.T) {
	f := testFilter(testOptions())

	ok, reason := f.Accept(goodArticle())
	if !ok {
		t.Fatalf("Accept rejected a good article: %s", reason)
	}
}

func TestAcceptRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Article)
		reason string
	}{
		{
			name:   "short title",
			mutate: func(a *domain.Article) { a.Title = "Too short" },
			reason: ReasonTitleTooShort,
		},
		{
			name:   "paywall in description",
			mutate: func(a *domain.Article) { a.Description += " This content is only available in paid plans." },
			reason: ReasonPaywall,
		},
		{
			name:   "paywall in long body",
			mutate: func(a *domain.Article) { a.Body += " Subscribe to read the full story." },
			reason: ReasonPaywall,
		},
		{
			name: "blacklisted phrase",
			mutate: func(a *domain.Article) {
				a.Title = "Premier League fixtures and betting odds for the weekend"
			},
			reason: ReasonBlacklisted,
		},
		{
			name: "thin content",
			mutate: func(a *domain.Article) {
				a.Body = ""
				a.Description = "AI brief mention."
			},
			reason: ReasonThinContent,
		},
		{
			name: "description echoes title",
			mutate: func(a *domain.Article) {
				a.Body = strings.Repeat("AI context. ", 30)
				a.Description = "OpenAI ships new agent platform for enterprises."
			},
			reason: ReasonEchoedTitle,
		},
		{
			name: "not relevant",
			mutate: func(a *domain.Article) {
				a.Title = "Municipal budget passes after long council session"
				a.Description = strings.Repeat("Routine local government reporting. ", 6)
				a.Body = strings.Repeat("Nothing topical in this body text at all. ", 15)
			},
			reason: ReasonNotRelevant,
		},
	}

	f := testFilter(testOptions())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := goodArticle()
			tc.mutate(&a)
			ok, reason := f.Accept(a)
			if ok {
				t.Fatalf("Accept passed, want rejection %s", tc.reason)
			}
			if reason != tc.reason {
				t.Errorf("reason = %s, want %s", reason, tc.reason)
			}
		})
	}
}

func TestAcceptCountsRunesNotBytes(t *testing.T) {
	f := testFilter(testOptions())

	// Eight characters is under the 12-char title floor even though the
	// UTF-8 encoding runs to 24 bytes.
	a := goodArticle()
	a.Title = "人工智能监管新规"
	if ok, reason := f.Accept(a); ok || reason != ReasonTitleTooShort {
		t.Errorf("Accept = (%v, %s), want short-title rejection", ok, reason)
	}

	// A 100-character description is thin content regardless of its
	// 300-byte encoding.
	a = goodArticle()
	a.Body = ""
	a.Description = strings.Repeat("能", 98) + "AI"
	if ok, reason := f.Accept(a); ok || reason != ReasonThinContent {
		t.Errorf("Accept = (%v, %s), want thin-content rejection", ok, reason)
	}
}

func TestFreshnessWindow(t *testing.T) {
	opts := testOptions()
	opts.Freshness = 48 * time.Hour
	f := testFilter(opts)

	a := goodArticle()
	a.PublishedAt = testNow.Add(-72 * time.Hour)
	if ok, reason := f.Accept(a); ok || reason != ReasonStale {
		t.Errorf("Accept = (%v, %s), want stale rejection", ok, reason)
	}

	a.PublishedAt = testNow.Add(-24 * time.Hour)
	if ok, reason := f.Accept(a); !ok {
		t.Errorf("Accept rejected fresh article: %s", reason)
	}
}

func TestFreshnessZeroDisablesGate(t *testing.T) {
	f := testFilter(testOptions())

	a := goodArticle()
	a.PublishedAt = testNow.AddDate(-1, 0, 0)
	if ok, reason := f.Accept(a); !ok {
		t.Errorf("Accept rejected old article with freshness disabled: %s", reason)
	}
}

func TestEmptyRelevanceDisablesGate(t *testing.T) {
	opts := testOptions()
	opts.Relevance = nil
	f := testFilter(opts)

	a := goodArticle()
	a.Title = "Municipal budget passes after long council session"
	a.Description = strings.Repeat("Routine local government reporting. ", 6)
	a.Body = strings.Repeat("Nothing topical in this body text at all. ", 15)
	if ok, reason := f.Accept(a); !ok {
		t.Errorf("Accept rejected with relevance disabled: %s", reason)
	}
}

func TestContainsAny(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{"short token needs word boundary", "the ceo said things", []string{"ai"}, false},
		{"short token as word", "the ai boom continues", []string{"ai"}, true},
		{"token ending in punctuation", "arsenal vs. chelsea live broadcast times", []string{"vs."}, true},
		{"punctuated token still bounded", "the cavs. postseason run", []string{"vs."}, false},
		{"phrase substring", "new machine learning tooling", []string{"machine learning"}, true},
		{"long token substring", "antitrust regulators move", []string{"regulator"}, true},
		{"no match", "quarterly earnings beat", []string{"llm", "gpu"}, false},
		{"empty keywords", "anything", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContainsAny(tc.text, tc.keywords); got != tc.want {
				t.Errorf("ContainsAny(%q, %v) = %v, want %v", tc.text, tc.keywords, got, tc.want)
			}
		})
	}
}
