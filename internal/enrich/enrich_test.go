package enrich

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/postsmith-hq/postsmith/internal/domain"
)

const testMinBody = 500

var testPaywall = []string{"only available in paid plans", "subscribe to read"}

func testExpander() *Expander {
	return New(testMinBody, testPaywall)
}

func TestNeedsExpansion(t *testing.T) {
	e := testExpander()

	cases := []struct {
		name string
		body string
		want bool
	}{
		{"empty", "", true},
		{"short", "a few words", true},
		{"long enough", strings.Repeat("solid paragraph text ", 30), false},
		{"long but paywalled", strings.Repeat("text ", 120) + "Subscribe to read the rest.", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.NeedsExpansion(tc.body); got != tc.want {
				t.Errorf("NeedsExpansion = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCleanStripsPaywallPhrases(t *testing.T) {
	e := testExpander()

	in := "Real reporting here.\n\n\n\nThis story is Only Available In Paid Plans.\nMore text."
	got := e.Clean(in)
	if strings.Contains(strings.ToLower(got), "paid plans") {
		t.Errorf("Clean left paywall phrase: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("Clean left a blank-line run: %q", got)
	}
	if !strings.Contains(got, "Real reporting here.") {
		t.Errorf("Clean dropped real content: %q", got)
	}
}

func TestExpandKeepsLongBodyVerbatim(t *testing.T) {
	e := testExpander()

	body := strings.TrimSpace(strings.Repeat("An already complete paragraph of reporting. ", 20))
	got := e.Expand(domain.Article{Title: "Headline", Body: body, Source: "Wire"})
	if got != body {
		t.Errorf("Expand rewrote a sufficient body")
	}
}

func TestExpandBuildsParagraphsFromDescription(t *testing.T) {
	e := testExpander()

	a := domain.Article{
		Title:       "OpenAI ships new agent",
		Description: "The company released a managed agent platform for enterprise workflows.",
		Source:      "Example Wire",
	}
	got := e.Expand(a)
	if !strings.Contains(got, a.Title) {
		t.Errorf("expanded body missing title lead: %q", got)
	}
	if !strings.Contains(got, a.Description) {
		t.Errorf("expanded body missing description paragraph")
	}
	if !strings.Contains(got, "Source: Example Wire.") {
		t.Errorf("expanded body missing source attribution")
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	e := testExpander()

	a := domain.Article{
		Title:       "Chipmaker reports record quarter",
		Description: "Revenue grew on data center demand.",
		Body:        "Short note.",
		Source:      "Wire",
	}
	if e.Expand(a) != e.Expand(a) {
		t.Error("Expand is not deterministic for identical input")
	}
}

func TestExpandBullets(t *testing.T) {
	e := testExpander()

	lines := []string{
		"Heading that ends with a colon and is skipped entirely as a label:",
		"tiny",
		"- The first real point is long enough to read as a sentence on its own.",
		"The second real point also lands inside the accepted length window here.",
		"Third point with enough words to clear the lower bound of the window.",
		"Fourth point again sized comfortably within the accepted sentence range.",
		"Fifth point would exceed the cap and therefore must not appear at all.",
	}
	a := domain.Article{
		Title:       "Vendor updates its platform",
		Description: "A roundup of the changes.",
		Body:        strings.Join(lines, "\n"),
		Source:      "Wire",
	}

	got := e.Expand(a)
	if !strings.Contains(got, "**Key points:**") {
		t.Fatalf("expanded body missing key points block: %q", got)
	}
	bullets := 0
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "- ") {
			bullets++
		}
	}
	if bullets != 4 {
		t.Errorf("bullets = %d, want 4", bullets)
	}
	if strings.Contains(got, "skipped entirely as a label:") {
		t.Error("heading line leaked into bullets")
	}
	if strings.Contains(got, "Fifth point") {
		t.Error("bullet cap not applied")
	}
}

func TestExpandAppendsTailWhenStillShort(t *testing.T) {
	e := testExpander()

	a := domain.Article{
		Title:  "Brief note",
		Body:   "Just a fragment of raw content without any usable description.",
		Source: "Wire",
	}
	got := e.Expand(a)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated tail suffix, got %q", got)
	}
}

func TestExpandKeepsValidUTF8(t *testing.T) {
	e := testExpander()

	// One leading ASCII byte pushes every following three-byte rune off a
	// multiple-of-three offset, so a byte-indexed cut would split a rune.
	a := domain.Article{
		Title:  "模型新版本发布引发热议",
		Body:   "A" + strings.Repeat("智能体评测基准提升推理速度", 12),
		Source: "Wire",
	}
	got := e.Expand(a)
	if !utf8.ValidString(got) {
		t.Fatalf("Expand produced invalid UTF-8: %q", got)
	}
	if strings.ContainsRune(got, utf8.RuneError) {
		t.Errorf("Expand emitted a replacement rune: %q", got)
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	cases := []struct {
		s    string
		n    int
		want string
	}{
		{"plain ascii", 5, "plain"},
		{"héllo", 2, "h"},
		{"智能体", 4, "智"},
		{"智能体", 9, "智能体"},
		{"short", 100, "short"},
	}

	for _, tc := range cases {
		if got := truncate(tc.s, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.s, tc.n, got, tc.want)
		}
	}
}

func TestExpandPaywalledArticle(t *testing.T) {
	e := testExpander()

	a := domain.Article{
		Title:       "Paper launches premium tier",
		Description: "The publisher announced a new premium offering for readers.",
		Body:        strings.Repeat("text ", 110) + "This story is only available in paid plans.",
		Source:      "Wire",
	}
	got := e.Expand(a)
	if strings.Contains(strings.ToLower(got), "only available in paid plans") {
		t.Errorf("paywall phrase survived expansion: %q", got)
	}
	if len(got) < testMinBody {
		t.Errorf("Expand produced %d chars, want >= %d", len(got), testMinBody)
	}
}
