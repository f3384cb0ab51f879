package dedup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/postsmith-hq/postsmith/internal/domain"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "seen.db"), 7*24*time.Hour, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testArticle() domain.Article {
	return domain.Article{
		Title: "OpenAI ships new agent",
		Link:  "https://example.com/openai-agents",
	}
}

func TestUnseenArticleIsNotDuplicate(t *testing.T) {
	s := tempStore(t)

	dup, err := s.IsDuplicate(testArticle())
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Error("fresh store reported a duplicate")
	}
}

func TestMarkSeenThenDuplicate(t *testing.T) {
	s := tempStore(t)

	if err := s.MarkSeen(testArticle()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	dup, err := s.IsDuplicate(testArticle())
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if !dup {
		t.Error("marked article not reported as duplicate")
	}
}

func TestLinkVariantsHashIdentically(t *testing.T) {
	s := tempStore(t)

	if err := s.MarkSeen(testArticle()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	variants := []domain.Article{
		{Title: "Completely different headline", Link: "HTTPS://EXAMPLE.COM/openai-agents"},
		{Title: "Completely different headline", Link: "https://example.com/openai-agents/"},
		{Title: "Completely different headline", Link: "https://example.com/openai-agents#section"},
	}
	for _, a := range variants {
		dup, err := s.IsDuplicate(a)
		if err != nil {
			t.Fatalf("IsDuplicate(%s): %v", a.Link, err)
		}
		if !dup {
			t.Errorf("link variant %q not detected as duplicate", a.Link)
		}
	}
}

func TestTitleMatchCatchesSyndication(t *testing.T) {
	s := tempStore(t)

	if err := s.MarkSeen(testArticle()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	// Same story republished under a different URL.
	a := domain.Article{
		Title: "  openai   SHIPS new agent ",
		Link:  "https://mirror.example.org/story/123",
	}
	dup, err := s.IsDuplicate(a)
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if !dup {
		t.Error("republished title not detected as duplicate")
	}
}

func TestDifferentArticleIsNotDuplicate(t *testing.T) {
	s := tempStore(t)

	if err := s.MarkSeen(testArticle()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	a := domain.Article{
		Title: "Chipmaker reports record quarter",
		Link:  "https://example.com/chips",
	}
	dup, err := s.IsDuplicate(a)
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Error("unrelated article reported as duplicate")
	}
}

func TestExpiredEntriesIgnoredAndPruned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")

	s, err := Open(path, 7*24*time.Hour, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Mark with a clock 8 days in the past, beyond the retention window.
	s.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	if err := s.MarkSeen(testArticle()); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	s.now = time.Now
	dup, err := s.IsDuplicate(testArticle())
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Error("expired entry still reported as duplicate")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen prunes the stale entries, then a fresh mark works again.
	s2, err := Open(path, 7*24*time.Hour, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if err := s2.MarkSeen(testArticle()); err != nil {
		t.Fatalf("MarkSeen after prune: %v", err)
	}
	dup, err = s2.IsDuplicate(testArticle())
	if err != nil {
		t.Fatalf("IsDuplicate after prune: %v", err)
	}
	if !dup {
		t.Error("fresh mark not reported as duplicate")
	}
}

func TestOpenRejectsNonPositiveRetention(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "seen.db"), 0, nil); err == nil {
		t.Error("Open accepted zero retention")
	}
}
