package post

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/internal/enrich"
	"github.com/postsmith-hq/postsmith/internal/filter"
	"github.com/postsmith-hq/postsmith/internal/logger"
)

// Repairer patches existing posts in place: bodies that are empty, too
// short, or still paywalled are regenerated through the enricher while the
// front matter and filename identity are preserved.
type Repairer struct {
	dir      string
	expander *enrich.Expander
	log      logger.Logger
	now      func() time.Time
}

// NewRepairer creates a Repairer for the given posts directory.
func NewRepairer(dir string, expander *enrich.Expander, log logger.Logger) *Repairer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Repairer{dir: dir, expander: expander, log: log, now: time.Now}
}

// RepairOptions bounds which posts a repair pass touches.
type RepairOptions struct {
	// Since/Until bound the post date, inclusive; zero values are open ends.
	Since time.Time
	Until time.Time
	// ScanDays limits the pass to posts from the last N days; 0 scans all.
	ScanDays int
	// MinBodyLen is the repair threshold: shorter bodies get regenerated.
	MinBodyLen int
}

// RepairStats summarizes a repair pass.
type RepairStats struct {
	Checked  int
	Repaired int
}

// Repair walks the posts directory and regenerates deficient bodies.
func (r *Repairer) Repair(opts RepairOptions) (RepairStats, error) {
	var stats RepairStats

	files, err := r.listPosts()
	if err != nil {
		return stats, err
	}

	for _, file := range files {
		date, ok := dateFromFilename(filepath.Base(file))
		if ok && !r.inRange(date, opts) {
			continue
		}

		stats.Checked++
		repaired, err := r.repairFile(file, opts.MinBodyLen)
		if err != nil {
			r.log.WarnObj("post repair failed", "repair_error", map[string]any{
				"file":  file,
				"error": err.Error(),
			})
			continue
		}
		if repaired {
			stats.Repaired++
			r.log.InfoObj("repaired post body", "repair_applied", map[string]any{
				"file": filepath.Base(file),
			})
		}
	}

	return stats, nil
}

// repairFile regenerates one post's body when it fails the floor. The front
// matter block passes through untouched.
func (r *Repairer) repairFile(file string, minBodyLen int) (bool, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return false, fmt.Errorf("read post: %w", err)
	}

	fm, body := SplitFrontMatter(string(raw))
	meta := ParseFrontMatter(fm)

	cleaned := r.expander.Clean(body)
	if len(cleaned) >= minBodyLen {
		// Cleaning alone may have removed a paywall phrase; persist that.
		if cleaned == strings.TrimSpace(body) {
			return false, nil
		}
		return true, writeAtomic(file, []byte(RenderWithFront(fm, cleaned)))
	}

	art := domain.Article{
		Title:       meta["title"],
		Description: meta["excerpt"],
		Body:        cleaned,
		Source:      meta["source"],
		Link:        meta["source_url"],
	}
	rebuilt := r.expander.Expand(art)
	if len(rebuilt) <= len(cleaned) {
		rebuilt = cleaned
	}
	if strings.TrimSpace(rebuilt) == strings.TrimSpace(body) {
		return false, nil
	}

	return true, writeAtomic(file, []byte(RenderWithFront(fm, rebuilt)))
}

// PruneOptions configures which posts a prune pass removes.
type PruneOptions struct {
	// MinBodyLen is the floor below which a post is considered junk.
	MinBodyLen int
	// Blacklist phrases matched against the post title.
	Blacklist []string
	// Paywall phrases matched against the whole body.
	Paywall []string
}

// PruneStats summarizes a prune pass.
type PruneStats struct {
	Checked int
	Removed int
}

// Prune deletes posts that are beyond repair: near-empty bodies, paywalled
// content, or blacklisted titles.
func (r *Repairer) Prune(opts PruneOptions) (PruneStats, error) {
	var stats PruneStats

	files, err := r.listPosts()
	if err != nil {
		return stats, err
	}

	for _, file := range files {
		stats.Checked++

		raw, err := os.ReadFile(file)
		if err != nil {
			r.log.WarnObj("post unreadable during prune", "prune_error", map[string]any{
				"file":  file,
				"error": err.Error(),
			})
			continue
		}

		fm, body := SplitFrontMatter(string(raw))
		meta := ParseFrontMatter(fm)
		if !r.isJunk(meta["title"], body, opts) {
			continue
		}

		if err := os.Remove(file); err != nil {
			r.log.WarnObj("post removal failed", "prune_error", map[string]any{
				"file":  file,
				"error": err.Error(),
			})
			continue
		}
		stats.Removed++
		r.log.InfoObj("removed junk post", "prune_removed", map[string]any{
			"file": filepath.Base(file),
		})
	}

	return stats, nil
}

// isJunk applies the prune criteria to one post.
func (r *Repairer) isJunk(title, body string, opts PruneOptions) bool {
	trimmed := strings.TrimSpace(body)
	if len(trimmed) < opts.MinBodyLen {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, p := range opts.Paywall {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return filter.ContainsAny(strings.ToLower(title), opts.Blacklist)
}

// listPosts returns the markdown files in the posts directory, sorted.
func (r *Repairer) listPosts() ([]string, error) {
	pattern := filepath.Join(r.dir, "*.md")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// inRange checks the post date against the configured bounds.
func (r *Repairer) inRange(date time.Time, opts RepairOptions) bool {
	if !opts.Since.IsZero() && date.Before(opts.Since) {
		return false
	}
	if !opts.Until.IsZero() && date.After(opts.Until) {
		return false
	}
	if opts.ScanDays > 0 {
		cutoff := r.now().AddDate(0, 0, -opts.ScanDays)
		if date.Before(cutoff) {
			return false
		}
	}
	return true
}

// dateFromFilename reads the YYYY-MM-DD prefix of a post filename.
func dateFromFilename(name string) (time.Time, bool) {
	if len(name) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", name[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
