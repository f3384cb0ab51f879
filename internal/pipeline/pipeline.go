package pipeline

import (
	"context"
	"fmt"

	"github.com/postsmith-hq/postsmith/internal/dedup"
	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/internal/enrich"
	"github.com/postsmith-hq/postsmith/internal/filter"
	"github.com/postsmith-hq/postsmith/internal/images"
	"github.com/postsmith-hq/postsmith/internal/logger"
	"github.com/postsmith-hq/postsmith/internal/normalize"
	"github.com/postsmith-hq/postsmith/internal/post"
	"github.com/postsmith-hq/postsmith/pkg/fetch"
	"github.com/postsmith-hq/postsmith/pkg/publishers"
	"github.com/postsmith-hq/postsmith/pkg/sources"
)

// Stats counts each terminal state of the per-article state machine.
type Stats struct {
	Fetched       int
	Rejected      int
	Duplicates    int
	Enriched      int
	Written       int
	SkippedExists int
}

// Deps holds the constructed-once collaborators threaded through every
// stage. There is no package-level state: one Pipeline per run.
type Deps struct {
	Normalizer *normalize.Normalizer
	Filter     *filter.Filter
	Seen       *dedup.Store
	Expander   *enrich.Expander
	Images     *images.Resolver
	Writer     *post.Writer
	Publishers []publishers.Publisher
	Log        logger.Logger
	// MaxPosts caps how many new posts a single run may write.
	MaxPosts int
}

// Pipeline runs the article-to-post transformation for one batch.
type Pipeline struct {
	deps Deps
}

// New creates a Pipeline, defaulting the logger when nil.
func New(deps Deps) *Pipeline {
	if deps.Log == nil {
		deps.Log = logger.NopLogger{}
	}
	return &Pipeline{deps: deps}
}

// Harvest fetches raw records from every enabled source. Individual source
// failures degrade to a warning; the run is fatal only when every source
// fails.
func Harvest(ctx context.Context, reg *sources.Registry, fetchers fetch.Registry, log logger.Logger) ([]domain.RawRecord, error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	enabled := reg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no enabled sources configured")
	}

	var records []domain.RawRecord
	failures := 0
	for _, src := range enabled {
		fetcher, err := fetchers.FetcherFor(src)
		if err != nil {
			log.WarnObj("source has no usable fetcher", "harvest_skipped", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
			failures++
			continue
		}

		recs, err := fetcher.Fetch(ctx, src)
		if err != nil {
			log.WarnObj("source fetch failed", "harvest_failed", map[string]any{
				"source_id": src.ID,
				"error":     err.Error(),
			})
			failures++
			continue
		}

		log.InfoObj("source fetched", "harvest_ok", map[string]any{
			"source_id": src.ID,
			"records":   len(recs),
		})
		records = append(records, recs...)
	}

	if failures == len(enabled) {
		return nil, fmt.Errorf("all %d sources failed", len(enabled))
	}
	return records, nil
}

// Run pushes each record through the forward-only state machine:
// Fetched → Normalized → {Rejected | Accepted} → {DuplicateSkipped |
// ToWrite} → Enriched? → ImageResolved → {Written | SkippedExists}.
// A run that writes zero posts is a successful no-op.
func (p *Pipeline) Run(ctx context.Context, records []domain.RawRecord) (Stats, error) {
	d := p.deps
	var stats Stats
	stats.Fetched = len(records)

	for _, rec := range records {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if d.MaxPosts > 0 && stats.Written >= d.MaxPosts {
			break
		}

		a, ok := d.Normalizer.Normalize(rec)
		if !ok {
			stats.Rejected++
			d.Log.DebugObj("record failed normalization", "article_rejected", map[string]any{
				"source_id": rec.SourceID,
				"reason":    "missing_title_or_link",
			})
			continue
		}

		if accepted, reason := d.Filter.Accept(a); !accepted {
			stats.Rejected++
			d.Log.DebugObj("article rejected by quality filter", "article_rejected", map[string]any{
				"title":  a.Title,
				"reason": reason,
			})
			continue
		}

		dup, err := d.Seen.IsDuplicate(a)
		if err != nil {
			return stats, fmt.Errorf("dedup check for %s: %w", a.Link, err)
		}
		if dup {
			stats.Duplicates++
			d.Log.DebugObj("article already seen", "article_duplicate", map[string]any{
				"title": a.Title,
			})
			continue
		}

		body := d.Expander.Clean(a.Body)
		if body != "" {
			if d.Expander.NeedsExpansion(body) {
				body = d.Expander.Expand(a)
				stats.Enriched++
			}
		} else {
			// The thin-content gate only passes body-less articles whose
			// description can stand alone, so it becomes the body verbatim.
			body = d.Expander.Clean(a.Description)
			if body == "" {
				body = d.Expander.Expand(a)
				stats.Enriched++
			}
		}

		slug := post.Slug(a.Title)
		image := d.Images.Resolve(ctx, a, slug)
		category := d.Images.Topic(a)

		pst := post.Build(a, body, image, category)
		path, written, err := d.Writer.Write(pst)
		if err != nil {
			return stats, fmt.Errorf("write post %s: %w", pst.Filename, err)
		}

		if err := d.Seen.MarkSeen(a); err != nil {
			d.Log.WarnObj("seen-set update failed", "dedup_mark_failed", map[string]any{
				"title": a.Title,
				"error": err.Error(),
			})
		}

		if !written {
			stats.SkippedExists++
			continue
		}
		stats.Written++
		d.Log.InfoObj("post written", "post_written", map[string]any{
			"filename": pst.Filename,
			"source":   a.Source,
		})

		p.publish(ctx, publishers.PostEvent{
			SourceID: rec.SourceID,
			Title:    a.Title,
			URL:      a.Link,
			Path:     path,
			Date:     pst.Date,
			Image:    image,
		})
	}

	d.Log.InfoObj("pipeline run complete", "run_summary", map[string]any{
		"fetched":        stats.Fetched,
		"rejected":       stats.Rejected,
		"duplicates":     stats.Duplicates,
		"enriched":       stats.Enriched,
		"written":        stats.Written,
		"skipped_exists": stats.SkippedExists,
	})
	return stats, nil
}

// publish notifies every configured publisher. Delivery failures are logged
// and never fail the run: the post file is already on disk.
func (p *Pipeline) publish(ctx context.Context, evt publishers.PostEvent) {
	for _, pub := range p.deps.Publishers {
		if err := pub.Publish(ctx, evt); err != nil {
			p.deps.Log.WarnObj("post event delivery failed", "publish_failed", map[string]any{
				"publisher_id": pub.ID(),
				"title":        evt.Title,
				"error":        err.Error(),
			})
		}
	}
}
