package images

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // cache key derivation, not security
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/internal/filter"
	"github.com/postsmith-hq/postsmith/internal/logger"
	"github.com/postsmith-hq/postsmith/pkg/httpclient"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// extByContentType maps image content types to cache file extensions.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// knownExts is the set of extensions trusted when taken from a URL path.
var knownExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Options configures the resolver directories and limits.
type Options struct {
	// AssetsDir receives downloaded provider images.
	AssetsDir string
	// HeroDir holds the static topic and generic hero assets.
	HeroDir string
	// Topics maps a topic name to the keywords that select it.
	Topics map[string][]string
	// GenericHeroes is the rotating pool of generic assets in HeroDir.
	GenericHeroes []string
	// FallbackHero is the always-present asset of last resort.
	FallbackHero string
	// MaxImageBytes caps a single image download.
	MaxImageBytes int
}

// Resolver picks a representative image for a post through an ordered
// fallback chain. It never fails: the fixed fallback terminates the chain.
type Resolver struct {
	client httpclient.Client
	log    logger.Logger
	opts   Options
	topics []string // topic names in deterministic order
}

// New creates a Resolver.
func New(client httpclient.Client, log logger.Logger, opts Options) *Resolver {
	if log == nil {
		log = logger.NopLogger{}
	}

	names := make([]string, 0, len(opts.Topics))
	for name := range opts.Topics {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Resolver{client: client, log: log, opts: opts, topics: names}
}

// Resolve returns a site-relative image reference for the article. Tiers,
// each tried only when the prior yields nothing: provider image download,
// og:image scraped from the article page, topic hero, rotating generic
// hero, fixed fallback.
func (r *Resolver) Resolve(ctx context.Context, a domain.Article, slug string) string {
	if a.ImageURL != "" {
		if local, err := r.download(ctx, a.ImageURL, slug); err == nil {
			return local
		} else {
			r.log.WarnObj("provider image unusable", "image_provider_failed", map[string]any{
				"url":   a.ImageURL,
				"error": err.Error(),
			})
		}
	}

	if pageImage := r.scrapePageImage(ctx, a.Link); pageImage != "" {
		if local, err := r.download(ctx, pageImage, slug); err == nil {
			return local
		} else {
			r.log.WarnObj("scraped page image unusable", "image_scrape_failed", map[string]any{
				"url":   pageImage,
				"error": err.Error(),
			})
		}
	}

	if hero := r.topicHero(a); hero != "" {
		return hero
	}

	if hero := r.rotatingHero(a.Title); hero != "" {
		return hero
	}

	return "/" + path.Join(r.opts.HeroDir, r.opts.FallbackHero)
}

// download fetches the remote image, verifies it really is one, and persists
// it to the asset cache keyed by a content hash of the source URL so repeat
// runs reuse the same file.
func (r *Resolver) download(ctx context.Context, rawURL, slug string) (string, error) {
	ext := extFromURL(rawURL)
	name := fmt.Sprintf("%s-%s%s", slug, urlHash(rawURL), ext)
	dest := filepath.Join(r.opts.AssetsDir, name)

	// Already cached from a previous run or tier. An extensionless URL gets
	// its extension from the response content type, so match any suffix.
	if ext != "" {
		if _, err := os.Stat(dest); err == nil {
			return "/" + path.Join(r.opts.AssetsDir, name), nil
		}
	} else if matches, _ := filepath.Glob(dest + ".*"); len(matches) > 0 {
		return "/" + path.Join(r.opts.AssetsDir, filepath.Base(matches[0])), nil
	}

	resp, err := r.client.Get(ctx, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("image fetch returned status %d", resp.StatusCode())
	}

	contentType := parseMediaType(resp.Header("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("content type %q is not an image", contentType)
	}

	body := resp.Body()
	if len(body) == 0 {
		return "", fmt.Errorf("image response body is empty")
	}
	if len(body) > r.opts.MaxImageBytes {
		return "", fmt.Errorf("image payload %d exceeds cap %d", len(body), r.opts.MaxImageBytes)
	}

	if ext == "" {
		if ctExt, ok := extByContentType[contentType]; ok {
			ext = ctExt
		} else {
			ext = ".jpg"
		}
		name = fmt.Sprintf("%s-%s%s", slug, urlHash(rawURL), ext)
		dest = filepath.Join(r.opts.AssetsDir, name)
	}

	if err := os.MkdirAll(r.opts.AssetsDir, 0o755); err != nil {
		return "", fmt.Errorf("create assets dir: %w", err)
	}
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return "", fmt.Errorf("write cached image: %w", err)
	}

	r.log.DebugObj("cached provider image", "image_cached", map[string]any{
		"url":  rawURL,
		"path": dest,
		"size": len(body),
	})
	return "/" + path.Join(r.opts.AssetsDir, name), nil
}

// scrapePageImage fetches the article page and extracts its og:image, if
// any. Failures degrade to an empty result, never an error to the caller.
func (r *Resolver) scrapePageImage(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	resp, err := r.client.Get(ctx, link, nil)
	if err != nil || resp.StatusCode() != http.StatusOK {
		return ""
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	if node := doc.Find(`meta[property="og:image"]`).First(); node.Length() > 0 {
		if val, ok := node.Attr("content"); ok {
			return resolveURL(strings.TrimSpace(val), link)
		}
	}
	return ""
}

// Topic classifies the article into the configured topic set by keyword
// presence in title+description, or "" when nothing matches. Topics are
// checked in sorted name order so classification is deterministic.
func (r *Resolver) Topic(a domain.Article) string {
	text := strings.ToLower(a.Title + " " + a.Description)
	for _, topic := range r.topics {
		if filter.ContainsAny(text, r.opts.Topics[topic]) {
			return topic
		}
	}
	return ""
}

// topicHero returns the topic's static asset when one exists on disk.
func (r *Resolver) topicHero(a domain.Article) string {
	topic := r.Topic(a)
	if topic == "" {
		return ""
	}
	name := topic + ".jpg"
	if _, err := os.Stat(filepath.Join(r.opts.HeroDir, name)); err == nil {
		return "/" + path.Join(r.opts.HeroDir, name)
	}
	return ""
}

// rotatingHero deterministically selects from the generic pool by a hash of
// the title, so the same article always maps to the same hero.
func (r *Resolver) rotatingHero(title string) string {
	if len(r.opts.GenericHeroes) == 0 {
		return ""
	}

	h := fnv.New32a()
	h.Write([]byte(title))
	name := r.opts.GenericHeroes[int(h.Sum32())%len(r.opts.GenericHeroes)]

	if _, err := os.Stat(filepath.Join(r.opts.HeroDir, name)); err == nil {
		return "/" + path.Join(r.opts.HeroDir, name)
	}
	return ""
}

// urlHash returns the 8-hex-char cache key for a source URL.
func urlHash(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])[:8]
}

// extFromURL takes the extension from the URL path when it is a recognized
// image extension.
func extFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if knownExts[ext] {
		return ext
	}
	return ""
}

// parseMediaType strips parameters from a Content-Type header value.
func parseMediaType(v string) string {
	if i := strings.Index(v, ";"); i >= 0 {
		v = v[:i]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}

	return baseURL.ResolveReference(parsed).String()
}
