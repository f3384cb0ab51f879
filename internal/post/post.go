package post

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/postsmith-hq/postsmith/internal/domain"
)

// maxSlugLen caps the slug so filenames stay manageable; the cut happens at
// a word boundary.
const maxSlugLen = 60

// Slug derives the deterministic post slug from a title: lower-cased,
// ASCII-transliterated, punctuation stripped, length-capped.
func Slug(title string) string {
	s := slug.Make(title)
	if len(s) <= maxSlugLen {
		return s
	}
	s = s[:maxSlugLen]
	if i := strings.LastIndex(s, "-"); i > 0 {
		s = s[:i]
	}
	return s
}

// Filename is the on-disk identity of a post: two articles mapping to the
// same filename are the same logical post.
func Filename(date time.Time, postSlug string) string {
	return fmt.Sprintf("%s-%s.md", date.UTC().Format("2006-01-02"), postSlug)
}

// Build assembles the Post artifact for an accepted article with its final
// body and resolved image.
func Build(a domain.Article, body, image, category string) domain.Post {
	postSlug := Slug(a.Title)
	date := a.PublishedAt.UTC()

	excerpt := a.Description
	if excerpt == "" {
		excerpt = a.Title
	}
	if category == "" {
		category = "news"
	}

	front := []domain.FrontField{
		{Key: "layout", Value: "post"},
		{Key: "title", Value: a.Title},
		{Key: "date", Value: date.Format("2006-01-02")},
		{Key: "excerpt", Value: excerpt},
		{Key: "categories", Value: category},
		{Key: "image", Value: image},
		{Key: "source", Value: a.Source},
		{Key: "source_url", Value: a.Link},
	}

	return domain.Post{
		Slug:     postSlug,
		Date:     date,
		Filename: Filename(date, postSlug),
		Front:    front,
		Body:     strings.TrimSpace(body),
	}
}

// Render produces the full file content: front matter block, blank line,
// body.
func Render(p domain.Post) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, f := range p.Front {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(renderValue(f.Key, f.Value))
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
	b.WriteString(p.Body)
	b.WriteString("\n")
	return b.String()
}

// quotedKeys are front-matter fields always emitted as quoted strings; the
// rest are plain scalars.
var quotedKeys = map[string]bool{
	"title":   true,
	"excerpt": true,
	"source":  true,
}

// renderValue escapes embedded quotes and quotes string-typed fields.
func renderValue(key, value string) string {
	if quotedKeys[key] {
		return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
	}
	return value
}
