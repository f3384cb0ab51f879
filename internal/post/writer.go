package post

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/internal/logger"
)

// Writer emits post files into the posts directory exactly once. An existing
// file at the same filename is authoritative and is never overwritten.
type Writer struct {
	dir string
	log logger.Logger
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Writer{dir: dir, log: log}
}

// Write persists the post, returning its path and whether a file was
// actually written. A pre-existing file at the same filename makes the call
// a no-op with written=false.
func (w *Writer) Write(p domain.Post) (string, bool, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create posts dir: %w", err)
	}

	dest := filepath.Join(w.dir, p.Filename)
	if _, err := os.Stat(dest); err == nil {
		w.log.DebugObj("post already exists, skipping", "post_exists", map[string]any{
			"filename": p.Filename,
		})
		return dest, false, nil
	}

	if err := writeAtomic(dest, []byte(Render(p))); err != nil {
		return "", false, err
	}
	return dest, true, nil
}

// writeAtomic writes content via temp file then rename, so a concurrent site
// build never sees a half-written post.
func writeAtomic(dest string, content []byte) error {
	dir := filepath.Dir(dest)

	tmp, err := os.CreateTemp(dir, ".postsmith-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
