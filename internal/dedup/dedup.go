package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/postsmith-hq/postsmith/internal/domain"
	"github.com/postsmith-hq/postsmith/internal/logger"
)

var seenBucket = []byte("seen")

// Store is the persisted de-duplication index. Entries map content hashes of
// an article's link and title to the time they were last seen; entries older
// than the retention window are pruned on open, so "seen" means recently
// seen, not ever seen.
type Store struct {
	db        *bolt.DB
	retention time.Duration
	log       logger.Logger
	now       func() time.Time
}

// Open opens (creating if needed) the seen-set database at path and prunes
// entries outside the retention window.
func Open(path string, retention time.Duration, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	if retention <= 0 {
		return nil, fmt.Errorf("dedup retention must be positive, got %s", retention)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create seen-set dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open seen-set db: %w", err)
	}

	s := &Store{db: db, retention: retention, log: log, now: time.Now}
	if err := s.prune(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsDuplicate reports whether either of the article's keys was seen within
// the retention window.
func (s *Store) IsDuplicate(a domain.Article) (bool, error) {
	keys := articleKeys(a)
	cutoff := s.now().Add(-s.retention)

	var dup bool
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(seenBucket)
		if b == nil {
			return nil
		}
		for _, key := range keys {
			raw := b.Get([]byte(key))
			if raw == nil {
				continue
			}
			seenAt, err := time.Parse(time.RFC3339, string(raw))
			if err != nil {
				continue
			}
			if seenAt.After(cutoff) {
				dup = true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seen-set lookup: %w", err)
	}
	return dup, nil
}

// MarkSeen records both of the article's keys with the current timestamp.
func (s *Store) MarkSeen(a domain.Article) error {
	keys := articleKeys(a)
	stamp := []byte(s.now().UTC().Format(time.RFC3339))

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(seenBucket)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := b.Put([]byte(key), stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seen-set mark: %w", err)
	}
	return nil
}

// prune removes entries older than the retention window. Bounds the store's
// size across runs since providers re-surface old stories.
func (s *Store) prune() error {
	cutoff := s.now().Add(-s.retention)
	pruned := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(seenBucket)
		if err != nil {
			return err
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			seenAt, err := time.Parse(time.RFC3339, string(v))
			if err != nil || seenAt.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seen-set prune: %w", err)
	}

	if pruned > 0 {
		s.log.InfoObj("pruned expired seen-set entries", "dedup_prune", map[string]any{
			"pruned": pruned,
		})
	}
	return nil
}

// articleKeys derives the two content-addressed keys for an article.
func articleKeys(a domain.Article) []string {
	return []string{
		hashKey("link|" + normalizeLink(a.Link)),
		hashKey("title|" + normalizeTitle(a.Title)),
	}
}

// hashKey returns the hex SHA-256 digest of the given value.
func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// normalizeLink lower-cases scheme and host and drops trailing slashes so
// cosmetic URL variants hash identically.
func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return strings.ToLower(link)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""
	return u.String()
}

// normalizeTitle lower-cases and collapses whitespace.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
