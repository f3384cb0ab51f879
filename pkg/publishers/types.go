package publishers

import (
	"context"
	"time"

	"github.com/postsmith-hq/postsmith/internal/logger"
)

// PostEvent is what downstream consumers receive for every post the
// pipeline writes.
type PostEvent struct {
	SourceID string    `json:"source_id"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Path     string    `json:"path"`
	Date     time.Time `json:"date"`
	Image    string    `json:"image"`
}

// Publisher delivers post events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt PostEvent) error
}

// ensureLogger substitutes the nop logger for nil.
func ensureLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
