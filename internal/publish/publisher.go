// Package publish delivers encoded event payloads to the stream.
package publish

import (
	"context"

	"txstream/internal/stream"
)

// Publisher hands one encoded payload to its stream topic. Implementations
// own delivery, partitioning, and retry semantics; the extraction core only
// ever sees (bytes, topic) pairs.
type Publisher interface {
	Publish(ctx context.Context, topic stream.Topic, payload []byte) error
	Close() error
}
