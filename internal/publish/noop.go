package publish

import (
	"context"
	"sync/atomic"

	"txstream/internal/stream"
)

// NopPublisher discards payloads. Used when no sink is configured and in
// tests that only care about extraction.
type NopPublisher struct {
	count atomic.Uint64
}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

func (p *NopPublisher) Publish(ctx context.Context, topic stream.Topic, payload []byte) error {
	p.count.Add(1)
	return nil
}

func (p *NopPublisher) Close() error {
	return nil
}

// Count reports how many payloads were discarded.
func (p *NopPublisher) Count() uint64 {
	return p.count.Load()
}
