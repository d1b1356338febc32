// Package stream holds the domain-independent pieces of the event stream:
// topic names, the payload envelope, and the capability contract a domain's
// event kinds implement to place payloads on the wire.
package stream

// Topic names one partition of the event stream. Topics are never reused
// across epochs, so a consumer can resume a subscription by name alone.
type Topic string

func (t Topic) String() string {
	return string(t)
}

// Payload pairs one event body with the metadata shared by every event
// derived from the same transaction. It is built once per emitted event and
// never mutated afterwards.
type Payload[D, M any] struct {
	Metadata M `json:"metadata"`
	Data     D `json:"data"`
}

// PerEpochTopic is implemented by a domain's event kinds. It scopes the kind
// to a ledger epoch and converts payloads to and from their wire form.
type PerEpochTopic[D, M any] interface {
	TopicForEpoch(epoch uint64) Topic
	PayloadToBytes(p Payload[D, M]) ([]byte, error)
	PayloadFromBytes(b []byte) (Payload[D, M], error)
}
