package txevents

import (
	"errors"
	"fmt"
	"strconv"

	"txstream/internal/stream"
)

// Kind is one event kind of the transaction stream. The set is closed:
// adding a kind is a compile-checked change, existing kinds are never
// renamed.
type Kind uint8

const (
	KindString Kind = iota
	KindPackagePublish
	KindObjectChangeLight
	KindObjectChangeRaw
	KindMoveCall
	KindTransaction
	KindEffects
	KindGasCostSummary
)

// Kinds lists every defined event kind.
func Kinds() []Kind {
	return []Kind{
		KindString,
		KindPackagePublish,
		KindObjectChangeLight,
		KindObjectChangeRaw,
		KindMoveCall,
		KindTransaction,
		KindEffects,
		KindGasCostSummary,
	}
}

// ErrInvalidTopic reports a string that names no known event kind.
var ErrInvalidTopic = errors.New("invalid topic")

// String returns the fixed wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPackagePublish:
		return "package_publish"
	case KindObjectChangeLight:
		return "object_change_light"
	case KindObjectChangeRaw:
		return "object_change_raw"
	case KindMoveCall:
		return "move_call"
	case KindTransaction:
		return "transaction"
	case KindEffects:
		return "effects"
	case KindGasCostSummary:
		return "gas_cost_summary"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseKind maps a wire name back to its kind. It accepts exactly the
// strings String produces, case-sensitively.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "string":
		return KindString, nil
	case "package_publish":
		return KindPackagePublish, nil
	case "object_change_light":
		return KindObjectChangeLight, nil
	case "object_change_raw":
		return KindObjectChangeRaw, nil
	case "move_call":
		return KindMoveCall, nil
	case "transaction":
		return KindTransaction, nil
	case "effects":
		return KindEffects, nil
	case "gas_cost_summary":
		return KindGasCostSummary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, s)
	}
}

// TopicForEpoch derives the epoch-scoped stream topic for this kind.
func (k Kind) TopicForEpoch(epoch uint64) stream.Topic {
	return stream.Topic(strconv.FormatUint(epoch, 10) + "-" + k.String())
}

// PayloadToBytes encodes a payload for publication.
func (k Kind) PayloadToBytes(p Payload) ([]byte, error) {
	return Encode(p)
}

// PayloadFromBytes decodes a published payload.
func (k Kind) PayloadFromBytes(b []byte) (Payload, error) {
	return Decode(b)
}

var _ stream.PerEpochTopic[EventData, Metadata] = KindString
