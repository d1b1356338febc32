package txevents

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"txstream/internal/model"
)

// DecodeError reports malformed payload bytes. It is recoverable by the
// caller.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return "decode payload: " + e.Cause.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// EncodeError reports a failure serializing a well-formed payload. It
// indicates a bug rather than bad input; callers must not recover it into
// published output.
type EncodeError struct {
	Cause error
}

func (e *EncodeError) Error() string {
	return "encode payload: " + e.Cause.Error()
}

func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// Payloads go on the wire in core-deterministic CBOR so a given value always
// encodes to the same bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

type wireEnvelope struct {
	Meta Metadata        `json:"meta"`
	Kind uint8           `json:"kind"`
	Body cbor.RawMessage `json:"body"`
}

const (
	changeCreated uint8 = iota
	changeMutated
	changeDeleted
	changeWrapped
	changeUnwrapped
	changeUnwrappedThenDeleted
	changeLoadedChild
)

type wireChange struct {
	Kind    uint8                `json:"kind"`
	Ref     *model.ObjectRef     `json:"ref,omitempty"`
	Owner   *model.Owner         `json:"owner,omitempty"`
	ID      model.ObjectID       `json:"id,omitempty"`
	Version model.SequenceNumber `json:"version,omitempty"`
}

type wireRawChange struct {
	Change wireChange    `json:"change"`
	Object *model.Object `json:"object,omitempty"`
}

// Encode serializes a payload to its canonical wire form.
func Encode(p Payload) ([]byte, error) {
	if p.Data == nil {
		return nil, &EncodeError{Cause: errors.New("payload has no data")}
	}

	body, err := encodeBody(p.Data)
	if err != nil {
		return nil, err
	}

	out, err := encMode.Marshal(wireEnvelope{
		Meta: p.Metadata,
		Kind: uint8(p.Data.Topic()),
		Body: body,
	})
	if err != nil {
		return nil, &EncodeError{Cause: err}
	}
	return out, nil
}

// Decode reverses Encode. It fails with a DecodeError on empty, truncated,
// or structurally invalid input.
func Decode(b []byte) (Payload, error) {
	if len(b) == 0 {
		return Payload{}, &DecodeError{Cause: errors.New("empty payload")}
	}

	var env wireEnvelope
	if err := decMode.Unmarshal(b, &env); err != nil {
		return Payload{}, &DecodeError{Cause: err}
	}

	data, err := decodeBody(Kind(env.Kind), env.Body)
	if err != nil {
		return Payload{}, err
	}

	return Payload{Metadata: env.Meta, Data: data}, nil
}

func encodeBody(d EventData) (cbor.RawMessage, error) {
	var (
		raw []byte
		err error
	)

	switch d := d.(type) {
	case StringData:
		raw, err = encMode.Marshal(d.Value)
	case PackagePublish:
		raw, err = encMode.Marshal(d.Object)
	case ObjectChangeLight:
		var wc wireChange
		wc, err = encodeChange(d.Change)
		if err == nil {
			raw, err = encMode.Marshal(wc)
		}
	case ObjectChangeRaw:
		var wc wireChange
		wc, err = encodeChange(d.Change)
		if err == nil {
			raw, err = encMode.Marshal(wireRawChange{Change: wc, Object: d.Object})
		}
	case MoveCall:
		raw, err = encMode.Marshal(d)
	case Transaction:
		raw, err = encMode.Marshal(d.Data)
	case Effects:
		raw, err = encMode.Marshal(d.Effects)
	case GasCostSummary:
		raw, err = encMode.Marshal(d.Summary)
	default:
		err = fmt.Errorf("unhandled event data %T", d)
	}

	if err != nil {
		return nil, &EncodeError{Cause: err}
	}
	return raw, nil
}

func decodeBody(kind Kind, body cbor.RawMessage) (EventData, error) {
	if len(body) == 0 {
		return nil, &DecodeError{Cause: errors.New("missing event body")}
	}

	switch kind {
	case KindString:
		var v string
		if err := decMode.Unmarshal(body, &v); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		return StringData{Value: v}, nil
	case KindPackagePublish:
		var obj model.Object
		if err := decMode.Unmarshal(body, &obj); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		return PackagePublish{Object: obj}, nil
	case KindObjectChangeLight:
		var wc wireChange
		if err := decMode.Unmarshal(body, &wc); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		change, err := decodeChange(wc)
		if err != nil {
			return nil, err
		}
		return ObjectChangeLight{Change: change}, nil
	case KindObjectChangeRaw:
		var wr wireRawChange
		if err := decMode.Unmarshal(body, &wr); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		change, err := decodeChange(wr.Change)
		if err != nil {
			return nil, err
		}
		return ObjectChangeRaw{Change: change, Object: wr.Object}, nil
	case KindMoveCall:
		var call MoveCall
		if err := decMode.Unmarshal(body, &call); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		return call, nil
	case KindTransaction:
		var tx model.TransactionData
		if err := decMode.Unmarshal(body, &tx); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		return Transaction{Data: tx}, nil
	case KindEffects:
		var eff model.TransactionEffects
		if err := decMode.Unmarshal(body, &eff); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		return Effects{Effects: eff}, nil
	case KindGasCostSummary:
		var sum model.GasCostSummary
		if err := decMode.Unmarshal(body, &sum); err != nil {
			return nil, &DecodeError{Cause: err}
		}
		return GasCostSummary{Summary: sum}, nil
	default:
		return nil, &DecodeError{Cause: fmt.Errorf("unknown event kind %d", uint8(kind))}
	}
}

func encodeChange(c ObjectChange) (wireChange, error) {
	switch c := c.(type) {
	case Created:
		return wireChange{Kind: changeCreated, Ref: &c.Ref, Owner: &c.Owner}, nil
	case Mutated:
		return wireChange{Kind: changeMutated, Ref: &c.Ref, Owner: &c.Owner}, nil
	case Deleted:
		return wireChange{Kind: changeDeleted, Ref: &c.Ref}, nil
	case Wrapped:
		return wireChange{Kind: changeWrapped, Ref: &c.Ref}, nil
	case Unwrapped:
		return wireChange{Kind: changeUnwrapped, Ref: &c.Ref, Owner: &c.Owner}, nil
	case UnwrappedThenDeleted:
		return wireChange{Kind: changeUnwrappedThenDeleted, Ref: &c.Ref}, nil
	case LoadedChildObject:
		return wireChange{Kind: changeLoadedChild, ID: c.ID, Version: c.Version}, nil
	default:
		return wireChange{}, fmt.Errorf("unhandled object change %T", c)
	}
}

func decodeChange(w wireChange) (ObjectChange, error) {
	needRef := func() (model.ObjectRef, error) {
		if w.Ref == nil {
			return model.ObjectRef{}, &DecodeError{Cause: errors.New("object change missing ref")}
		}
		return *w.Ref, nil
	}
	needOwner := func() (model.Owner, error) {
		if w.Owner == nil {
			return model.Owner{}, &DecodeError{Cause: errors.New("object change missing owner")}
		}
		return *w.Owner, nil
	}

	switch w.Kind {
	case changeCreated:
		ref, err := needRef()
		if err != nil {
			return nil, err
		}
		owner, err := needOwner()
		if err != nil {
			return nil, err
		}
		return Created{Ref: ref, Owner: owner}, nil
	case changeMutated:
		ref, err := needRef()
		if err != nil {
			return nil, err
		}
		owner, err := needOwner()
		if err != nil {
			return nil, err
		}
		return Mutated{Ref: ref, Owner: owner}, nil
	case changeDeleted:
		ref, err := needRef()
		if err != nil {
			return nil, err
		}
		return Deleted{Ref: ref}, nil
	case changeWrapped:
		ref, err := needRef()
		if err != nil {
			return nil, err
		}
		return Wrapped{Ref: ref}, nil
	case changeUnwrapped:
		ref, err := needRef()
		if err != nil {
			return nil, err
		}
		owner, err := needOwner()
		if err != nil {
			return nil, err
		}
		return Unwrapped{Ref: ref, Owner: owner}, nil
	case changeUnwrappedThenDeleted:
		ref, err := needRef()
		if err != nil {
			return nil, err
		}
		return UnwrappedThenDeleted{Ref: ref}, nil
	case changeLoadedChild:
		if w.ID == "" {
			return nil, &DecodeError{Cause: errors.New("loaded child change missing id")}
		}
		return LoadedChildObject{ID: w.ID, Version: w.Version}, nil
	default:
		return nil, &DecodeError{Cause: fmt.Errorf("unknown object change kind %d", w.Kind)}
	}
}
