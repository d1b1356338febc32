package txevents

import "txstream/internal/model"

// ObjectChange is one object-lifecycle transition observed while executing a
// transaction. The set of variants is closed and matches the categories the
// effects record reports.
type ObjectChange interface {
	isObjectChange()
}

// Created is an object that did not exist before the transaction.
type Created struct {
	Ref   model.ObjectRef `json:"ref"`
	Owner model.Owner     `json:"owner"`
}

// Mutated is an existing object whose version was incremented.
type Mutated struct {
	Ref   model.ObjectRef `json:"ref"`
	Owner model.Owner     `json:"owner"`
}

// Deleted is an object permanently removed from the ledger.
type Deleted struct {
	Ref model.ObjectRef `json:"ref"`
}

// Wrapped is an object that became embedded inside another object and is no
// longer independently addressable.
type Wrapped struct {
	Ref model.ObjectRef `json:"ref"`
}

// Unwrapped is an object that re-emerged from wrapped state.
type Unwrapped struct {
	Ref   model.ObjectRef `json:"ref"`
	Owner model.Owner     `json:"owner"`
}

// UnwrappedThenDeleted is an object unwrapped and deleted within the same
// transaction.
type UnwrappedThenDeleted struct {
	Ref model.ObjectRef `json:"ref"`
}

// LoadedChildObject is a child object read, but not mutated, during
// execution. It carries no digest since the state itself did not change.
type LoadedChildObject struct {
	ID      model.ObjectID       `json:"id"`
	Version model.SequenceNumber `json:"version"`
}

func (Created) isObjectChange()              {}
func (Mutated) isObjectChange()              {}
func (Deleted) isObjectChange()              {}
func (Wrapped) isObjectChange()              {}
func (Unwrapped) isObjectChange()            {}
func (UnwrappedThenDeleted) isObjectChange() {}
func (LoadedChildObject) isObjectChange()    {}

// changeRef returns the full object reference of a change, or false for
// LoadedChildObject, which carries id and version only.
func changeRef(c ObjectChange) (model.ObjectRef, bool) {
	switch c := c.(type) {
	case Created:
		return c.Ref, true
	case Mutated:
		return c.Ref, true
	case Deleted:
		return c.Ref, true
	case Wrapped:
		return c.Ref, true
	case Unwrapped:
		return c.Ref, true
	case UnwrappedThenDeleted:
		return c.Ref, true
	default:
		return model.ObjectRef{}, false
	}
}
