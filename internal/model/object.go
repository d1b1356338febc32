package model

// ObjectKind discriminates the payload of an object state.
type ObjectKind string

const (
	// ObjectMove is an ordinary typed object.
	ObjectMove ObjectKind = "move"
	// ObjectPackage is a published package of executable modules.
	ObjectPackage ObjectKind = "package"
)

// Object is one resolved object state as served by the object store.
type Object struct {
	ID                  ObjectID          `json:"id"`
	Version             SequenceNumber    `json:"version"`
	Digest              ObjectDigest      `json:"digest"`
	Kind                ObjectKind        `json:"object_kind"`
	TypeTag             string            `json:"type_tag,omitempty"`
	Owner               Owner             `json:"owner"`
	PreviousTransaction TransactionDigest `json:"previous_transaction"`
	StorageRebate       uint64            `json:"storage_rebate"`
	Contents            []byte            `json:"contents"`
}

// Ref returns the addressing triple for this exact state.
func (o *Object) Ref() ObjectRef {
	return ObjectRef{ID: o.ID, Version: o.Version, Digest: o.Digest}
}

// IsPackage reports whether the object is a published package.
func (o *Object) IsPackage() bool {
	return o.Kind == ObjectPackage
}
