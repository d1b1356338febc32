package model

import "fmt"

// ObjectID is the 32-byte identity of a ledger object, 0x-prefixed lowercase
// hex. The fixed-width lowercase form is an invariant: lexicographic order of
// ids equals numeric order, which deterministic emission relies on.
type ObjectID string

// SequenceNumber is the version of an object state. It increments on every
// mutation of the object.
type SequenceNumber uint64

// ObjectDigest is the blake2b-256 digest of an object state, 0x-prefixed hex.
type ObjectDigest string

// Address is a 32-byte account address, 0x-prefixed lowercase hex.
type Address string

// TransactionDigest uniquely identifies one transaction.
type TransactionDigest string

// ObjectRef addresses one exact historical object state.
type ObjectRef struct {
	ID      ObjectID       `json:"id"`
	Version SequenceNumber `json:"version"`
	Digest  ObjectDigest   `json:"digest"`
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s@%d", r.ID, r.Version)
}
