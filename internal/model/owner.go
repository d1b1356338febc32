package model

// OwnerKind discriminates the access-control descriptor of an object state.
type OwnerKind string

const (
	// OwnerAddress means the object is exclusively owned by an account address.
	OwnerAddress OwnerKind = "address"
	// OwnerObject means the object is a child of another object.
	OwnerObject OwnerKind = "object"
	// OwnerShared means the object is accessible to any transaction.
	OwnerShared OwnerKind = "shared"
	// OwnerImmutable means the object can never be mutated again.
	OwnerImmutable OwnerKind = "immutable"
)

// Owner is the access-control descriptor attached to an object state.
// Address is set for the address and object kinds; InitialSharedVersion is
// set for the shared kind.
type Owner struct {
	Kind                 OwnerKind      `json:"kind"`
	Address              Address        `json:"address,omitempty"`
	InitialSharedVersion SequenceNumber `json:"initial_shared_version,omitempty"`
}

// AddressOwner builds an address-owned descriptor.
func AddressOwner(addr Address) Owner {
	return Owner{Kind: OwnerAddress, Address: addr}
}

// SharedOwner builds a shared descriptor anchored at the version the object
// first became shared.
func SharedOwner(initial SequenceNumber) Owner {
	return Owner{Kind: OwnerShared, InitialSharedVersion: initial}
}
