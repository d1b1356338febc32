package model

// ExecutionStatus records whether execution succeeded.
type ExecutionStatus struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// GasCostSummary is the gas accounting of one executed transaction.
type GasCostSummary struct {
	ComputationCost         uint64 `json:"computation_cost"`
	StorageCost             uint64 `json:"storage_cost"`
	StorageRebate           uint64 `json:"storage_rebate"`
	NonRefundableStorageFee uint64 `json:"non_refundable_storage_fee"`
}

// OwnedObjectRef pairs an object reference with the owner of that state.
type OwnedObjectRef struct {
	Ref   ObjectRef `json:"ref"`
	Owner Owner     `json:"owner"`
}

// TransactionEffects is the immutable record of all state changes produced by
// executing one transaction. The per-category slices keep the order the
// execution engine reported.
type TransactionEffects struct {
	Status               ExecutionStatus     `json:"status"`
	ExecutedEpoch        uint64              `json:"executed_epoch"`
	Gas                  GasCostSummary      `json:"gas"`
	TransactionDigest    TransactionDigest   `json:"transaction_digest"`
	Created              []OwnedObjectRef    `json:"created,omitempty"`
	Mutated              []OwnedObjectRef    `json:"mutated,omitempty"`
	Deleted              []ObjectRef         `json:"deleted,omitempty"`
	Wrapped              []ObjectRef         `json:"wrapped,omitempty"`
	Unwrapped            []OwnedObjectRef    `json:"unwrapped,omitempty"`
	UnwrappedThenDeleted []ObjectRef         `json:"unwrapped_then_deleted,omitempty"`
	Dependencies         []TransactionDigest `json:"dependencies,omitempty"`
}
