// Package replay feeds committed transactions through event extraction and
// out to a publisher. Records come from a JSONL capture of the execution
// engine's post-commit handoff.
package replay

import (
	"fmt"

	"txstream/internal/model"
)

// Record is one committed transaction: the extraction inputs plus the object
// states its resolution will need when no live object store is configured.
type Record struct {
	Epoch              uint64                                  `json:"epoch"`
	CheckpointID       uint64                                  `json:"checkpoint_id"`
	Sender             model.Address                           `json:"sender"`
	TxDigest           model.TransactionDigest                 `json:"tx_digest"`
	Transaction        model.TransactionData                   `json:"transaction"`
	Effects            model.TransactionEffects                `json:"effects"`
	LoadedChildObjects map[model.ObjectID]model.SequenceNumber `json:"loaded_child_objects,omitempty"`
	Objects            []model.Object                          `json:"objects,omitempty"`
}

// Validate checks the fields extraction cannot work without.
func (r *Record) Validate() error {
	if r.Sender == "" {
		return fmt.Errorf("record has no sender")
	}
	if r.TxDigest == "" {
		return fmt.Errorf("record has no transaction digest")
	}
	return nil
}
