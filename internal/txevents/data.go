package txevents

import (
	"txstream/internal/model"
	"txstream/internal/stream"
)

// EventData is the body of one published event. The set of variants is
// closed; every variant maps to exactly one Kind via Topic.
type EventData interface {
	Topic() Kind
	isEventData()
}

// StringData carries free-form text.
type StringData struct {
	Value string `json:"value"`
}

// PackagePublish carries a fully resolved published package object.
type PackagePublish struct {
	Object model.Object `json:"object"`
}

// ObjectChangeLight carries one lifecycle transition without resolved bytes.
type ObjectChangeLight struct {
	Change ObjectChange `json:"change"`
}

// ObjectChangeRaw pairs a lifecycle transition with the resolved object
// state. Object is nil when the state no longer exists at that version, for
// example after a deletion.
type ObjectChangeRaw struct {
	Change ObjectChange  `json:"change"`
	Object *model.Object `json:"object,omitempty"`
}

// MoveCall records one invocation of a published module's function.
type MoveCall struct {
	Package  model.ObjectID `json:"package"`
	Module   string         `json:"module"`
	Function string         `json:"function"`
}

// Transaction echoes the full logical content of the transaction.
type Transaction struct {
	Data model.TransactionData `json:"data"`
}

// Effects echoes the full effects record of the transaction.
type Effects struct {
	Effects model.TransactionEffects `json:"effects"`
}

// GasCostSummary carries the gas accounting of the transaction.
type GasCostSummary struct {
	Summary model.GasCostSummary `json:"summary"`
}

func (StringData) Topic() Kind        { return KindString }
func (PackagePublish) Topic() Kind    { return KindPackagePublish }
func (ObjectChangeLight) Topic() Kind { return KindObjectChangeLight }
func (ObjectChangeRaw) Topic() Kind   { return KindObjectChangeRaw }
func (MoveCall) Topic() Kind          { return KindMoveCall }
func (Transaction) Topic() Kind       { return KindTransaction }
func (Effects) Topic() Kind           { return KindEffects }
func (GasCostSummary) Topic() Kind    { return KindGasCostSummary }

func (StringData) isEventData()        {}
func (PackagePublish) isEventData()    {}
func (ObjectChangeLight) isEventData() {}
func (ObjectChangeRaw) isEventData()   {}
func (MoveCall) isEventData()          {}
func (Transaction) isEventData()       {}
func (Effects) isEventData()           {}
func (GasCostSummary) isEventData()    {}

// Metadata is attached identically to every event derived from one
// transaction.
type Metadata struct {
	ProcessedAtMS uint64                  `json:"processed_at_ms"`
	CheckpointID  uint64                  `json:"checkpoint_id"`
	Sender        model.Address           `json:"sender"`
	TxDigest      model.TransactionDigest `json:"tx_digest"`
}

// Payload is the envelope published for one transaction event.
type Payload = stream.Payload[EventData, Metadata]
