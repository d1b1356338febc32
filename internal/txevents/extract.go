package txevents

import (
	"context"
	"fmt"
	"sort"

	"txstream/internal/model"
)

// ObjectStore serves point reads of object states by exact identity and
// version. A nil object with a nil error means the state does not exist at
// that version, which is a valid answer. A non-nil error means the store
// contradicts the just-committed effects; see StoreInconsistencyError.
// Implementations must be safe for concurrent reads.
type ObjectStore interface {
	GetObjectByKey(ctx context.Context, id model.ObjectID, version model.SequenceNumber) (*model.Object, error)
}

// StoreInconsistencyError reports that the object store failed a read the
// just-committed effects guarantee must succeed. It signals a correctness
// bug in execution or storage. Callers must treat it as fatal: never retry,
// never substitute a value, never publish a partial list.
type StoreInconsistencyError struct {
	ID      model.ObjectID
	Version model.SequenceNumber
	Cause   error
}

func (e *StoreInconsistencyError) Error() string {
	return fmt.Sprintf("object store inconsistency: read %s@%d: %v", e.ID, e.Version, e.Cause)
}

func (e *StoreInconsistencyError) Unwrap() error {
	return e.Cause
}

// Emitted is one event ready for the publishing layer: the envelope plus the
// kind that names its destination topic.
type Emitted struct {
	Payload Payload
	Topic   Kind
}

// FromPostExec derives the complete, ordered event list for one committed
// transaction. Every payload carries the same metadata. The emission order
// is a contract with downstream consumers:
//
//  1. one ObjectChangeLight per created, mutated, deleted, wrapped,
//     unwrapped, and unwrapped-then-deleted object, in that category order,
//     per-category in effects order, then one per loaded child object in
//     ascending id order;
//  2. one PackagePublish per resolved package, in emission order;
//  3. one ObjectChangeRaw per light change, same relative order;
//  4. one GasCostSummary;
//  5. one MoveCall per recorded call, in call order;
//  6. one Effects;
//  7. one Transaction, last.
//
// The only failure path is a *StoreInconsistencyError from the object store;
// on failure no partial list is returned.
func FromPostExec(
	ctx context.Context,
	meta Metadata,
	tx *model.TransactionData,
	effects *model.TransactionEffects,
	loadedChildObjects map[model.ObjectID]model.SequenceNumber,
	objects ObjectStore,
) ([]Emitted, error) {
	data, err := extractData(ctx, tx, effects, loadedChildObjects, objects)
	if err != nil {
		return nil, err
	}

	out := make([]Emitted, 0, len(data))
	for _, d := range data {
		out = append(out, Emitted{
			Payload: Payload{Metadata: meta, Data: d},
			Topic:   d.Topic(),
		})
	}
	return out, nil
}

func extractData(
	ctx context.Context,
	tx *model.TransactionData,
	effects *model.TransactionEffects,
	loadedChildObjects map[model.ObjectID]model.SequenceNumber,
	objects ObjectStore,
) ([]EventData, error) {
	var result []EventData

	for _, c := range effects.Created {
		result = append(result, ObjectChangeLight{Change: Created{Ref: c.Ref, Owner: c.Owner}})
	}
	for _, c := range effects.Mutated {
		result = append(result, ObjectChangeLight{Change: Mutated{Ref: c.Ref, Owner: c.Owner}})
	}
	for _, ref := range effects.Deleted {
		result = append(result, ObjectChangeLight{Change: Deleted{Ref: ref}})
	}
	for _, ref := range effects.Wrapped {
		result = append(result, ObjectChangeLight{Change: Wrapped{Ref: ref}})
	}
	for _, c := range effects.Unwrapped {
		result = append(result, ObjectChangeLight{Change: Unwrapped{Ref: c.Ref, Owner: c.Owner}})
	}
	for _, ref := range effects.UnwrappedThenDeleted {
		result = append(result, ObjectChangeLight{Change: UnwrappedThenDeleted{Ref: ref}})
	}
	for _, id := range sortedChildIDs(loadedChildObjects) {
		result = append(result, ObjectChangeLight{
			Change: LoadedChildObject{ID: id, Version: loadedChildObjects[id]},
		})
	}

	// Resolve the state behind every light change. Package objects surface as
	// extra PackagePublish events between the light and raw blocks.
	var packages []EventData
	var raws []EventData
	for _, d := range result {
		light, ok := d.(ObjectChangeLight)
		if !ok {
			continue
		}

		switch c := light.Change.(type) {
		case LoadedChildObject:
			obj, err := objects.GetObjectByKey(ctx, c.ID, c.Version)
			if err != nil {
				return nil, &StoreInconsistencyError{ID: c.ID, Version: c.Version, Cause: err}
			}
			raws = append(raws, ObjectChangeRaw{Change: light.Change, Object: obj})
		default:
			ref, _ := changeRef(light.Change)
			obj, err := objects.GetObjectByKey(ctx, ref.ID, ref.Version)
			if err != nil {
				return nil, &StoreInconsistencyError{ID: ref.ID, Version: ref.Version, Cause: err}
			}
			if obj != nil && obj.IsPackage() {
				packages = append(packages, PackagePublish{Object: *obj})
			}
			raws = append(raws, ObjectChangeRaw{Change: light.Change, Object: obj})
		}
	}
	result = append(result, packages...)
	result = append(result, raws...)

	result = append(result, GasCostSummary{Summary: effects.Gas})

	for _, call := range tx.MoveCalls() {
		result = append(result, MoveCall{
			Package:  call.Package,
			Module:   call.Module,
			Function: call.Function,
		})
	}

	result = append(result, Effects{Effects: *effects})
	result = append(result, Transaction{Data: *tx})

	return result, nil
}

// sortedChildIDs orders the loaded-child map for deterministic emission.
// model.ObjectID guarantees fixed-width lowercase hex, so lexicographic
// order is numeric order.
func sortedChildIDs(loaded map[model.ObjectID]model.SequenceNumber) []model.ObjectID {
	ids := make([]model.ObjectID, 0, len(loaded))
	for id := range loaded {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
