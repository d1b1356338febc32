package txevents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"txstream/internal/model"
	"txstream/internal/store"
)

// failStore forces the fatal resolver path.
type failStore struct{}

func (failStore) GetObjectByKey(context.Context, model.ObjectID, model.SequenceNumber) (*model.Object, error) {
	return nil, fmt.Errorf("disk read failed")
}

func fixtureObject(id model.ObjectID, version model.SequenceNumber, kind model.ObjectKind) model.Object {
	contents := []byte(fmt.Sprintf("%s@%d", id, version))
	return model.Object{
		ID:       id,
		Version:  version,
		Digest:   model.DigestBytes(contents),
		Kind:     kind,
		Owner:    model.AddressOwner("0xaaaa"),
		Contents: contents,
	}
}

// fixture: one object per effects category. The created, mutated, and
// unwrapped states resolve from the store; the deleted, wrapped, and
// unwrapped-then-deleted states are gone and resolve to nil.
func fixtureInputs(t *testing.T) (*model.TransactionData, *model.TransactionEffects, map[model.ObjectID]model.SequenceNumber, *store.MemoryStore) {
	t.Helper()

	created := fixtureObject("0x0a", 1, model.ObjectMove)
	mutated := fixtureObject("0x0b", 5, model.ObjectMove)
	unwrapped := fixtureObject("0x12", 8, model.ObjectMove)
	loaded := fixtureObject("0x0d", 2, model.ObjectMove)

	objects := store.NewMemoryStore()
	objects.Seed([]model.Object{created, mutated, unwrapped, loaded})

	effects := &model.TransactionEffects{
		Status: model.ExecutionStatus{Success: true},
		Gas:    model.GasCostSummary{ComputationCost: 100, StorageCost: 50, StorageRebate: 10},
		Created: []model.OwnedObjectRef{
			{Ref: created.Ref(), Owner: created.Owner},
		},
		Mutated: []model.OwnedObjectRef{
			{Ref: mutated.Ref(), Owner: mutated.Owner},
		},
		Deleted: []model.ObjectRef{
			{ID: "0x0c", Version: 3, Digest: model.DigestBytes([]byte("gone"))},
		},
		Wrapped: []model.ObjectRef{
			{ID: "0x11", Version: 4, Digest: model.DigestBytes([]byte("wrapped"))},
		},
		Unwrapped: []model.OwnedObjectRef{
			{Ref: unwrapped.Ref(), Owner: unwrapped.Owner},
		},
		UnwrappedThenDeleted: []model.ObjectRef{
			{ID: "0x13", Version: 6, Digest: model.DigestBytes([]byte("unwrapped then gone"))},
		},
	}

	tx := &model.TransactionData{
		Sender: "0xaaaa",
		Gas:    model.GasData{Owner: "0xaaaa", Price: 1000, Budget: 10000},
		Calls: []model.MoveCall{
			{Package: "0x02", Module: "coin", Function: "split"},
			{Package: "0x02", Module: "coin", Function: "join"},
		},
	}

	children := map[model.ObjectID]model.SequenceNumber{"0x0d": 2}

	return tx, effects, children, objects
}

func topicsOf(emitted []Emitted) []Kind {
	out := make([]Kind, 0, len(emitted))
	for _, e := range emitted {
		out = append(out, e.Topic)
	}
	return out
}

func TestFromPostExecEmissionOrder(t *testing.T) {
	tx, effects, children, objects := fixtureInputs(t)

	emitted, err := FromPostExec(context.Background(), testMetadata(), tx, effects, children, objects)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	want := []Kind{
		KindObjectChangeLight, // created
		KindObjectChangeLight, // mutated
		KindObjectChangeLight, // deleted
		KindObjectChangeLight, // wrapped
		KindObjectChangeLight, // unwrapped
		KindObjectChangeLight, // unwrapped then deleted
		KindObjectChangeLight, // loaded child
		KindObjectChangeRaw,
		KindObjectChangeRaw,
		KindObjectChangeRaw,
		KindObjectChangeRaw,
		KindObjectChangeRaw,
		KindObjectChangeRaw,
		KindObjectChangeRaw,
		KindGasCostSummary,
		KindMoveCall,
		KindMoveCall,
		KindEffects,
		KindTransaction,
	}
	if got := topicsOf(emitted); !reflect.DeepEqual(got, want) {
		t.Fatalf("emission order mismatch:\n got %v\nwant %v", got, want)
	}

	lights := make([]ObjectChange, 7)
	for i := range lights {
		lights[i] = emitted[i].Payload.Data.(ObjectChangeLight).Change
	}
	if _, ok := lights[0].(Created); !ok {
		t.Fatalf("light change 0 should be Created, got %T", lights[0])
	}
	if _, ok := lights[1].(Mutated); !ok {
		t.Fatalf("light change 1 should be Mutated, got %T", lights[1])
	}
	if _, ok := lights[2].(Deleted); !ok {
		t.Fatalf("light change 2 should be Deleted, got %T", lights[2])
	}
	if _, ok := lights[3].(Wrapped); !ok {
		t.Fatalf("light change 3 should be Wrapped, got %T", lights[3])
	}
	if _, ok := lights[4].(Unwrapped); !ok {
		t.Fatalf("light change 4 should be Unwrapped, got %T", lights[4])
	}
	if _, ok := lights[5].(UnwrappedThenDeleted); !ok {
		t.Fatalf("light change 5 should be UnwrappedThenDeleted, got %T", lights[5])
	}
	if _, ok := lights[6].(LoadedChildObject); !ok {
		t.Fatalf("light change 6 should be LoadedChildObject, got %T", lights[6])
	}

	// Raw changes mirror the light block in the same relative order.
	for i := 0; i < 7; i++ {
		raw := emitted[7+i].Payload.Data.(ObjectChangeRaw)
		if !reflect.DeepEqual(raw.Change, lights[i]) {
			t.Fatalf("raw change %d does not mirror light change: %+v != %+v", i, raw.Change, lights[i])
		}
	}

	if call := emitted[15].Payload.Data.(MoveCall); call.Function != "split" {
		t.Fatalf("move calls out of call order: %+v", call)
	}
	if call := emitted[16].Payload.Data.(MoveCall); call.Function != "join" {
		t.Fatalf("move calls out of call order: %+v", call)
	}

	// Metadata is identical on every payload.
	for i, e := range emitted {
		if e.Payload.Metadata != testMetadata() {
			t.Fatalf("payload %d carries different metadata: %+v", i, e.Payload.Metadata)
		}
	}
}

func TestFromPostExecResolutionAbsence(t *testing.T) {
	tx, effects, children, objects := fixtureInputs(t)

	emitted, err := FromPostExec(context.Background(), testMetadata(), tx, effects, children, objects)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var deletedRaw, mutatedRaw, wrappedRaw, unwrappedRaw, unwrappedGoneRaw *ObjectChangeRaw
	for _, e := range emitted {
		raw, ok := e.Payload.Data.(ObjectChangeRaw)
		if !ok {
			continue
		}
		switch raw.Change.(type) {
		case Deleted:
			deletedRaw = &raw
		case Mutated:
			mutatedRaw = &raw
		case Wrapped:
			wrappedRaw = &raw
		case Unwrapped:
			unwrappedRaw = &raw
		case UnwrappedThenDeleted:
			unwrappedGoneRaw = &raw
		}
	}

	if deletedRaw == nil || deletedRaw.Object != nil {
		t.Fatalf("deleted raw change should carry no object: %+v", deletedRaw)
	}
	if wrappedRaw == nil || wrappedRaw.Object != nil {
		t.Fatalf("wrapped raw change should carry no object: %+v", wrappedRaw)
	}
	if unwrappedGoneRaw == nil || unwrappedGoneRaw.Object != nil {
		t.Fatalf("unwrapped-then-deleted raw change should carry no object: %+v", unwrappedGoneRaw)
	}
	if mutatedRaw == nil || mutatedRaw.Object == nil {
		t.Fatalf("mutated raw change should carry the resolved object: %+v", mutatedRaw)
	}
	if mutatedRaw.Object.Version != 5 {
		t.Fatalf("resolved wrong version: %d", mutatedRaw.Object.Version)
	}
	if unwrappedRaw == nil || unwrappedRaw.Object == nil {
		t.Fatalf("unwrapped raw change should carry the resolved object: %+v", unwrappedRaw)
	}
	if unwrappedRaw.Object.Version != 8 {
		t.Fatalf("resolved wrong version for unwrapped object: %d", unwrappedRaw.Object.Version)
	}
}

func TestFromPostExecPackageDetection(t *testing.T) {
	tx, effects, children, objects := fixtureInputs(t)

	createdPkg := fixtureObject("0x0e", 1, model.ObjectPackage)
	mutatedPkg := fixtureObject("0x0f", 3, model.ObjectPackage)
	objects.Put(createdPkg)
	objects.Put(mutatedPkg)
	effects.Created = append(effects.Created, model.OwnedObjectRef{
		Ref:   createdPkg.Ref(),
		Owner: model.Owner{Kind: model.OwnerImmutable},
	})
	effects.Mutated = append(effects.Mutated, model.OwnedObjectRef{
		Ref:   mutatedPkg.Ref(),
		Owner: model.Owner{Kind: model.OwnerImmutable},
	})

	emitted, err := FromPostExec(context.Background(), testMetadata(), tx, effects, children, objects)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var publishes []PackagePublish
	lastLight := -1
	firstPublish := -1
	for i, e := range emitted {
		switch d := e.Payload.Data.(type) {
		case PackagePublish:
			publishes = append(publishes, d)
			if firstPublish == -1 {
				firstPublish = i
			}
		case ObjectChangeLight:
			lastLight = i
		}
	}

	if len(publishes) != 2 {
		t.Fatalf("expected one package publish per resolved package, got %d", len(publishes))
	}
	// Publishes follow object-emission order: the created package's light
	// change precedes the mutated one's.
	if publishes[0].Object.ID != createdPkg.ID {
		t.Fatalf("first publish should carry the created package: %+v", publishes[0].Object)
	}
	if publishes[1].Object.ID != mutatedPkg.ID {
		t.Fatalf("second publish should carry the mutated package: %+v", publishes[1].Object)
	}
	if firstPublish != lastLight+1 {
		t.Fatalf("package publishes not immediately after light block: light ends %d, first publish at %d", lastLight, firstPublish)
	}
}

func TestFromPostExecLoadedChildOrder(t *testing.T) {
	tx, effects, _, objects := fixtureInputs(t)

	children := map[model.ObjectID]model.SequenceNumber{
		"0x0f": 1,
		"0x0d": 2,
		"0x0e": 3,
	}
	for id, version := range children {
		objects.Put(fixtureObject(id, version, model.ObjectMove))
	}

	emitted, err := FromPostExec(context.Background(), testMetadata(), tx, effects, children, objects)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	var loadedIDs []model.ObjectID
	for _, e := range emitted {
		light, ok := e.Payload.Data.(ObjectChangeLight)
		if !ok {
			continue
		}
		if child, ok := light.Change.(LoadedChildObject); ok {
			loadedIDs = append(loadedIDs, child.ID)
		}
	}

	want := []model.ObjectID{"0x0d", "0x0e", "0x0f"}
	if !reflect.DeepEqual(loadedIDs, want) {
		t.Fatalf("loaded children not in ascending id order: %v", loadedIDs)
	}
}

func TestFromPostExecFatalStoreError(t *testing.T) {
	tx, effects, children, _ := fixtureInputs(t)

	emitted, err := FromPostExec(context.Background(), testMetadata(), tx, effects, children, failStore{})
	if emitted != nil {
		t.Fatalf("expected no partial list, got %d events", len(emitted))
	}
	var inconsistency *StoreInconsistencyError
	if !errors.As(err, &inconsistency) {
		t.Fatalf("expected StoreInconsistencyError, got %v", err)
	}
	if inconsistency.ID == "" {
		t.Fatalf("error should identify the failed read: %+v", inconsistency)
	}
}

func TestFromPostExecDeterministic(t *testing.T) {
	tx, effects, children, objects := fixtureInputs(t)

	encode := func() [][]byte {
		emitted, err := FromPostExec(context.Background(), testMetadata(), tx, effects, children, objects)
		if err != nil {
			t.Fatalf("extract: %v", err)
		}
		out := make([][]byte, 0, len(emitted))
		for _, e := range emitted {
			b, err := Encode(e.Payload)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			out = append(out, b)
		}
		return out
	}

	first := encode()
	second := encode()
	if len(first) != len(second) {
		t.Fatalf("event counts differ: %d != %d", len(first), len(second))
	}
	for i := range first {
		if !bytes.Equal(first[i], second[i]) {
			t.Fatalf("event %d encodes differently across runs", i)
		}
	}
}
