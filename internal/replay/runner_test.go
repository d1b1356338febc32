package replay

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"txstream/internal/model"
	"txstream/internal/stream"
	"txstream/internal/txevents"
)

// capturePublisher records everything published.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	bodies [][]byte
}

func (p *capturePublisher) Publish(ctx context.Context, topic stream.Topic, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic.String())
	p.bodies = append(p.bodies, payload)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func writeRecords(t *testing.T, records []Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "txs.jsonl")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create input: %v", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			t.Fatalf("write record: %v", err)
		}
	}
	return path
}

func testRecord() Record {
	created := model.Object{
		ID:       "0x01",
		Version:  1,
		Digest:   model.DigestBytes([]byte("created")),
		Kind:     model.ObjectMove,
		Owner:    model.AddressOwner("0xaaaa"),
		Contents: []byte("created"),
	}
	return Record{
		Epoch:        7,
		CheckpointID: 100,
		Sender:       "0xaaaa",
		TxDigest:     "0xd1",
		Transaction: model.TransactionData{
			Sender: "0xaaaa",
			Calls:  []model.MoveCall{{Package: "0x02", Module: "coin", Function: "mint"}},
		},
		Effects: model.TransactionEffects{
			Status:  model.ExecutionStatus{Success: true},
			Gas:     model.GasCostSummary{ComputationCost: 1},
			Created: []model.OwnedObjectRef{{Ref: created.Ref(), Owner: created.Owner}},
		},
		Objects: []model.Object{created},
	}
}

func TestRunnerPublishesOrderedTopics(t *testing.T) {
	path := writeRecords(t, []Record{testRecord()})

	sink := &capturePublisher{}
	runner := NewRunner(RunConfig{In: path}, nil, sink, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// One created object: light, raw, gas, one move call, effects, transaction.
	want := []string{
		"7-object_change_light",
		"7-object_change_raw",
		"7-gas_cost_summary",
		"7-move_call",
		"7-effects",
		"7-transaction",
	}
	if len(sink.topics) != len(want) {
		t.Fatalf("published %d payloads, want %d: %v", len(sink.topics), len(want), sink.topics)
	}
	for i := range want {
		if sink.topics[i] != want[i] {
			t.Fatalf("topic %d mismatch: %s != %s", i, sink.topics[i], want[i])
		}
	}

	// Every payload decodes and carries the record's metadata.
	for i, body := range sink.bodies {
		payload, err := txevents.Decode(body)
		if err != nil {
			t.Fatalf("decode payload %d: %v", i, err)
		}
		if payload.Metadata.TxDigest != "0xd1" || payload.Metadata.CheckpointID != 100 {
			t.Fatalf("payload %d metadata mismatch: %+v", i, payload.Metadata)
		}
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	rec := testRecord()
	path := writeRecords(t, []Record{rec, rec})
	cpPath := filepath.Join(t.TempDir(), "checkpoint.json")

	first := &capturePublisher{}
	runner := NewRunner(RunConfig{In: path, CheckpointPath: cpPath, CheckpointEnabled: true}, nil, first, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.topics) != 12 {
		t.Fatalf("first run published %d payloads, want 12", len(first.topics))
	}

	second := &capturePublisher{}
	runner = NewRunner(RunConfig{In: path, CheckpointPath: cpPath, CheckpointEnabled: true}, nil, second, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.topics) != 0 {
		t.Fatalf("second run republished %d payloads", len(second.topics))
	}
}

func TestRunnerAbsentObjectIsNotFatal(t *testing.T) {
	rec := testRecord()
	rec.Objects = nil // the created object can no longer be resolved

	// An absent object is a valid outcome (nil), not an inconsistency, so the
	// run still succeeds; the raw change simply carries no object.
	path := writeRecords(t, []Record{rec})
	sink := &capturePublisher{}
	runner := NewRunner(RunConfig{In: path}, nil, sink, nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	raw, err := txevents.Decode(sink.bodies[1])
	if err != nil {
		t.Fatalf("decode raw change: %v", err)
	}
	change, ok := raw.Data.(txevents.ObjectChangeRaw)
	if !ok {
		t.Fatalf("expected raw change, got %T", raw.Data)
	}
	if change.Object != nil {
		t.Fatalf("unresolved object should be nil, got %+v", change.Object)
	}
}

func TestRunnerRejectsInvalidRecord(t *testing.T) {
	rec := testRecord()
	rec.Sender = ""
	path := writeRecords(t, []Record{rec})

	runner := NewRunner(RunConfig{In: path}, nil, &capturePublisher{}, nil)
	if err := runner.Run(context.Background()); err == nil {
		t.Fatalf("expected error for record without sender")
	}
}
