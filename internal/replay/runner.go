package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"txstream/internal/publish"
	"txstream/internal/store"
	"txstream/internal/txevents"
)

const maxRecordBytes = 16 * 1024 * 1024

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	In                string
	CheckpointPath    string
	CheckpointEnabled bool
}

// Runner streams committed-transaction records through extraction and hands
// every encoded payload to the publisher.
type Runner struct {
	cfg        RunConfig
	objects    txevents.ObjectStore
	publisher  publish.Publisher
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner. When objects is nil, each record's embedded
// object states seed a fresh in-memory store for that record.
func NewRunner(cfg RunConfig, objects txevents.ObjectStore, publisher publish.Publisher, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		objects:    objects,
		publisher:  publisher,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the replay loop. A store inconsistency or encode failure
// aborts the whole run; nothing partial is published for that record's
// transaction beyond what the publisher already accepted.
func (r *Runner) Run(ctx context.Context) error {
	if r.publisher == nil {
		return fmt.Errorf("publisher is nil")
	}
	if r.cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	var resumeAfter uint64
	if cp, ok, err := r.checkpoint.Load(); err != nil {
		return err
	} else if ok {
		resumeAfter = cp.LastProcessedRecord
		r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", resumeAfter))
	}

	file, err := os.Open(r.cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxRecordBytes)

	var (
		index        uint64
		transactions uint64
		events       uint64
	)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		index++
		if index <= resumeAfter {
			continue
		}

		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("record %d: parse: %w", index, err)
		}
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", index, err)
		}

		published, err := r.process(ctx, &rec)
		if err != nil {
			return fmt.Errorf("record %d (%s): %w", index, rec.TxDigest, err)
		}

		if err := r.checkpoint.Save(index); err != nil {
			return err
		}

		transactions++
		events += published
		r.logger.Info("published transaction events",
			zap.String("tx_digest", string(rec.TxDigest)),
			zap.Uint64("epoch", rec.Epoch),
			zap.Uint64("events", published))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	r.logger.Info("replay complete",
		zap.Uint64("transactions", transactions),
		zap.Uint64("events", events))
	return nil
}

func (r *Runner) process(ctx context.Context, rec *Record) (uint64, error) {
	objects := r.objects
	if objects == nil {
		mem := store.NewMemoryStore()
		mem.Seed(rec.Objects)
		objects = mem
	}

	meta := txevents.Metadata{
		ProcessedAtMS: uint64(time.Now().UnixMilli()),
		CheckpointID:  rec.CheckpointID,
		Sender:        rec.Sender,
		TxDigest:      rec.TxDigest,
	}

	emitted, err := txevents.FromPostExec(ctx, meta, &rec.Transaction, &rec.Effects, rec.LoadedChildObjects, objects)
	if err != nil {
		return 0, err
	}

	for _, e := range emitted {
		payload, err := txevents.Encode(e.Payload)
		if err != nil {
			return 0, err
		}
		topic := e.Topic.TopicForEpoch(rec.Epoch)
		if err := r.publisher.Publish(ctx, topic, payload); err != nil {
			return 0, fmt.Errorf("publish to %s: %w", topic, err)
		}
	}
	return uint64(len(emitted)), nil
}
