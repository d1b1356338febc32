package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"txstream/internal/model"
)

// Store provides Postgres-backed object state reads and seeding.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// GetObjectByKey returns the object state at the exact version, or nil when
// no row exists.
func (s *Store) GetObjectByKey(ctx context.Context, id model.ObjectID, version model.SequenceNumber) (*model.Object, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT object_id, version, digest, object_kind, type_tag,
		       owner_kind, owner_address, initial_shared_version,
		       previous_transaction, storage_rebate, contents
		FROM objects
		WHERE object_id = $1 AND version = $2
	`, string(id), int64(version))

	var (
		obj           model.Object
		versionCol    int64
		sharedVersion int64
		rebate        int64
	)
	err := row.Scan(
		&obj.ID,
		&versionCol,
		&obj.Digest,
		&obj.Kind,
		&obj.TypeTag,
		&obj.Owner.Kind,
		&obj.Owner.Address,
		&sharedVersion,
		&obj.PreviousTransaction,
		&rebate,
		&obj.Contents,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read object %s@%d: %w", id, version, err)
	}

	obj.Version = model.SequenceNumber(versionCol)
	obj.Owner.InitialSharedVersion = model.SequenceNumber(sharedVersion)
	obj.StorageRebate = uint64(rebate)
	return &obj, nil
}

// UpsertObjects seeds a batch of object states.
func (s *Store) UpsertObjects(ctx context.Context, objects []model.Object) error {
	if len(objects) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, obj := range objects {
		batch.Queue(`
			INSERT INTO objects (
				object_id, version, digest, object_kind, type_tag,
				owner_kind, owner_address, initial_shared_version,
				previous_transaction, storage_rebate, contents, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (object_id, version)
			DO UPDATE SET
				digest = EXCLUDED.digest,
				object_kind = EXCLUDED.object_kind,
				type_tag = EXCLUDED.type_tag,
				owner_kind = EXCLUDED.owner_kind,
				owner_address = EXCLUDED.owner_address,
				initial_shared_version = EXCLUDED.initial_shared_version,
				previous_transaction = EXCLUDED.previous_transaction,
				storage_rebate = EXCLUDED.storage_rebate,
				contents = EXCLUDED.contents
		`,
			string(obj.ID),
			int64(obj.Version),
			string(obj.Digest),
			string(obj.Kind),
			obj.TypeTag,
			string(obj.Owner.Kind),
			string(obj.Owner.Address),
			int64(obj.Owner.InitialSharedVersion),
			string(obj.PreviousTransaction),
			int64(obj.StorageRebate),
			obj.Contents,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range objects {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
