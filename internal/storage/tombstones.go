package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/timshannon/bolthold"
)

type tombstoneRepository struct {
	store *bolthold.Store
}

func NewTombstoneRepository(store *bolthold.Store) domain.TombstoneRepository {
	return &tombstoneRepository{store: store}
}

func (r *tombstoneRepository) RecordDeletion(ctx context.Context, kind domain.Kind, key string, deletedAt int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tombstone := &domain.Tombstone{Kind: kind, Key: key, DeletedAt: deletedAt}
	if err := r.store.Upsert(domain.TombstoneKey(kind, key), tombstone); err != nil {
		return fmt.Errorf("recording deletion: %w", err)
	}
	return nil
}

func (r *tombstoneRepository) ClearDeletion(ctx context.Context, kind domain.Kind, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.Delete(domain.TombstoneKey(kind, key), &domain.Tombstone{})
	if err != nil && !errors.Is(err, bolthold.ErrNotFound) {
		return fmt.Errorf("clearing deletion: %w", err)
	}
	return nil
}

func (r *tombstoneRepository) AllDeletions(ctx context.Context, kind domain.Kind) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tombstones []domain.Tombstone
	err := r.store.Find(&tombstones, bolthold.Where("Kind").Eq(kind).Index("Kind"))
	if err != nil {
		return nil, fmt.Errorf("listing deletions: %w", err)
	}

	deletions := make(map[string]int64, len(tombstones))
	for _, t := range tombstones {
		deletions[t.Key] = t.DeletedAt
	}
	return deletions, nil
}
