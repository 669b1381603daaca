package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/google/uuid"
	"github.com/timshannon/bolthold"
)

const metaKey = "meta"

type syncMeta struct {
	DeviceID         string
	LastExportedAt   int64
	LastImportedAt   int64
	ImportCheckpoint string
}

type syncMetaRepository struct {
	store *bolthold.Store
}

func NewSyncMetaRepository(store *bolthold.Store) domain.SyncMetaRepository {
	return &syncMetaRepository{store: store}
}

func (r *syncMetaRepository) load(ctx context.Context) (*syncMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var meta syncMeta
	err := r.store.Get(metaKey, &meta)
	if errors.Is(err, bolthold.ErrNotFound) {
		return &syncMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading sync meta: %w", err)
	}
	return &meta, nil
}

func (r *syncMetaRepository) save(meta *syncMeta) error {
	if err := r.store.Upsert(metaKey, meta); err != nil {
		return fmt.Errorf("saving sync meta: %w", err)
	}
	return nil
}

func (r *syncMetaRepository) DeviceID(ctx context.Context) (string, error) {
	meta, err := r.load(ctx)
	if err != nil {
		return "", err
	}

	if meta.DeviceID == "" {
		meta.DeviceID = uuid.NewString()
		if err := r.save(meta); err != nil {
			return "", err
		}
	}
	return meta.DeviceID, nil
}

func (r *syncMetaRepository) Info(ctx context.Context) (*domain.SyncInfo, error) {
	meta, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SyncInfo{
		DeviceID:         meta.DeviceID,
		LastExportedAt:   meta.LastExportedAt,
		LastImportedAt:   meta.LastImportedAt,
		ImportCheckpoint: meta.ImportCheckpoint,
	}, nil
}

func (r *syncMetaRepository) SetLastExportedAt(ctx context.Context, ts int64) error {
	return r.mutate(ctx, func(meta *syncMeta) { meta.LastExportedAt = ts })
}

func (r *syncMetaRepository) SetLastImportedAt(ctx context.Context, ts int64) error {
	return r.mutate(ctx, func(meta *syncMeta) { meta.LastImportedAt = ts })
}

func (r *syncMetaRepository) SetImportCheckpoint(ctx context.Context, category string) error {
	return r.mutate(ctx, func(meta *syncMeta) { meta.ImportCheckpoint = category })
}

func (r *syncMetaRepository) ClearImportCheckpoint(ctx context.Context) error {
	return r.mutate(ctx, func(meta *syncMeta) { meta.ImportCheckpoint = "" })
}

func (r *syncMetaRepository) mutate(ctx context.Context, apply func(*syncMeta)) error {
	meta, err := r.load(ctx)
	if err != nil {
		return err
	}
	apply(meta)
	return r.save(meta)
}
