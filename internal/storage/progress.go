package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/timshannon/bolthold"
)

type progressRepository struct {
	store *bolthold.Store
}

func NewProgressRepository(store *bolthold.Store) domain.ProgressRepository {
	return &progressRepository{store: store}
}

func (r *progressRepository) Upsert(ctx context.Context, progress *domain.Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.store.Upsert(progress.Key(), progress); err != nil {
		return fmt.Errorf("upserting progress: %w", err)
	}
	return nil
}

func (r *progressRepository) Get(ctx context.Context, key string) (*domain.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var progress domain.Progress
	err := r.store.Get(key, &progress)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting progress: %w", err)
	}
	return &progress, nil
}

func (r *progressRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.Delete(key, &domain.Progress{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	return nil
}

func (r *progressRepository) All(ctx context.Context) ([]domain.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []domain.Progress
	if err := r.store.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}
	return entries, nil
}
