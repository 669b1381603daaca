package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/timshannon/bolthold"
)

type mediaRepository struct {
	store *bolthold.Store
}

func NewMediaRepository(store *bolthold.Store) domain.MediaRepository {
	return &mediaRepository{store: store}
}

func (r *mediaRepository) Upsert(ctx context.Context, media *domain.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.store.Upsert(media.Key(), media); err != nil {
		return fmt.Errorf("upserting media: %w", err)
	}
	return nil
}

func (r *mediaRepository) Get(ctx context.Context, t domain.MediaType, externalID int64) (*domain.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var media domain.Media
	err := r.store.Get(domain.MediaKey(t, externalID), &media)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting media: %w", err)
	}
	return &media, nil
}

func (r *mediaRepository) Delete(ctx context.Context, t domain.MediaType, externalID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.Delete(domain.MediaKey(t, externalID), &domain.Media{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	return nil
}

func (r *mediaRepository) FindFavorites(ctx context.Context) ([]domain.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var medias []domain.Media
	err := r.store.Find(&medias, bolthold.Where("Favorite").Eq(true).Index("Favorite"))
	if err != nil {
		return nil, fmt.Errorf("finding favorites: %w", err)
	}
	return medias, nil
}

func (r *mediaRepository) All(ctx context.Context) ([]domain.Media, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var medias []domain.Media
	if err := r.store.Find(&medias, nil); err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	return medias, nil
}
