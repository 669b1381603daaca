package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/timshannon/bolthold"
)

type listItemRepository struct {
	store *bolthold.Store
}

func NewListItemRepository(store *bolthold.Store) domain.ListItemRepository {
	return &listItemRepository{store: store}
}

func (r *listItemRepository) Upsert(ctx context.Context, item *domain.ListItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.store.Upsert(item.Key(), item); err != nil {
		return fmt.Errorf("upserting list item: %w", err)
	}
	return nil
}

func (r *listItemRepository) Get(ctx context.Context, key string) (*domain.ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var item domain.ListItem
	err := r.store.Get(key, &item)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting list item: %w", err)
	}
	return &item, nil
}

func (r *listItemRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.Delete(key, &domain.ListItem{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting list item: %w", err)
	}
	return nil
}

func (r *listItemRepository) FindByList(ctx context.Context, listID string) ([]domain.ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []domain.ListItem
	err := r.store.Find(&items, bolthold.Where("ListID").Eq(listID).Index("ListID"))
	if err != nil {
		return nil, fmt.Errorf("finding list items: %w", err)
	}
	return items, nil
}

func (r *listItemRepository) DeleteByList(ctx context.Context, listID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.DeleteMatching(&domain.ListItem{}, bolthold.Where("ListID").Eq(listID).Index("ListID"))
	if err != nil {
		return fmt.Errorf("deleting list items: %w", err)
	}
	return nil
}

func (r *listItemRepository) All(ctx context.Context) ([]domain.ListItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []domain.ListItem
	if err := r.store.Find(&items, nil); err != nil {
		return nil, fmt.Errorf("listing list items: %w", err)
	}
	return items, nil
}
