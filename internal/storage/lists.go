package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/timshannon/bolthold"
)

const errDuplicateKey = "This Key already exists in this bolthold for this type"

type listRepository struct {
	store *bolthold.Store
}

func NewListRepository(store *bolthold.Store) domain.ListRepository {
	return &listRepository{store: store}
}

func (r *listRepository) Insert(ctx context.Context, list *domain.List) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	list.NormalizedName = domain.NormalizeListName(list.Name)
	err := r.store.Insert(list.ID, list)
	if err != nil && err.Error() == errDuplicateKey {
		return domain.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("inserting list: %w", err)
	}
	return nil
}

func (r *listRepository) Update(ctx context.Context, list *domain.List) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	list.NormalizedName = domain.NormalizeListName(list.Name)
	if err := r.store.Upsert(list.ID, list); err != nil {
		return fmt.Errorf("updating list: %w", err)
	}
	return nil
}

func (r *listRepository) Get(ctx context.Context, id string) (*domain.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var list domain.List
	err := r.store.Get(id, &list)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting list: %w", err)
	}
	return &list, nil
}

func (r *listRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.store.Delete(id, &domain.List{})
	if errors.Is(err, bolthold.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}
	return nil
}

func (r *listRepository) FindByNormalizedName(ctx context.Context, normalized string) (*domain.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lists []domain.List
	err := r.store.Find(&lists, bolthold.Where("NormalizedName").Eq(normalized).Index("NormalizedName"))
	if err != nil {
		return nil, fmt.Errorf("finding list by name: %w", err)
	}
	if len(lists) == 0 {
		return nil, domain.ErrNotFound
	}
	return &lists[0], nil
}

func (r *listRepository) All(ctx context.Context) ([]domain.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lists []domain.List
	if err := r.store.Find(&lists, nil); err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	return lists, nil
}
