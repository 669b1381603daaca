package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/timshannon/bolthold"
)

// Each namespace struct lives in its own bolthold bucket under a fixed key,
// so one namespace can be rewritten without touching the others.
const settingsKey = "current"

type settingsRepository struct {
	store *bolthold.Store
}

func NewSettingsRepository(store *bolthold.Store) domain.SettingsRepository {
	return &settingsRepository{store: store}
}

func (r *settingsRepository) Load(ctx context.Context) (*domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	settings := domain.DefaultSettings()
	loaders := []struct {
		ns  domain.Namespace
		dst interface{}
	}{
		{domain.NamespacePlayback, &settings.Playback},
		{domain.NamespaceSourceFilters, &settings.SourceFilters},
		{domain.NamespaceStreaming, &settings.Streaming},
		{domain.NamespaceLanguage, &settings.Language},
		{domain.NamespaceTheme, &settings.Theme},
	}

	for _, l := range loaders {
		err := r.store.Get(settingsKey, l.dst)
		if errors.Is(err, bolthold.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s settings: %w", l.ns, err)
		}
	}
	return settings, nil
}

func (r *settingsRepository) SaveNamespace(ctx context.Context, ns domain.Namespace, settings *domain.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var value interface{}
	switch ns {
	case domain.NamespacePlayback:
		value = &settings.Playback
	case domain.NamespaceSourceFilters:
		value = &settings.SourceFilters
	case domain.NamespaceStreaming:
		value = &settings.Streaming
	case domain.NamespaceLanguage:
		value = &settings.Language
	case domain.NamespaceTheme:
		value = &settings.Theme
	default:
		return fmt.Errorf("%w: unknown settings namespace %q", domain.ErrInvalidInput, ns)
	}

	if err := r.store.Upsert(settingsKey, value); err != nil {
		return fmt.Errorf("saving %s settings: %w", ns, err)
	}
	return nil
}
