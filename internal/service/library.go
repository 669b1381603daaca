package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LibraryService is the local mutation surface the UI drives: favorites,
// watch progress, lists and preferences. Every delete records a tombstone
// so the deletion propagates through the next snapshot exchange.
type LibraryService struct {
	repos    Repositories
	language LanguageResolver
	now      nowFunc
}

func NewLibraryService(repos Repositories, language LanguageResolver) *LibraryService {
	return &LibraryService{repos: repos, language: language, now: unixNow}
}

func (s *LibraryService) SaveMedia(ctx context.Context, media *domain.Media) error {
	local, err := s.repos.Media.Get(ctx, media.Type, media.ExternalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if local != nil {
		media.Favorite = local.Favorite
		media.FavoriteUpdatedAt = local.FavoriteUpdatedAt
	}
	media.UpdatedAt = s.now()
	return s.repos.Media.Upsert(ctx, media)
}

// SetFavorite marks a media row favorite. The row must already exist unless
// title metadata is supplied to create a stub.
func (s *LibraryService) SetFavorite(ctx context.Context, t domain.MediaType, externalID int64, title string) error {
	media, err := s.repos.Media.Get(ctx, t, externalID)
	if errors.Is(err, domain.ErrNotFound) {
		if title == "" {
			return fmt.Errorf("%w: media %s not found and no title given", domain.ErrInvalidInput, domain.MediaKey(t, externalID))
		}
		media = &domain.Media{ExternalID: externalID, Type: t, Title: title, UpdatedAt: s.now()}
	} else if err != nil {
		return err
	}

	media.Favorite = true
	media.FavoriteUpdatedAt = s.now()
	if err := s.repos.Media.Upsert(ctx, media); err != nil {
		return err
	}
	// A re-favorite resurrects any pending deletion.
	return s.repos.Tombstones.ClearDeletion(ctx, domain.KindFavorite, media.Key())
}

func (s *LibraryService) RemoveFavorite(ctx context.Context, t domain.MediaType, externalID int64) error {
	media, err := s.repos.Media.Get(ctx, t, externalID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	deletedAt := s.now()
	media.Favorite = false
	media.FavoriteUpdatedAt = deletedAt
	if err := s.repos.Media.Upsert(ctx, media); err != nil {
		return err
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindFavorite, media.Key(), deletedAt)
}

func (s *LibraryService) SaveProgress(ctx context.Context, progress *domain.Progress) error {
	progress.UpdatedAt = s.now()
	if err := s.repos.Progress.Upsert(ctx, progress); err != nil {
		return err
	}
	return s.repos.Tombstones.ClearDeletion(ctx, domain.KindProgress, progress.Key())
}

func (s *LibraryService) ClearProgress(ctx context.Context, t domain.MediaType, externalID int64, season, episode *int64) error {
	key := domain.ProgressKey(t, externalID, season, episode)

	if err := s.repos.Progress.Delete(ctx, key); err != nil {
		return err
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindProgress, key, s.now())
}

func (s *LibraryService) CreateList(ctx context.Context, name string, isDefault bool) (*domain.List, error) {
	if domain.NormalizeListName(name) == "" {
		return nil, fmt.Errorf("%w: empty list name", domain.ErrInvalidInput)
	}

	now := s.now()
	list := &domain.List{
		ID:        uuid.NewString(),
		Name:      name,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Lists.Insert(ctx, list); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"listID": list.ID,
		"name":   list.Name,
	}).Info("created list")
	return list, nil
}

func (s *LibraryService) DeleteList(ctx context.Context, ref string) error {
	list, err := s.ResolveList(ctx, ref)
	if err != nil {
		return err
	}

	deletedAt := s.now()
	items, err := s.repos.ListItems.FindByList(ctx, list.ID)
	if err != nil {
		return err
	}
	for i := range items {
		if err := s.repos.Tombstones.RecordDeletion(ctx, domain.KindListItem, items[i].Key(), deletedAt); err != nil {
			return err
		}
	}

	if err := s.repos.ListItems.DeleteByList(ctx, list.ID); err != nil {
		return err
	}
	if err := s.repos.Lists.Delete(ctx, list.ID); err != nil {
		return err
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindList, list.ID, deletedAt)
}

func (s *LibraryService) AddListItem(ctx context.Context, ref string, t domain.MediaType, externalID int64) error {
	list, err := s.ResolveList(ctx, ref)
	if err != nil {
		return err
	}

	item := &domain.ListItem{
		ListID:     list.ID,
		ExternalID: externalID,
		Type:       t,
		AddedAt:    s.now(),
	}
	if err := s.repos.ListItems.Upsert(ctx, item); err != nil {
		return err
	}
	return s.repos.Tombstones.ClearDeletion(ctx, domain.KindListItem, item.Key())
}

func (s *LibraryService) RemoveListItem(ctx context.Context, ref string, t domain.MediaType, externalID int64) error {
	list, err := s.ResolveList(ctx, ref)
	if err != nil {
		return err
	}

	key := domain.ListItemKey(list.ID, t, externalID)
	if err := s.repos.ListItems.Delete(ctx, key); err != nil {
		return err
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindListItem, key, s.now())
}

// ResolveList accepts a raw list id or a list name.
func (s *LibraryService) ResolveList(ctx context.Context, ref string) (*domain.List, error) {
	list, err := s.repos.Lists.Get(ctx, ref)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.repos.Lists.FindByNormalizedName(ctx, domain.NormalizeListName(ref))
}

func (s *LibraryService) SetTheme(ctx context.Context, mode string) error {
	switch mode {
	case "dark", "light", "system":
	default:
		return fmt.Errorf("%w: unknown theme mode %q", domain.ErrInvalidInput, mode)
	}

	settings, err := s.repos.Settings.Load(ctx)
	if err != nil {
		return err
	}

	settings.Theme.Mode = mode
	settings.Theme.UpdatedAt = s.now()
	return s.repos.Settings.SaveNamespace(ctx, domain.NamespaceTheme, settings)
}

func (s *LibraryService) SetLanguage(ctx context.Context, preferred string) error {
	settings, err := s.repos.Settings.Load(ctx)
	if err != nil {
		return err
	}

	settings.Language.Preferred = preferred
	if preferred == domain.LanguageSystem {
		settings.Language.Effective = s.language.SystemLanguage()
	} else {
		settings.Language.Effective = preferred
	}
	settings.Language.UpdatedAt = s.now()
	return s.repos.Settings.SaveNamespace(ctx, domain.NamespaceLanguage, settings)
}
