package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	log "github.com/sirupsen/logrus"
)

// ReconcileService merges a remote snapshot into local state using
// last-write-wins per record. Categories are processed in dependency order,
// each committed before the next starts; a checkpoint names the last
// committed category so a crashed import is visible. Re-importing the same
// payload is safe because every step is idempotent.
type ReconcileService struct {
	repos    Repositories
	resolver *ListResolver
	merger   *SettingsMerger
	now      nowFunc
}

func NewReconcileService(repos Repositories, resolver *ListResolver, merger *SettingsMerger) *ReconcileService {
	return &ReconcileService{
		repos:    repos,
		resolver: resolver,
		merger:   merger,
		now:      unixNow,
	}
}

// Apply validates the payload and merges every category. Validation
// failures guarantee zero mutation; a storage failure mid-merge leaves
// earlier categories committed and the checkpoint set.
func (s *ReconcileService) Apply(ctx context.Context, payload *domain.Payload) error {
	if payload.SchemaVersion != domain.SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d",
			domain.ErrUnsupportedSchema, payload.SchemaVersion, domain.SchemaVersion)
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"deviceID":   payload.DeviceID,
		"exportedAt": payload.ExportedAt,
	}).Info("applying snapshot")

	// Remote-to-local list id remap, produced by the lists step and
	// consumed by the list items step.
	var idMap map[string]string

	steps := []struct {
		category string
		run      func(context.Context) error
	}{
		{"media", func(ctx context.Context) error {
			return s.applyMedia(ctx, payload.Media)
		}},
		{"lists", func(ctx context.Context) error {
			var err error
			idMap, err = s.resolver.Apply(ctx, payload.Lists)
			return err
		}},
		{"listItems", func(ctx context.Context) error {
			return s.applyListItems(ctx, payload.ListItems, idMap)
		}},
		{"favorites", func(ctx context.Context) error {
			return s.applyFavorites(ctx, payload.Favorites)
		}},
		{"progress", func(ctx context.Context) error {
			return s.applyProgress(ctx, payload.Progress)
		}},
		{"settings", func(ctx context.Context) error {
			return s.merger.Merge(ctx, payload.Settings)
		}},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("applying %s: %w", step.category, err)
		}
		if err := s.repos.Meta.SetImportCheckpoint(ctx, step.category); err != nil {
			return err
		}
	}

	if err := s.repos.Meta.ClearImportCheckpoint(ctx); err != nil {
		return err
	}
	if err := s.repos.Meta.SetLastImportedAt(ctx, s.now()); err != nil {
		return err
	}

	log.WithField("deviceID", payload.DeviceID).Info("snapshot applied")
	return nil
}

// applyMedia upserts metadata unconditionally. Media rows carry no conflict
// semantics; favorite state on the local row is preserved because it is
// merged by the favorites category.
func (s *ReconcileService) applyMedia(ctx context.Context, entries []domain.MediaEntry) error {
	for i := range entries {
		entry := &entries[i]

		record := entry.Record()
		local, err := s.repos.Media.Get(ctx, entry.Type, entry.ExternalID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if local != nil {
			record.Favorite = local.Favorite
			record.FavoriteUpdatedAt = local.FavoriteUpdatedAt
		}

		if err := s.repos.Media.Upsert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReconcileService) applyListItems(ctx context.Context, entries []domain.ListItemEntry, idMap map[string]string) error {
	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindListItem)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]

		item := entry.ListItem
		if localID, ok := idMap[item.ListID]; ok {
			item.ListID = localID
		}

		if _, err := s.repos.Lists.Get(ctx, item.ListID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The owning list does not exist locally: either its
				// tombstone won or the list was dropped with it. No
				// orphan items.
				continue
			}
			return err
		}

		if entry.Deleted() {
			err = s.deleteListItem(ctx, &item, entry.DeletedAt, deletions)
		} else {
			err = s.upsertListItem(ctx, &item, deletions)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ReconcileService) deleteListItem(ctx context.Context, item *domain.ListItem, deletedAt int64, deletions map[string]int64) error {
	key := item.Key()

	localTS, err := s.listItemTimestamp(ctx, key, deletions)
	if err != nil {
		return err
	}
	if !remoteNewer(localTS, deletedAt) {
		return nil
	}

	if err := s.repos.ListItems.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindListItem, key, deletedAt)
}

func (s *ReconcileService) upsertListItem(ctx context.Context, item *domain.ListItem, deletions map[string]int64) error {
	key := item.Key()

	localTS, err := s.listItemTimestamp(ctx, key, deletions)
	if err != nil {
		return err
	}
	if !remoteNewer(localTS, item.AddedAt) {
		return nil
	}

	if err := s.repos.ListItems.Upsert(ctx, item); err != nil {
		return err
	}
	return s.repos.Tombstones.ClearDeletion(ctx, domain.KindListItem, key)
}

// listItemTimestamp returns the timestamp the conflict rule compares
// against: the live record's addedAt, or the pending tombstone's deletedAt
// when the record is gone.
func (s *ReconcileService) listItemTimestamp(ctx context.Context, key string, deletions map[string]int64) (int64, error) {
	local, err := s.repos.ListItems.Get(ctx, key)
	if err == nil {
		return local.AddedAt, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	return deletions[key], nil
}

func (s *ReconcileService) applyFavorites(ctx context.Context, entries []domain.FavoriteEntry) error {
	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindFavorite)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]

		local, err := s.repos.Media.Get(ctx, entry.Type, entry.ExternalID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if entry.Deleted() {
			err = s.deleteFavorite(ctx, entry, local, deletions)
		} else {
			err = s.upsertFavorite(ctx, entry, local, deletions)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ReconcileService) deleteFavorite(ctx context.Context, entry *domain.FavoriteEntry, local *domain.Media, deletions map[string]int64) error {
	key := entry.Key()

	localTS := deletions[key]
	if local != nil && local.FavoriteUpdatedAt != 0 {
		localTS = local.FavoriteUpdatedAt
	}
	if !remoteNewer(localTS, entry.DeletedAt) {
		return nil
	}

	if local != nil && local.Favorite {
		local.Favorite = false
		local.FavoriteUpdatedAt = entry.DeletedAt
		if err := s.repos.Media.Upsert(ctx, local); err != nil {
			return err
		}
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindFavorite, key, entry.DeletedAt)
}

func (s *ReconcileService) upsertFavorite(ctx context.Context, entry *domain.FavoriteEntry, local *domain.Media, deletions map[string]int64) error {
	key := entry.Key()

	if deletedAt, ok := deletions[key]; ok && !remoteNewer(deletedAt, entry.UpdatedAt) {
		// Local deletion is newer; a stale favorite never resurrects.
		return nil
	}

	var localTS int64
	if local != nil {
		localTS = local.FavoriteUpdatedAt
	}
	if !remoteNewer(localTS, entry.UpdatedAt) {
		return nil
	}

	if local == nil {
		// Payloads ship media for every favorite; a missing row means the
		// media step was bypassed. Skip rather than invent a record.
		log.WithField("key", key).Warn("favorite references unknown media, skipping")
		return nil
	}

	local.Favorite = true
	local.FavoriteUpdatedAt = entry.UpdatedAt
	if err := s.repos.Media.Upsert(ctx, local); err != nil {
		return err
	}
	return s.repos.Tombstones.ClearDeletion(ctx, domain.KindFavorite, key)
}

func (s *ReconcileService) applyProgress(ctx context.Context, entries []domain.ProgressEntry) error {
	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindProgress)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]
		if entry.Deleted() {
			err = s.deleteProgress(ctx, entry, deletions)
		} else {
			err = s.upsertProgress(ctx, entry, deletions)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *ReconcileService) deleteProgress(ctx context.Context, entry *domain.ProgressEntry, deletions map[string]int64) error {
	key := entry.Progress.Key()

	localTS, err := s.progressTimestamp(ctx, key, deletions)
	if err != nil {
		return err
	}
	if !remoteNewer(localTS, entry.DeletedAt) {
		return nil
	}

	if err := s.repos.Progress.Delete(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.repos.Tombstones.RecordDeletion(ctx, domain.KindProgress, key, entry.DeletedAt)
}

func (s *ReconcileService) upsertProgress(ctx context.Context, entry *domain.ProgressEntry, deletions map[string]int64) error {
	key := entry.Progress.Key()

	localTS, err := s.progressTimestamp(ctx, key, deletions)
	if err != nil {
		return err
	}
	if !remoteNewer(localTS, entry.UpdatedAt) {
		return nil
	}

	record := entry.Progress
	if err := s.repos.Progress.Upsert(ctx, &record); err != nil {
		return err
	}
	return s.repos.Tombstones.ClearDeletion(ctx, domain.KindProgress, key)
}

func (s *ReconcileService) progressTimestamp(ctx context.Context, key string, deletions map[string]int64) (int64, error) {
	local, err := s.repos.Progress.Get(ctx, key)
	if err == nil {
		return local.UpdatedAt, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	return deletions[key], nil
}
