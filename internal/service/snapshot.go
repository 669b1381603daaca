package service

import (
	"context"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	log "github.com/sirupsen/logrus"
)

// SnapshotService builds the portable payload a user exports for another
// installation. Only media referenced by a favorite, progress entry or list
// item travels; each category carries its live records plus pending
// tombstones.
type SnapshotService struct {
	repos Repositories
	now   nowFunc
}

func NewSnapshotService(repos Repositories) *SnapshotService {
	return &SnapshotService{repos: repos, now: unixNow}
}

func (s *SnapshotService) Build(ctx context.Context) (*domain.Payload, error) {
	exportedAt := s.now()

	deviceID, err := s.repos.Meta.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving device id: %w", err)
	}

	favorites, err := s.buildFavorites(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.buildProgress(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := s.buildLists(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.buildListItems(ctx)
	if err != nil {
		return nil, err
	}
	media, err := s.buildMedia(ctx, referencedMediaKeys(favorites, progress, items))
	if err != nil {
		return nil, err
	}
	settings, err := s.buildSettings(ctx, exportedAt)
	if err != nil {
		return nil, err
	}

	payload := &domain.Payload{
		SchemaVersion: domain.SchemaVersion,
		ExportedAt:    exportedAt,
		DeviceID:      deviceID,
		Media:         media,
		Favorites:     favorites,
		Progress:      progress,
		Lists:         lists,
		ListItems:     items,
		Settings:      settings,
	}

	if err := s.repos.Meta.SetLastExportedAt(ctx, exportedAt); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"media":     len(media),
		"favorites": len(favorites),
		"progress":  len(progress),
		"lists":     len(lists),
		"listItems": len(items),
	}).Info("snapshot built")

	return payload, nil
}

func (s *SnapshotService) buildFavorites(ctx context.Context) ([]domain.FavoriteEntry, error) {
	medias, err := s.repos.Media.FindFavorites(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.FavoriteEntry, 0, len(medias))
	for _, m := range medias {
		entries = append(entries, domain.FavoriteEntry{
			ExternalID: m.ExternalID,
			Type:       m.Type,
			UpdatedAt:  m.FavoriteUpdatedAt,
		})
	}

	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindFavorite)
	if err != nil {
		return nil, err
	}
	for key, deletedAt := range deletions {
		t, externalID, err := domain.ParseMediaKey(key)
		if err != nil {
			logSkippedTombstone(domain.KindFavorite, key, err)
			continue
		}
		entries = append(entries, domain.FavoriteEntry{
			ExternalID: externalID,
			Type:       t,
			DeletedAt:  deletedAt,
		})
	}
	return entries, nil
}

func (s *SnapshotService) buildProgress(ctx context.Context) ([]domain.ProgressEntry, error) {
	records, err := s.repos.Progress.All(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ProgressEntry, 0, len(records))
	for _, p := range records {
		entries = append(entries, domain.ProgressEntry{Progress: p})
	}

	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindProgress)
	if err != nil {
		return nil, err
	}
	for key, deletedAt := range deletions {
		t, externalID, season, episode, err := domain.ParseProgressKey(key)
		if err != nil {
			logSkippedTombstone(domain.KindProgress, key, err)
			continue
		}
		entries = append(entries, domain.ProgressEntry{
			Progress: domain.Progress{
				ExternalID: externalID,
				Type:       t,
				Season:     season,
				Episode:    episode,
			},
			DeletedAt: deletedAt,
		})
	}
	return entries, nil
}

func (s *SnapshotService) buildLists(ctx context.Context) ([]domain.ListEntry, error) {
	lists, err := s.repos.Lists.All(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ListEntry, 0, len(lists))
	for _, l := range lists {
		entries = append(entries, domain.ListEntry{List: l})
	}

	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindList)
	if err != nil {
		return nil, err
	}
	for id, deletedAt := range deletions {
		entries = append(entries, domain.ListEntry{
			List:      domain.List{ID: id},
			DeletedAt: deletedAt,
		})
	}
	return entries, nil
}

func (s *SnapshotService) buildListItems(ctx context.Context) ([]domain.ListItemEntry, error) {
	items, err := s.repos.ListItems.All(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ListItemEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, domain.ListItemEntry{ListItem: item})
	}

	deletions, err := s.repos.Tombstones.AllDeletions(ctx, domain.KindListItem)
	if err != nil {
		return nil, err
	}
	for key, deletedAt := range deletions {
		listID, t, externalID, err := domain.ParseListItemKey(key)
		if err != nil {
			logSkippedTombstone(domain.KindListItem, key, err)
			continue
		}
		entries = append(entries, domain.ListItemEntry{
			ListItem: domain.ListItem{
				ListID:     listID,
				ExternalID: externalID,
				Type:       t,
			},
			DeletedAt: deletedAt,
		})
	}
	return entries, nil
}

func (s *SnapshotService) buildMedia(ctx context.Context, referenced map[string]struct{}) ([]domain.MediaEntry, error) {
	medias, err := s.repos.Media.All(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.MediaEntry, 0, len(referenced))
	for i := range medias {
		if _, ok := referenced[medias[i].Key()]; !ok {
			continue
		}
		entries = append(entries, domain.NewMediaEntry(&medias[i]))
	}
	return entries, nil
}

func (s *SnapshotService) buildSettings(ctx context.Context, exportedAt int64) (*domain.Settings, error) {
	settings, err := s.repos.Settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Namespaces never touched locally export with the snapshot timestamp.
	if settings.Playback.UpdatedAt == 0 {
		settings.Playback.UpdatedAt = exportedAt
	}
	if settings.SourceFilters.UpdatedAt == 0 {
		settings.SourceFilters.UpdatedAt = exportedAt
	}
	if settings.Streaming.UpdatedAt == 0 {
		settings.Streaming.UpdatedAt = exportedAt
	}
	if settings.Language.UpdatedAt == 0 {
		settings.Language.UpdatedAt = exportedAt
	}
	if settings.Theme.UpdatedAt == 0 {
		settings.Theme.UpdatedAt = exportedAt
	}
	return settings, nil
}

// referencedMediaKeys is the pruning set: media travels only when a live
// favorite, progress entry or list item points at it.
func referencedMediaKeys(favorites []domain.FavoriteEntry, progress []domain.ProgressEntry, items []domain.ListItemEntry) map[string]struct{} {
	referenced := make(map[string]struct{})
	for i := range favorites {
		if !favorites[i].Deleted() {
			referenced[favorites[i].Key()] = struct{}{}
		}
	}
	for i := range progress {
		if !progress[i].Deleted() {
			referenced[progress[i].MediaKey()] = struct{}{}
		}
	}
	for i := range items {
		if !items[i].Deleted() {
			referenced[items[i].MediaKey()] = struct{}{}
		}
	}
	return referenced
}

func logSkippedTombstone(kind domain.Kind, key string, err error) {
	log.WithFields(log.Fields{
		"kind":  kind,
		"key":   key,
		"error": err,
	}).Warn("skipping unparseable tombstone key")
}
