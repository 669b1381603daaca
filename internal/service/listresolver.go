package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amaumene/syncarr/internal/domain"
	log "github.com/sirupsen/logrus"
)

// ListResolver reconciles lists whose raw identifiers differ across
// installs. A remote list is matched onto a local one by normalized name;
// every list item reference is then remapped from the remote id to the
// local id before list item merging runs.
type ListResolver struct {
	lists      domain.ListRepository
	items      domain.ListItemRepository
	tombstones domain.TombstoneRepository
}

func NewListResolver(lists domain.ListRepository, items domain.ListItemRepository, tombstones domain.TombstoneRepository) *ListResolver {
	return &ListResolver{lists: lists, items: items, tombstones: tombstones}
}

// Apply merges the incoming list entries and returns the remote-to-local id
// remap for list item processing.
func (r *ListResolver) Apply(ctx context.Context, entries []domain.ListEntry) (map[string]string, error) {
	idMap := make(map[string]string, len(entries))

	for i := range entries {
		entry := &entries[i]
		if entry.Deleted() {
			if err := r.applyDeletion(ctx, entry); err != nil {
				return nil, err
			}
			continue
		}

		localID, err := r.applyLive(ctx, entry)
		if err != nil {
			return nil, err
		}
		if localID != "" {
			idMap[entry.ID] = localID
		}
	}
	return idMap, nil
}

func (r *ListResolver) applyLive(ctx context.Context, entry *domain.ListEntry) (string, error) {
	local, err := r.findMergeTarget(ctx, entry)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	if local == nil {
		return r.createFromRemote(ctx, entry)
	}

	if remoteNewer(local.UpdatedAt, entry.UpdatedAt) {
		// Whole-record replace, except identity: the local id stays the
		// merge target and the first writer keeps default status.
		updated := entry.List
		updated.ID = local.ID
		updated.IsDefault = local.IsDefault
		if err := r.lists.Update(ctx, &updated); err != nil {
			return "", err
		}
	}
	return local.ID, nil
}

// findMergeTarget locates the local list the remote entry denotes: same raw
// id first, then same normalized name.
func (r *ListResolver) findMergeTarget(ctx context.Context, entry *domain.ListEntry) (*domain.List, error) {
	local, err := r.lists.Get(ctx, entry.ID)
	if err == nil {
		return local, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return r.lists.FindByNormalizedName(ctx, domain.NormalizeListName(entry.Name))
}

func (r *ListResolver) createFromRemote(ctx context.Context, entry *domain.ListEntry) (string, error) {
	deletions, err := r.tombstones.AllDeletions(ctx, domain.KindList)
	if err != nil {
		return "", err
	}
	if deletedAt, ok := deletions[entry.ID]; ok && !remoteNewer(deletedAt, entry.UpdatedAt) {
		// Locally deleted after the remote write; the tombstone wins and
		// the remote list's items are dropped with it.
		return "", nil
	}

	list := entry.List
	if list.IsDefault {
		hasDefault, err := r.hasDefaultList(ctx)
		if err != nil {
			return "", err
		}
		// One default list per install; the existing local default wins.
		list.IsDefault = !hasDefault
	}

	if err := r.lists.Insert(ctx, &list); err != nil {
		return "", fmt.Errorf("creating list from snapshot: %w", err)
	}
	if err := r.tombstones.ClearDeletion(ctx, domain.KindList, list.ID); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"listID": list.ID,
		"name":   list.Name,
	}).Info("created list from snapshot")
	return list.ID, nil
}

func (r *ListResolver) hasDefaultList(ctx context.Context) (bool, error) {
	lists, err := r.lists.All(ctx)
	if err != nil {
		return false, err
	}
	for i := range lists {
		if lists[i].IsDefault {
			return true, nil
		}
	}
	return false, nil
}

func (r *ListResolver) applyDeletion(ctx context.Context, entry *domain.ListEntry) error {
	local, err := r.lists.Get(ctx, entry.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !remoteNewer(local.UpdatedAt, entry.DeletedAt) {
		return nil
	}

	if err := r.items.DeleteByList(ctx, local.ID); err != nil {
		return err
	}
	if err := r.lists.Delete(ctx, local.ID); err != nil {
		return err
	}
	if err := r.tombstones.RecordDeletion(ctx, domain.KindList, local.ID, entry.DeletedAt); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"listID": local.ID,
		"name":   local.Name,
	}).Info("deleted list via snapshot tombstone")
	return nil
}
