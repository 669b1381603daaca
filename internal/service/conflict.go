package service

import (
	"time"

	"github.com/amaumene/syncarr/internal/domain"
)

// remoteNewer is the single conflict rule applied to every entity category,
// tombstones included. Zero means the timestamp was never recorded. Ties
// favor the local copy, so equal timestamps never churn state.
//
// Wall-clock ordering is best effort: truly concurrent edits are not
// disambiguated, and under severe clock skew an older edit can win.
func remoteNewer(local, remote int64) bool {
	if remote == 0 {
		return false
	}
	if local == 0 {
		return true
	}
	return remote > local
}

type nowFunc func() int64

func unixNow() int64 {
	return time.Now().UnixMilli()
}

// Repositories bundles the data access surface the sync services operate on.
type Repositories struct {
	Media      domain.MediaRepository
	Progress   domain.ProgressRepository
	Lists      domain.ListRepository
	ListItems  domain.ListItemRepository
	Settings   domain.SettingsRepository
	Tombstones domain.TombstoneRepository
	Meta       domain.SyncMetaRepository
}
