package domain

import "context"

type MediaRepository interface {
	Upsert(ctx context.Context, media *Media) error
	Get(ctx context.Context, t MediaType, externalID int64) (*Media, error)
	Delete(ctx context.Context, t MediaType, externalID int64) error
	FindFavorites(ctx context.Context) ([]Media, error)
	All(ctx context.Context) ([]Media, error)
}

type ProgressRepository interface {
	Upsert(ctx context.Context, progress *Progress) error
	Get(ctx context.Context, key string) (*Progress, error)
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]Progress, error)
}

type ListRepository interface {
	Insert(ctx context.Context, list *List) error
	Update(ctx context.Context, list *List) error
	Get(ctx context.Context, id string) (*List, error)
	Delete(ctx context.Context, id string) error
	FindByNormalizedName(ctx context.Context, normalized string) (*List, error)
	All(ctx context.Context) ([]List, error)
}

type ListItemRepository interface {
	Upsert(ctx context.Context, item *ListItem) error
	Get(ctx context.Context, key string) (*ListItem, error)
	Delete(ctx context.Context, key string) error
	FindByList(ctx context.Context, listID string) ([]ListItem, error)
	DeleteByList(ctx context.Context, listID string) error
	All(ctx context.Context) ([]ListItem, error)
}

type SettingsRepository interface {
	// Load returns the full aggregate, with defaults for namespaces that
	// have never been written.
	Load(ctx context.Context) (*Settings, error)
	// SaveNamespace persists one namespace's value set from the aggregate.
	SaveNamespace(ctx context.Context, ns Namespace, settings *Settings) error
}

// TombstoneRepository is pure deletion bookkeeping. No conflict logic lives
// here; it is consulted by the snapshot builder and the reconciler.
type TombstoneRepository interface {
	RecordDeletion(ctx context.Context, kind Kind, key string, deletedAt int64) error
	ClearDeletion(ctx context.Context, kind Kind, key string) error
	AllDeletions(ctx context.Context, kind Kind) (map[string]int64, error)
}

// SyncInfo is per-install sync bookkeeping, not synchronized itself.
type SyncInfo struct {
	DeviceID       string
	LastExportedAt int64
	LastImportedAt int64
	// ImportCheckpoint names the last category an in-flight import
	// committed; empty once an import completes.
	ImportCheckpoint string
}

type SyncMetaRepository interface {
	// DeviceID returns the stable per-install identifier, generating and
	// persisting one on first call.
	DeviceID(ctx context.Context) (string, error)
	Info(ctx context.Context) (*SyncInfo, error)
	SetLastExportedAt(ctx context.Context, ts int64) error
	SetLastImportedAt(ctx context.Context, ts int64) error
	SetImportCheckpoint(ctx context.Context, category string) error
	ClearImportCheckpoint(ctx context.Context) error
}
