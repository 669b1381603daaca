package domain

// Kind names an entity category that propagates deletes via tombstones.
// Media rows have no tombstones: they are pure metadata, pruned locally and
// upserted unconditionally on import.
type Kind string

const (
	KindFavorite Kind = "favorite"
	KindProgress Kind = "progress"
	KindList     Kind = "list"
	KindListItem Kind = "listItem"
)

// Tombstone is a locally retained deletion record. It is kept from the
// moment of a local delete until a remote write timestamped after DeletedAt
// resurrects the record.
type Tombstone struct {
	Kind      Kind   `boltholdIndex:"Kind"`
	Key       string
	DeletedAt int64
}

// TombstoneKey builds the storage key for a tombstone, e.g.
// "favorite/movie:550".
func TombstoneKey(kind Kind, key string) string {
	return string(kind) + "/" + key
}
