package service

import (
	"os"
	"testing"

	"github.com/amaumene/syncarr/internal/storage"
	"github.com/timshannon/bolthold"
)

func setupTestRepos(t *testing.T) Repositories {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	tmpfile.Close()

	store, err := bolthold.Open(tmpfile.Name(), 0666, nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpfile.Name())
	})

	return Repositories{
		Media:      storage.NewMediaRepository(store),
		Progress:   storage.NewProgressRepository(store),
		Lists:      storage.NewListRepository(store),
		ListItems:  storage.NewListItemRepository(store),
		Settings:   storage.NewSettingsRepository(store),
		Tombstones: storage.NewTombstoneRepository(store),
		Meta:       storage.NewSyncMetaRepository(store),
	}
}

// fixedLanguage is a deterministic resolver for tests.
type fixedLanguage string

func (l fixedLanguage) SystemLanguage() string { return string(l) }

func TestRemoteNewer(t *testing.T) {
	tests := []struct {
		name   string
		local  int64
		remote int64
		want   bool
	}{
		{name: "remote newer", local: 100, remote: 200, want: true},
		{name: "local newer", local: 200, remote: 100, want: false},
		{name: "tie favors local", local: 100, remote: 100, want: false},
		{name: "remote absent never wins", local: 0, remote: 0, want: false},
		{name: "remote absent against local", local: 100, remote: 0, want: false},
		{name: "local absent loses", local: 0, remote: 100, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remoteNewer(tt.local, tt.remote); got != tt.want {
				t.Errorf("remoteNewer(%d, %d) = %v, want %v", tt.local, tt.remote, got, tt.want)
			}
		})
	}
}
