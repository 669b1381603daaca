package service

import (
	"context"
	"errors"
	"testing"

	"github.com/amaumene/syncarr/internal/domain"
)

func newTestReconcileService(repos Repositories, now int64) *ReconcileService {
	resolver := NewListResolver(repos.Lists, repos.ListItems, repos.Tombstones)
	merger := NewSettingsMerger(repos.Settings, fixedLanguage("en-US"))
	svc := NewReconcileService(repos, resolver, merger)
	svc.now = func() int64 { return now }
	return svc
}

func testPayload() *domain.Payload {
	return &domain.Payload{
		SchemaVersion: domain.SchemaVersion,
		ExportedAt:    1000,
		DeviceID:      "remote-device",
		Settings:      domain.DefaultSettings(),
	}
}

func TestReconcileService_SchemaMismatchMutatesNothing(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	payload := testPayload()
	payload.SchemaVersion = 2
	payload.Media = []domain.MediaEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club", UpdatedAt: 100},
	}

	err := svc.Apply(ctx, payload)
	if !errors.Is(err, domain.ErrUnsupportedSchema) {
		t.Fatalf("Apply() error = %v, want ErrUnsupportedSchema", err)
	}

	if _, err := repos.Media.Get(ctx, domain.MediaTypeMovie, 550); !errors.Is(err, domain.ErrNotFound) {
		t.Error("Apply() with bad schema wrote media")
	}
	info, err := repos.Meta.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.LastImportedAt != 0 || info.ImportCheckpoint != "" {
		t.Errorf("Info() = %+v, want untouched sync meta", info)
	}
}

func TestReconcileService_MalformedPayloadRejected(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(p *domain.Payload)
	}{
		{name: "missing deviceId", mutate: func(p *domain.Payload) { p.DeviceID = "" }},
		{name: "missing exportedAt", mutate: func(p *domain.Payload) { p.ExportedAt = 0 }},
		{name: "missing settings", mutate: func(p *domain.Payload) { p.Settings = nil }},
		{name: "bad media type", mutate: func(p *domain.Payload) {
			p.Favorites = []domain.FavoriteEntry{{ExternalID: 1, Type: "episode", UpdatedAt: 100}}
		}},
		{name: "live list without name", mutate: func(p *domain.Payload) {
			p.Lists = []domain.ListEntry{{List: domain.List{ID: "a1", UpdatedAt: 100}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := testPayload()
			tt.mutate(payload)
			if err := svc.Apply(ctx, payload); !errors.Is(err, domain.ErrMalformedPayload) {
				t.Errorf("Apply() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestReconcileService_FavoriteLastWriteWins(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	local := &domain.Media{
		ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club",
		Favorite: false, FavoriteUpdatedAt: 50, UpdatedAt: 50,
	}
	if err := repos.Media.Upsert(ctx, local); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	payload := testPayload()
	payload.Media = []domain.MediaEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club", UpdatedAt: 100},
	}
	payload.Favorites = []domain.FavoriteEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, UpdatedAt: 100},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, err := repos.Media.Get(ctx, domain.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Favorite || got.FavoriteUpdatedAt != 100 {
		t.Errorf("media = %+v, want favorite at 100", got)
	}
}

func TestReconcileService_StaleFavoriteNeverResurrects(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	// Favorited remotely at 50, unfavorited locally at 100.
	local := &domain.Media{
		ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club",
		Favorite: false, FavoriteUpdatedAt: 100, UpdatedAt: 50,
	}
	if err := repos.Media.Upsert(ctx, local); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := repos.Tombstones.RecordDeletion(ctx, domain.KindFavorite, "movie:550", 100); err != nil {
		t.Fatalf("RecordDeletion() error = %v", err)
	}

	payload := testPayload()
	payload.Media = []domain.MediaEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club", UpdatedAt: 50},
	}
	payload.Favorites = []domain.FavoriteEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, UpdatedAt: 50},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, err := repos.Media.Get(ctx, domain.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Favorite {
		t.Error("stale remote favorite resurrected a newer local deletion")
	}
	deletions, err := repos.Tombstones.AllDeletions(ctx, domain.KindFavorite)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if deletions["movie:550"] != 100 {
		t.Errorf("tombstone = %v, want kept at 100", deletions)
	}
}

func TestReconcileService_MediaUpsertPreservesFavoriteState(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	local := &domain.Media{
		ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club",
		Favorite: true, FavoriteUpdatedAt: 300, UpdatedAt: 50,
	}
	if err := repos.Media.Upsert(ctx, local); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Remote refreshed metadata but never favorited the title.
	payload := testPayload()
	payload.Media = []domain.MediaEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club", Rating: 8.4, UpdatedAt: 400},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, err := repos.Media.Get(ctx, domain.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Rating != 8.4 {
		t.Errorf("Rating = %v, want refreshed 8.4", got.Rating)
	}
	if !got.Favorite || got.FavoriteUpdatedAt != 300 {
		t.Errorf("media = %+v, want local favorite state preserved", got)
	}
}

func TestReconcileService_ProgressMerge(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	season, episode := int64(1), int64(3)
	local := []domain.Progress{
		{ExternalID: 550, Type: domain.MediaTypeMovie, Position: 600, Duration: 8340, UpdatedAt: 100},
		{ExternalID: 1399, Type: domain.MediaTypeShow, Season: &season, Episode: &episode, Position: 3000, Duration: 3200, UpdatedAt: 300},
	}
	for i := range local {
		if err := repos.Progress.Upsert(ctx, &local[i]); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	payload := testPayload()
	payload.Progress = []domain.ProgressEntry{
		// Newer remote position for the movie.
		{Progress: domain.Progress{ExternalID: 550, Type: domain.MediaTypeMovie, Position: 1200, Duration: 8340, UpdatedAt: 200}},
		// Older remote position for the episode.
		{Progress: domain.Progress{ExternalID: 1399, Type: domain.MediaTypeShow, Season: &season, Episode: &episode, Position: 100, Duration: 3200, UpdatedAt: 150}},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	movie, err := repos.Progress.Get(ctx, "movie:550")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if movie.Position != 1200 {
		t.Errorf("movie position = %d, want remote 1200", movie.Position)
	}

	show, err := repos.Progress.Get(ctx, "show:1399:s1:e3")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if show.Position != 3000 {
		t.Errorf("episode position = %d, want local 3000 kept", show.Position)
	}
}

func TestReconcileService_ProgressDeletionOrdering(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	tests := []struct {
		name      string
		localTS   int64
		deletedAt int64
		wantGone  bool
	}{
		{name: "newer tombstone deletes", localTS: 100, deletedAt: 200, wantGone: true},
		{name: "older tombstone ignored", localTS: 300, deletedAt: 200, wantGone: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := &domain.Progress{
				ExternalID: 550, Type: domain.MediaTypeMovie,
				Position: 600, Duration: 8340, UpdatedAt: tt.localTS,
			}
			if err := repos.Progress.Upsert(ctx, progress); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}

			payload := testPayload()
			payload.Progress = []domain.ProgressEntry{
				{Progress: domain.Progress{ExternalID: 550, Type: domain.MediaTypeMovie}, DeletedAt: tt.deletedAt},
			}

			if err := svc.Apply(ctx, payload); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			_, err := repos.Progress.Get(ctx, "movie:550")
			gone := errors.Is(err, domain.ErrNotFound)
			if gone != tt.wantGone {
				t.Errorf("record gone = %v, want %v", gone, tt.wantGone)
			}
		})
	}
}

func TestReconcileService_ListIdentityMerge(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	if err := repos.Lists.Insert(ctx, &domain.List{
		ID: "a1", Name: "Watchlist", IsDefault: true, CreatedAt: 10, UpdatedAt: 100,
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	localItems := []*domain.ListItem{
		{ListID: "a1", ExternalID: 550, Type: domain.MediaTypeMovie, AddedAt: 20},
		{ListID: "a1", ExternalID: 680, Type: domain.MediaTypeMovie, AddedAt: 30},
	}
	for _, item := range localItems {
		if err := repos.ListItems.Upsert(ctx, item); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	// Same logical list created independently on the other device, newer
	// rename and a different raw id.
	payload := testPayload()
	payload.Lists = []domain.ListEntry{
		{List: domain.List{ID: "b1", Name: "watchlist", IsDefault: true, CreatedAt: 15, UpdatedAt: 200}},
	}
	payload.ListItems = []domain.ListItemEntry{
		{ListItem: domain.ListItem{ListID: "b1", ExternalID: 550, Type: domain.MediaTypeMovie, AddedAt: 25}},
		{ListItem: domain.ListItem{ListID: "b1", ExternalID: 1399, Type: domain.MediaTypeShow, AddedAt: 40}},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	lists, err := repos.Lists.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(lists) != 1 {
		t.Fatalf("got %d lists, want 1 merged list", len(lists))
	}
	if lists[0].ID != "a1" {
		t.Errorf("merged list id = %q, want local a1", lists[0].ID)
	}
	if lists[0].Name != "watchlist" {
		t.Errorf("merged list name = %q, want remote rename", lists[0].Name)
	}
	if !lists[0].IsDefault {
		t.Error("merged list lost default status")
	}

	items, err := repos.ListItems.FindByList(ctx, "a1")
	if err != nil {
		t.Fatalf("FindByList() error = %v", err)
	}
	if len(items) != 3 {
		t.Errorf("merged list has %d items, want union of 3", len(items))
	}
	// The overlapping item keeps the newer timestamp.
	item, err := repos.ListItems.Get(ctx, "a1:movie:550")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if item.AddedAt != 25 {
		t.Errorf("overlapping item addedAt = %d, want remote 25", item.AddedAt)
	}
}

func TestReconcileService_DisjointListsMergeToUnion(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	if err := repos.Lists.Insert(ctx, &domain.List{
		ID: "b1", Name: "Watchlist", IsDefault: true, UpdatedAt: 100,
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	for i := int64(1); i <= 5; i++ {
		if err := repos.ListItems.Upsert(ctx, &domain.ListItem{
			ListID: "b1", ExternalID: i, Type: domain.MediaTypeMovie, AddedAt: 50,
		}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	payload := testPayload()
	payload.Lists = []domain.ListEntry{
		{List: domain.List{ID: "a1", Name: "Watchlist", IsDefault: true, UpdatedAt: 90}},
	}
	for i := int64(6); i <= 8; i++ {
		payload.ListItems = append(payload.ListItems, domain.ListItemEntry{
			ListItem: domain.ListItem{ListID: "a1", ExternalID: i, Type: domain.MediaTypeMovie, AddedAt: 60},
		})
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	lists, err := repos.Lists.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(lists) != 1 || lists[0].ID != "b1" || !lists[0].IsDefault {
		t.Fatalf("lists = %+v, want the single local default b1", lists)
	}
	items, err := repos.ListItems.FindByList(ctx, "b1")
	if err != nil {
		t.Fatalf("FindByList() error = %v", err)
	}
	if len(items) != 8 {
		t.Errorf("merged list has %d items, want 8", len(items))
	}
}

func TestReconcileService_SecondDefaultListDemoted(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	if err := repos.Lists.Insert(ctx, &domain.List{
		ID: "a1", Name: "Favorites", IsDefault: true, UpdatedAt: 100,
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	payload := testPayload()
	payload.Lists = []domain.ListEntry{
		{List: domain.List{ID: "b1", Name: "Weekend Queue", IsDefault: true, UpdatedAt: 200}},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	lists, err := repos.Lists.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("got %d lists, want 2", len(lists))
	}
	defaults := 0
	for i := range lists {
		if lists[i].IsDefault {
			defaults++
			if lists[i].ID != "a1" {
				t.Errorf("default list = %q, want existing a1", lists[i].ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("got %d default lists, want exactly 1", defaults)
	}
}

func TestReconcileService_ListDeletionDropsItems(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	if err := repos.Lists.Insert(ctx, &domain.List{ID: "a1", Name: "Watchlist", UpdatedAt: 100}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repos.ListItems.Upsert(ctx, &domain.ListItem{
		ListID: "a1", ExternalID: 550, Type: domain.MediaTypeMovie, AddedAt: 50,
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	payload := testPayload()
	payload.Lists = []domain.ListEntry{
		{List: domain.List{ID: "a1"}, DeletedAt: 200},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if _, err := repos.Lists.Get(ctx, "a1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() list error = %v, want ErrNotFound", err)
	}
	items, err := repos.ListItems.FindByList(ctx, "a1")
	if err != nil {
		t.Fatalf("FindByList() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("list deletion left %d orphan items", len(items))
	}
	deletions, err := repos.Tombstones.AllDeletions(ctx, domain.KindList)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if deletions["a1"] != 200 {
		t.Errorf("list tombstone = %v, want recorded at 200", deletions)
	}
}

func TestReconcileService_DeletedListTombstoneBlocksRecreate(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	// List b1 was deleted locally at 300.
	if err := repos.Tombstones.RecordDeletion(ctx, domain.KindList, "b1", 300); err != nil {
		t.Fatalf("RecordDeletion() error = %v", err)
	}

	payload := testPayload()
	payload.Lists = []domain.ListEntry{
		{List: domain.List{ID: "b1", Name: "Watchlist", UpdatedAt: 200}},
	}
	payload.ListItems = []domain.ListItemEntry{
		{ListItem: domain.ListItem{ListID: "b1", ExternalID: 550, Type: domain.MediaTypeMovie, AddedAt: 200}},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if _, err := repos.Lists.Get(ctx, "b1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want list kept deleted", err)
	}
	items, err := repos.ListItems.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items of a tombstoned list were imported: %+v", items)
	}
}

func TestReconcileService_Idempotent(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	season, episode := int64(1), int64(3)
	payload := testPayload()
	payload.Media = []domain.MediaEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, Title: "Fight Club", UpdatedAt: 100},
		{ExternalID: 1399, Type: domain.MediaTypeShow, Title: "Game of Thrones", UpdatedAt: 100},
	}
	payload.Favorites = []domain.FavoriteEntry{
		{ExternalID: 550, Type: domain.MediaTypeMovie, UpdatedAt: 100},
		{ExternalID: 1399, Type: domain.MediaTypeShow, DeletedAt: 150},
	}
	payload.Progress = []domain.ProgressEntry{
		{Progress: domain.Progress{ExternalID: 1399, Type: domain.MediaTypeShow, Season: &season, Episode: &episode, Position: 1200, Duration: 3200, UpdatedAt: 100}},
	}
	payload.Lists = []domain.ListEntry{
		{List: domain.List{ID: "b1", Name: "Watchlist", UpdatedAt: 100}},
	}
	payload.ListItems = []domain.ListItemEntry{
		{ListItem: domain.ListItem{ListID: "b1", ExternalID: 550, Type: domain.MediaTypeMovie, AddedAt: 100}},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	firstLists, err := repos.Lists.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() again error = %v", err)
	}

	lists, err := repos.Lists.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(lists) != len(firstLists) {
		t.Errorf("second apply changed list count: %d -> %d", len(firstLists), len(lists))
	}
	items, err := repos.ListItems.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(items) != 1 {
		t.Errorf("second apply changed item count: got %d, want 1", len(items))
	}

	got, err := repos.Media.Get(ctx, domain.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Favorite || got.FavoriteUpdatedAt != 100 {
		t.Errorf("media = %+v, want favorite stable at 100", got)
	}
}

func TestReconcileService_RecordsSyncMeta(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	if err := svc.Apply(ctx, testPayload()); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	info, err := repos.Meta.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.ImportCheckpoint != "" {
		t.Errorf("ImportCheckpoint = %q, want cleared after completion", info.ImportCheckpoint)
	}
	if info.LastImportedAt != 2000 {
		t.Errorf("LastImportedAt = %d, want 2000", info.LastImportedAt)
	}
}

func TestReconcileService_OrphanListItemSkipped(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestReconcileService(repos, 2000)
	ctx := context.Background()

	payload := testPayload()
	payload.ListItems = []domain.ListItemEntry{
		{ListItem: domain.ListItem{ListID: "ghost", ExternalID: 550, Type: domain.MediaTypeMovie, AddedAt: 100}},
	}

	if err := svc.Apply(ctx, payload); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	items, err := repos.ListItems.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("orphan item imported: %+v", items)
	}
}
