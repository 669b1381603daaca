package service

import (
	"context"
	"errors"
	"testing"

	"github.com/amaumene/syncarr/internal/domain"
)

func newTestLibraryService(repos Repositories, now int64) *LibraryService {
	s := NewLibraryService(repos, fixedLanguage("en-US"))
	s.now = func() int64 { return now }
	return s
}

func TestLibraryService_RemoveFavoriteRecordsTombstone(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)
	ctx := context.Background()

	if err := svc.SetFavorite(ctx, domain.MediaTypeMovie, 550, "Fight Club"); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}

	svc.now = func() int64 { return 200 }
	if err := svc.RemoveFavorite(ctx, domain.MediaTypeMovie, 550); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}

	media, err := repos.Media.Get(ctx, domain.MediaTypeMovie, 550)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if media.Favorite {
		t.Error("media still favorite after RemoveFavorite()")
	}
	deletions, err := repos.Tombstones.AllDeletions(ctx, domain.KindFavorite)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if deletions["movie:550"] != 200 {
		t.Errorf("tombstone = %v, want movie:550 at 200", deletions)
	}

	// Re-favoriting clears the pending deletion.
	svc.now = func() int64 { return 300 }
	if err := svc.SetFavorite(ctx, domain.MediaTypeMovie, 550, ""); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}
	deletions, err = repos.Tombstones.AllDeletions(ctx, domain.KindFavorite)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if len(deletions) != 0 {
		t.Errorf("tombstone survived re-favorite: %v", deletions)
	}
}

func TestLibraryService_SetFavoriteUnknownMediaNeedsTitle(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)

	err := svc.SetFavorite(context.Background(), domain.MediaTypeMovie, 550, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetFavorite() error = %v, want ErrInvalidInput", err)
	}
}

func TestLibraryService_ClearProgress(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)
	ctx := context.Background()

	if err := svc.SaveProgress(ctx, &domain.Progress{
		ExternalID: 550, Type: domain.MediaTypeMovie, Position: 600, Duration: 8340,
	}); err != nil {
		t.Fatalf("SaveProgress() error = %v", err)
	}

	svc.now = func() int64 { return 200 }
	if err := svc.ClearProgress(ctx, domain.MediaTypeMovie, 550, nil, nil); err != nil {
		t.Fatalf("ClearProgress() error = %v", err)
	}

	if _, err := repos.Progress.Get(ctx, "movie:550"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	deletions, err := repos.Tombstones.AllDeletions(ctx, domain.KindProgress)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if deletions["movie:550"] != 200 {
		t.Errorf("tombstone = %v, want movie:550 at 200", deletions)
	}
}

func TestLibraryService_DeleteListTombstonesItems(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Watchlist", false)
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if err := svc.AddListItem(ctx, list.ID, domain.MediaTypeMovie, 550); err != nil {
		t.Fatalf("AddListItem() error = %v", err)
	}

	svc.now = func() int64 { return 200 }
	if err := svc.DeleteList(ctx, "watchlist"); err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}

	if _, err := repos.Lists.Get(ctx, list.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	listDeletions, err := repos.Tombstones.AllDeletions(ctx, domain.KindList)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if listDeletions[list.ID] != 200 {
		t.Errorf("list tombstone = %v, want %s at 200", listDeletions, list.ID)
	}
	itemDeletions, err := repos.Tombstones.AllDeletions(ctx, domain.KindListItem)
	if err != nil {
		t.Fatalf("AllDeletions() error = %v", err)
	}
	if itemDeletions[domain.ListItemKey(list.ID, domain.MediaTypeMovie, 550)] != 200 {
		t.Errorf("item tombstone = %v, want entry at 200", itemDeletions)
	}
}

func TestLibraryService_CreateListRejectsBlankName(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)

	if _, err := svc.CreateList(context.Background(), "   ", false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("CreateList() error = %v, want ErrInvalidInput", err)
	}
}

func TestLibraryService_ResolveListByIDOrName(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Weekend Queue", false)
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}

	byID, err := svc.ResolveList(ctx, list.ID)
	if err != nil {
		t.Fatalf("ResolveList() by id error = %v", err)
	}
	byName, err := svc.ResolveList(ctx, " weekend QUEUE ")
	if err != nil {
		t.Fatalf("ResolveList() by name error = %v", err)
	}
	if byID.ID != list.ID || byName.ID != list.ID {
		t.Errorf("ResolveList() ids = %q, %q, want %q", byID.ID, byName.ID, list.ID)
	}
}

func TestLibraryService_SetThemeValidatesMode(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)
	ctx := context.Background()

	if err := svc.SetTheme(ctx, "sepia"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetTheme() error = %v, want ErrInvalidInput", err)
	}

	if err := svc.SetTheme(ctx, "light"); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}
	settings, err := repos.Settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Theme.Mode != "light" || settings.Theme.UpdatedAt != 100 {
		t.Errorf("Theme = %+v, want light at 100", settings.Theme)
	}
}

func TestLibraryService_SetLanguageResolvesEffective(t *testing.T) {
	repos := setupTestRepos(t)
	svc := newTestLibraryService(repos, 100)
	svc.language = fixedLanguage("fr-FR")
	ctx := context.Background()

	if err := svc.SetLanguage(ctx, domain.LanguageSystem); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	settings, err := repos.Settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Language.Effective != "fr-FR" {
		t.Errorf("Effective = %q, want fr-FR", settings.Language.Effective)
	}

	if err := svc.SetLanguage(ctx, "de-DE"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	settings, err = repos.Settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Language.Effective != "de-DE" {
		t.Errorf("Effective = %q, want de-DE", settings.Language.Effective)
	}
}
