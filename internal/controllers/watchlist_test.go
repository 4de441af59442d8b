package controllers

import (
	"testing"

	"github.com/kitsouko/aniarr/internal/models"
)

func seedWatchedAnime(t *testing.T, db *models.Database, episodes int) *models.Anime {
	t.Helper()
	anime := &models.Anime{Title: "Watched Anime", AiringStatus: models.AiringStatusReleasing}
	for i := 0; i < episodes; i++ {
		anime.Episodes = append(anime.Episodes, models.Episode{Number: i + 1})
	}
	if err := db.CreateAnime(anime); err != nil {
		t.Fatalf("Failed to seed anime: %v", err)
	}
	return anime
}

func TestWatchlistUpsertKeepsSingleEntry(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewWatchlistController(db, newTestLogger())
	anime := seedWatchedAnime(t, db, 12)

	if _, err := ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: anime.ID, Status: models.WatchStatusPlanToWatch,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: anime.ID, Status: models.WatchStatusWatching, Progress: 3,
	}); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	entries, err := ctrl.List("user-1", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected a single entry per (user, anime) pair, got %d", len(entries))
	}
	if entries[0].Status != models.WatchStatusWatching {
		t.Errorf("Latest status should win, got %s", entries[0].Status)
	}
	if entries[0].Progress != 3 {
		t.Errorf("Expected progress 3, got %d", entries[0].Progress)
	}
}

func TestWatchlistUpsertValidation(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewWatchlistController(db, newTestLogger())
	anime := seedWatchedAnime(t, db, 12)

	if _, err := ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: anime.ID, Status: "binging",
	}); err != ErrInvalidStatus {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}

	bad := 9
	if _, err := ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: anime.ID, Status: models.WatchStatusWatching, Rating: &bad,
	}); err != ErrInvalidRating {
		t.Errorf("Expected ErrInvalidRating, got %v", err)
	}

	if _, err := ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: 9999, Status: models.WatchStatusWatching,
	}); err != models.ErrNotFound {
		t.Errorf("Expected ErrNotFound for missing anime, got %v", err)
	}
}

func TestWatchlistProgressClampedToEpisodeCount(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewWatchlistController(db, newTestLogger())
	anime := seedWatchedAnime(t, db, 12)

	entry, err := ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: anime.ID, Status: models.WatchStatusWatching, Progress: 99,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if entry.Progress != 12 {
		t.Errorf("Expected progress clamped to 12, got %d", entry.Progress)
	}

	entry, err = ctrl.Upsert(UpsertRequest{
		UserID: "user-1", AnimeID: anime.ID, Status: models.WatchStatusWatching, Progress: -4,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if entry.Progress != 0 {
		t.Errorf("Negative progress should floor at 0, got %d", entry.Progress)
	}
}

func TestWatchlistListFiltersByStatus(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewWatchlistController(db, newTestLogger())
	first := seedWatchedAnime(t, db, 1)
	second := seedWatchedAnime(t, db, 1)

	if _, err := ctrl.Upsert(UpsertRequest{UserID: "user-1", AnimeID: first.ID, Status: models.WatchStatusCompleted}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := ctrl.Upsert(UpsertRequest{UserID: "user-1", AnimeID: second.ID, Status: models.WatchStatusDropped}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	completed, err := ctrl.List("user-1", models.WatchStatusCompleted)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(completed) != 1 || completed[0].AnimeID != first.ID {
		t.Errorf("Expected only the completed entry, got %d entries", len(completed))
	}

	if _, err := ctrl.List("user-1", "binging"); err != ErrInvalidStatus {
		t.Errorf("Expected ErrInvalidStatus for unknown filter, got %v", err)
	}
}

func TestWatchlistRemove(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewWatchlistController(db, newTestLogger())
	anime := seedWatchedAnime(t, db, 1)

	if _, err := ctrl.Upsert(UpsertRequest{UserID: "user-1", AnimeID: anime.ID, Status: models.WatchStatusWatching}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := ctrl.Remove("user-1", anime.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	entries, _ := ctrl.List("user-1", "")
	if len(entries) != 0 {
		t.Errorf("Expected empty watchlist after remove, got %d entries", len(entries))
	}

	if err := ctrl.Remove("user-1", anime.ID); err != models.ErrNotFound {
		t.Errorf("Expected ErrNotFound for a second remove, got %v", err)
	}
}
