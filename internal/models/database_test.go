package models

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAnimeAssignsIDAndVersion(t *testing.T) {
	db := newTestDB(t)

	anime := &Anime{Title: "First", AiringStatus: AiringStatusFinished}
	if err := db.CreateAnime(anime); err != nil {
		t.Fatalf("CreateAnime failed: %v", err)
	}
	if anime.ID == 0 {
		t.Error("Expected an assigned ID")
	}
	if anime.SchemaVersion != AnimeSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", AnimeSchemaVersion, anime.SchemaVersion)
	}

	got, err := db.GetAnimeByID(anime.ID)
	if err != nil {
		t.Fatalf("GetAnimeByID failed: %v", err)
	}
	if got.Title != "First" {
		t.Errorf("Expected title First, got %q", got.Title)
	}
}

func TestSearchAnimes(t *testing.T) {
	db := newTestDB(t)

	seed := []*Anime{
		{Title: "Cowboy Bebop", AltTitles: []string{"カウボーイビバップ"}, Genres: []string{"Action", "Sci-Fi"}, AiringStatus: AiringStatusFinished},
		{Title: "Space Dandy", Genres: []string{"Comedy", "Sci-Fi"}, AiringStatus: AiringStatusFinished},
		{Title: "One Piece", Genres: []string{"Action"}, AiringStatus: AiringStatusReleasing},
	}
	for _, anime := range seed {
		if err := db.CreateAnime(anime); err != nil {
			t.Fatalf("Failed to seed anime: %v", err)
		}
	}

	results, err := db.SearchAnimes("bebop", "", "")
	if err != nil {
		t.Fatalf("SearchAnimes failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Cowboy Bebop" {
		t.Errorf("Title search failed, got %d results", len(results))
	}

	results, _ = db.SearchAnimes("", "sci-fi", "")
	if len(results) != 2 {
		t.Errorf("Genre filter should be case-insensitive, got %d results", len(results))
	}

	results, _ = db.SearchAnimes("", "", AiringStatusReleasing)
	if len(results) != 1 || results[0].Title != "One Piece" {
		t.Errorf("Status filter failed, got %d results", len(results))
	}

	results, _ = db.SearchAnimes("piece", "Action", AiringStatusReleasing)
	if len(results) != 1 {
		t.Errorf("Combined filters failed, got %d results", len(results))
	}

	results, _ = db.SearchAnimes("", "", "")
	if len(results) != 3 {
		t.Errorf("Empty filters should return everything, got %d results", len(results))
	}
}

func TestGetAllAnimesSortedByID(t *testing.T) {
	db := newTestDB(t)

	for _, title := range []string{"Zeta", "Alpha", "Mid"} {
		if err := db.CreateAnime(&Anime{Title: title}); err != nil {
			t.Fatalf("Failed to seed anime: %v", err)
		}
	}

	animes, err := db.GetAllAnimes()
	if err != nil {
		t.Fatalf("GetAllAnimes failed: %v", err)
	}
	for i := 1; i < len(animes); i++ {
		if animes[i].ID <= animes[i-1].ID {
			t.Fatal("Expected ascending ID order")
		}
	}
}

func TestReviewsNewestFirst(t *testing.T) {
	db := newTestDB(t)

	anime := &Anime{Title: "Ordered"}
	if err := db.CreateAnime(anime); err != nil {
		t.Fatalf("Failed to seed anime: %v", err)
	}

	for i, user := range []string{"user-1", "user-2", "user-3"} {
		review := &Review{UserID: user, AnimeID: anime.ID, Rating: 3}
		if err := db.CreateReview(review); err != nil {
			t.Fatalf("CreateReview failed: %v", err)
		}
		// Spread creation times so the ordering is deterministic
		review.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := db.UpdateReview(review); err != nil {
			t.Fatalf("UpdateReview failed: %v", err)
		}
	}

	reviews, err := db.GetReviewsByAnime(anime.ID)
	if err != nil {
		t.Fatalf("GetReviewsByAnime failed: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("Expected 3 reviews, got %d", len(reviews))
	}
	if reviews[0].UserID != "user-3" || reviews[2].UserID != "user-1" {
		t.Errorf("Expected newest first, got %s .. %s", reviews[0].UserID, reviews[2].UserID)
	}
}

func TestUpsertUserProfilePreservesCreatedAt(t *testing.T) {
	db := newTestDB(t)

	profile := &UserProfile{UserID: "user-1", Moods: []string{"cozy"}}
	if err := db.UpsertUserProfile(profile); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	created := profile.CreatedAt

	update := &UserProfile{UserID: "user-1", Moods: []string{"intense"}, OnboardingDone: true}
	if err := db.UpsertUserProfile(update); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	got, err := db.GetUserProfile("user-1")
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("Upsert should preserve the original CreatedAt")
	}
	if !got.OnboardingDone || len(got.Moods) != 1 || got.Moods[0] != "intense" {
		t.Errorf("Upsert should replace the profile fields, got %+v", got)
	}
}

func TestFilterMetadataSingleton(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetFilterMetadata(); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound before first save, got %v", err)
	}

	if err := db.SaveFilterMetadata(&FilterMetadata{Genres: []string{"Action"}, AnimeCount: 1}); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := db.SaveFilterMetadata(&FilterMetadata{Genres: []string{"Drama"}, AnimeCount: 2}); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	meta, err := db.GetFilterMetadata()
	if err != nil {
		t.Fatalf("GetFilterMetadata failed: %v", err)
	}
	if meta.AnimeCount != 2 || len(meta.Genres) != 1 || meta.Genres[0] != "Drama" {
		t.Errorf("Expected the singleton to be replaced, got %+v", meta)
	}
}
