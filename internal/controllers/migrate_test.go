package controllers

import (
	"context"
	"fmt"
	"testing"

	"github.com/kitsouko/aniarr/internal/models"
)

func seedLegacyAnime(t *testing.T, db *models.Database, title string, enriched *bool) *models.Anime {
	t.Helper()
	anime := &models.Anime{
		Title:        title,
		AiringStatus: models.AiringStatusFinished,
		Characters: []models.Character{
			{Name: "Legacy Character", Role: models.RoleMain, IsAIEnriched: enriched},
		},
		SchemaVersion: 1,
	}
	if err := db.CreateAnime(anime); err != nil {
		t.Fatalf("Failed to seed anime: %v", err)
	}
	return anime
}

func boolPtr(v bool) *bool { return &v }

func TestMigrateAllTranslatesLegacyFlag(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewMigrationController(db, newTestLogger())

	enriched := seedLegacyAnime(t, db, "Enriched Legacy", boolPtr(true))
	pending := seedLegacyAnime(t, db, "Pending Legacy", boolPtr(false))

	progress, err := ctrl.MigrateAll(context.Background())
	if err != nil {
		t.Fatalf("MigrateAll failed: %v", err)
	}
	if progress.Updated != 2 {
		t.Errorf("Expected 2 updated documents, got %d", progress.Updated)
	}

	got, _ := db.GetAnimeByID(enriched.ID)
	if got.SchemaVersion != models.AnimeSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", models.AnimeSchemaVersion, got.SchemaVersion)
	}
	if got.Characters[0].EnrichmentStatus != models.EnrichmentSuccess {
		t.Errorf("Legacy true flag should map to success, got %s", got.Characters[0].EnrichmentStatus)
	}
	if got.Characters[0].IsAIEnriched != nil {
		t.Error("Legacy flag should be cleared after migration")
	}

	got, _ = db.GetAnimeByID(pending.ID)
	if got.Characters[0].EnrichmentStatus != models.EnrichmentPending {
		t.Errorf("Legacy false flag should map to pending, got %s", got.Characters[0].EnrichmentStatus)
	}
}

func TestMigrateLegacyFalseWithContentMapsToSuccess(t *testing.T) {
	anime := &models.Anime{
		Characters: []models.Character{{
			Name:         "Lagging Flag",
			IsAIEnriched: boolPtr(false),
			Personality:  "Already generated",
		}},
	}

	migrateCharacters(anime)

	if anime.Characters[0].EnrichmentStatus != models.EnrichmentSuccess {
		t.Errorf("Character with enriched content should map to success, got %s",
			anime.Characters[0].EnrichmentStatus)
	}
}

func TestMigrateAllIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewMigrationController(db, newTestLogger())

	seedLegacyAnime(t, db, "Once", boolPtr(true))

	first, err := ctrl.MigrateAll(context.Background())
	if err != nil {
		t.Fatalf("First pass failed: %v", err)
	}
	if first.Updated != 1 {
		t.Fatalf("Expected 1 update on first pass, got %d", first.Updated)
	}

	second, err := ctrl.MigrateAll(context.Background())
	if err != nil {
		t.Fatalf("Second pass failed: %v", err)
	}
	if second.Updated != 0 {
		t.Errorf("Second pass should find nothing to update, got %d", second.Updated)
	}
}

func TestMigrateBatchVisitsEveryDocumentOnce(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewMigrationController(db, newTestLogger())

	const total = 7
	for i := 0; i < total; i++ {
		seedLegacyAnime(t, db, fmt.Sprintf("Batch %d", i+1), boolPtr(false))
	}

	scanned, updated, index, rounds := 0, 0, 0, 0
	for {
		progress, err := ctrl.MigrateBatch(context.Background(), 3, index)
		if err != nil {
			t.Fatalf("MigrateBatch failed: %v", err)
		}
		scanned += progress.Scanned
		updated += progress.Updated
		index = progress.NextIndex
		rounds++
		if !progress.HasMore {
			break
		}
		if rounds > total {
			t.Fatal("Batched migration did not terminate")
		}
	}

	if scanned != total {
		t.Errorf("Expected %d scanned across batches, got %d", total, scanned)
	}
	if updated != total {
		t.Errorf("Expected %d updated across batches, got %d", total, updated)
	}
	if rounds != 3 {
		t.Errorf("Expected 3 batches of size 3 for %d documents, got %d", total, rounds)
	}
}

func TestMigrateBatchPastEndIsHarmless(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewMigrationController(db, newTestLogger())

	seedLegacyAnime(t, db, "Only", boolPtr(true))

	progress, err := ctrl.MigrateBatch(context.Background(), 50, 100)
	if err != nil {
		t.Fatalf("MigrateBatch failed: %v", err)
	}
	if progress.Scanned != 0 || progress.HasMore {
		t.Errorf("Out-of-range start should scan nothing, got %+v", progress)
	}
}
