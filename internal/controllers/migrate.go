package controllers

import (
	"context"
	"fmt"

	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// MigrationProgress is the continuation contract of the batched migration
type MigrationProgress struct {
	Scanned   int  `json:"scanned"`
	Updated   int  `json:"updated"`
	HasMore   bool `json:"has_more"`
	NextIndex int  `json:"next_index"`
}

// MigrationController rewrites pre-v2 anime documents: the legacy per-character
// IsAIEnriched boolean becomes the EnrichmentStatus enum and the document is
// stamped with SchemaVersion 2. The rewrite is idempotent; already-migrated
// documents are skipped by version, not by structural probing.
type MigrationController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewMigrationController creates a new migration controller
func NewMigrationController(db *models.Database, logger *logrus.Logger) *MigrationController {
	return &MigrationController{db: db, logger: logger}
}

// MigrateAll runs the migration over the whole catalog in one pass
func (c *MigrationController) MigrateAll(ctx context.Context) (*MigrationProgress, error) {
	total := &MigrationProgress{}
	index := 0
	for {
		progress, err := c.MigrateBatch(ctx, 50, index)
		if err != nil {
			return nil, err
		}
		total.Scanned += progress.Scanned
		total.Updated += progress.Updated
		if !progress.HasMore {
			return total, nil
		}
		index = progress.NextIndex
	}
}

// MigrateBatch migrates up to batchSize documents starting at startIndex in
// stable ID order. Driving it by NextIndex visits every document exactly once
// and terminates with HasMore=false.
func (c *MigrationController) MigrateBatch(ctx context.Context, batchSize, startIndex int) (*MigrationProgress, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	if startIndex < 0 {
		startIndex = 0
	}

	animes, err := c.db.GetAllAnimes()
	if err != nil {
		return nil, fmt.Errorf("failed to list animes: %w", err)
	}

	end := startIndex + batchSize
	if end > len(animes) {
		end = len(animes)
	}

	progress := &MigrationProgress{NextIndex: end, HasMore: end < len(animes)}
	if startIndex >= len(animes) {
		progress.NextIndex = len(animes)
		progress.HasMore = false
		return progress, nil
	}

	for _, anime := range animes[startIndex:end] {
		progress.Scanned++

		if anime.SchemaVersion >= models.AnimeSchemaVersion {
			continue
		}

		migrated := migrateCharacters(anime)
		anime.SchemaVersion = models.AnimeSchemaVersion
		if err := c.db.UpdateAnime(anime); err != nil {
			return nil, fmt.Errorf("failed to save migrated anime %d: %w", anime.ID, err)
		}
		progress.Updated++

		c.logger.WithFields(logrus.Fields{
			"anime_id":   anime.ID,
			"title":      anime.Title,
			"characters": migrated,
		}).Info("Migrated anime to schema v2")
	}

	return progress, nil
}

// migrateCharacters translates the legacy boolean on each character and
// returns how many characters were rewritten. Mapping: true means success,
// false with enriched content present also means success (the flag lagged the
// data in old documents), everything else is pending.
func migrateCharacters(anime *models.Anime) int {
	migrated := 0
	for i := range anime.Characters {
		character := &anime.Characters[i]

		if character.IsAIEnriched != nil {
			if *character.IsAIEnriched || character.Enriched() {
				character.EnrichmentStatus = models.EnrichmentSuccess
			} else {
				character.EnrichmentStatus = models.EnrichmentPending
			}
			character.IsAIEnriched = nil
			migrated++
			continue
		}

		if character.EnrichmentStatus == "" {
			character.EnrichmentStatus = models.EnrichmentPending
			migrated++
		}
	}
	return migrated
}
