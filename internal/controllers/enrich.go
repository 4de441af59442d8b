package controllers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/services/llm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CharacterGenerator is the external text-generation collaborator
type CharacterGenerator interface {
	GenerateCharacterProfile(ctx context.Context, req llm.EnrichmentRequest) (*llm.EnrichedFields, error)
}

// EnrichmentSummary reports the outcome of one enrichment batch
type EnrichmentSummary struct {
	Requested  int                `json:"requested"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Message    string             `json:"message,omitempty"`
	Characters []models.Character `json:"characters"`
}

// EnrichmentController fills in AI-generated biographical fields for
// characters that have not been enriched yet. Requests fan out per character
// and settle independently; one failure never aborts the rest, and nothing is
// retried. At most one batch per anime runs at a time.
type EnrichmentController struct {
	db        *models.Database
	generator CharacterGenerator
	mirror    *cache.Mirror
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	batchSize int
	// markFailed controls the failure path: false leaves a failed character's
	// prior status untouched (retryable on the next batch), true records an
	// explicit failed status with the error message.
	markFailed bool

	mu       sync.Mutex
	inflight map[uint64]bool
}

// NewEnrichmentController creates a new enrichment controller
func NewEnrichmentController(db *models.Database, generator CharacterGenerator, mirror *cache.Mirror, m *metrics.Metrics, batchSize int, markFailed bool, logger *logrus.Logger) *EnrichmentController {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &EnrichmentController{
		db:         db,
		generator:  generator,
		mirror:     mirror,
		metrics:    m,
		logger:     logger,
		batchSize:  batchSize,
		markFailed: markFailed,
		inflight:   make(map[uint64]bool),
	}
}

type enrichOutcome struct {
	name   string
	fields *llm.EnrichedFields
	err    error
}

// EnrichCharacters runs one enrichment batch for an anime: up to batchSize
// characters whose status is not success, one generation request each.
func (c *EnrichmentController) EnrichCharacters(ctx context.Context, animeID uint64) (*EnrichmentSummary, error) {
	if !c.begin(animeID) {
		return &EnrichmentSummary{Message: "enrichment already in progress"}, nil
	}
	defer c.end(animeID)

	anime, err := c.db.GetAnimeByID(animeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load anime: %w", err)
	}

	candidates := selectCandidates(anime.Characters, c.batchSize)
	if len(candidates) == 0 {
		return &EnrichmentSummary{Message: "no characters need enrichment", Characters: anime.Characters}, nil
	}

	c.logger.WithFields(logrus.Fields{
		"anime_id":   animeID,
		"title":      anime.Title,
		"candidates": len(candidates),
	}).Info("Starting character enrichment batch")

	// Fan out one request per candidate; every slot settles on its own.
	outcomes := make([]enrichOutcome, len(candidates))
	var g errgroup.Group
	g.SetLimit(c.batchSize)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			fields, genErr := c.generator.GenerateCharacterProfile(ctx, llm.EnrichmentRequest{
				CharacterName: candidate.Name,
				AnimeTitle:    anime.Title,
				Role:          string(candidate.Role),
				Description:   candidate.Description,
			})
			outcomes[i] = enrichOutcome{name: candidate.Name, fields: fields, err: genErr}
			return nil
		})
	}
	_ = g.Wait()

	// Re-read the record and apply outcomes per character by name, so a
	// concurrent refresh or second batch cannot be overwritten wholesale.
	anime, err = c.db.GetAnimeByID(animeID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload anime: %w", err)
	}

	summary := &EnrichmentSummary{Requested: len(candidates)}
	now := time.Now()

	for _, outcome := range outcomes {
		idx := characterIndex(anime.Characters, outcome.name)
		if idx == -1 {
			c.logger.WithField("character", outcome.name).Warn("Character vanished during enrichment, dropping result")
			continue
		}
		character := &anime.Characters[idx]
		character.EnrichmentAttempts++
		character.LastAttemptAt = &now

		if outcome.err != nil {
			summary.Failed++
			c.metrics.EnrichmentTotal.WithLabelValues("error").Inc()
			c.logger.WithError(outcome.err).WithFields(logrus.Fields{
				"anime_id":  animeID,
				"character": outcome.name,
			}).Warn("Character enrichment failed")

			if c.markFailed {
				character.EnrichmentStatus = models.EnrichmentFailed
				character.LastErrorMessage = outcome.err.Error()
			}
			continue
		}

		applyEnrichment(character, outcome.fields, now)
		summary.Succeeded++
		c.metrics.EnrichmentTotal.WithLabelValues("ok").Inc()
	}

	if err := c.db.UpdateAnime(anime); err != nil {
		return nil, fmt.Errorf("failed to save enriched anime: %w", err)
	}

	c.mirror.SaveCharacters(animeID, anime.Characters)

	summary.Characters = anime.Characters
	c.logger.WithFields(logrus.Fields{
		"anime_id":  animeID,
		"requested": summary.Requested,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	}).Info("Character enrichment batch completed")

	return summary, nil
}

func (c *EnrichmentController) begin(animeID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[animeID] {
		return false
	}
	c.inflight[animeID] = true
	return true
}

func (c *EnrichmentController) end(animeID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, animeID)
}

// selectCandidates picks up to limit characters that are not yet successfully
// enriched, in stored order. Characters beyond the limit are left untouched.
func selectCandidates(characters []models.Character, limit int) []models.Character {
	var out []models.Character
	for _, character := range characters {
		if character.EnrichmentStatus == models.EnrichmentSuccess {
			continue
		}
		out = append(out, character)
		if len(out) == limit {
			break
		}
	}
	return out
}

func characterIndex(characters []models.Character, name string) int {
	for i := range characters {
		if characters[i].Name == name {
			return i
		}
	}
	return -1
}

func applyEnrichment(character *models.Character, fields *llm.EnrichedFields, now time.Time) {
	character.Personality = fields.Personality
	character.Backstory = fields.Backstory
	character.CharacterArcs = fields.CharacterArcs
	character.Relationships = fields.Relationships
	character.Abilities = fields.Abilities
	character.Trivia = fields.Trivia

	character.EnrichmentStatus = models.EnrichmentSuccess
	character.EnrichedAt = &now
	character.LastErrorMessage = ""
}
