package controllers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/services/jikan"
	"github.com/sirupsen/logrus"
)

// MetadataProvider is the external anime catalog collaborator
type MetadataProvider interface {
	FetchByTitle(ctx context.Context, title string) (*jikan.AnimeMetadata, error)
}

// RefreshResult reports the outcome of one refresh request
type RefreshResult struct {
	Refreshed   bool   `json:"refreshed"`
	DataChanged bool   `json:"data_changed"`
	Message     string `json:"message"`
}

// RefreshController re-fetches external anime metadata when the freshness
// evaluator says the stored record has gone stale, and merge-writes the result
// back. At most one refresh per anime is in flight at a time; concurrent
// callers are turned away instead of stacking duplicate provider calls.
type RefreshController struct {
	db        *models.Database
	provider  MetadataProvider
	evaluator *FreshnessEvaluator
	mirror    *cache.Mirror
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	mu       sync.Mutex
	inflight map[uint64]bool
}

// NewRefreshController creates a new refresh controller
func NewRefreshController(db *models.Database, provider MetadataProvider, evaluator *FreshnessEvaluator, mirror *cache.Mirror, m *metrics.Metrics, logger *logrus.Logger) *RefreshController {
	return &RefreshController{
		db:        db,
		provider:  provider,
		evaluator: evaluator,
		mirror:    mirror,
		metrics:   m,
		logger:    logger,
		inflight:  make(map[uint64]bool),
	}
}

// Refresh conditionally re-fetches metadata for one anime. Provider failures
// are terminal for the invocation and reported in the result message; nothing
// is retried here.
func (c *RefreshController) Refresh(ctx context.Context, animeID uint64, trigger models.RefreshTrigger, force bool) (*RefreshResult, error) {
	if !c.begin(animeID) {
		return &RefreshResult{Refreshed: false, Message: "refresh already in progress"}, nil
	}
	defer c.end(animeID)

	anime, err := c.db.GetAnimeByID(animeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load anime: %w", err)
	}

	if !force {
		report := c.evaluator.Evaluate(anime)
		if report.Priority == models.PriorityNone {
			c.metrics.RefreshTotal.WithLabelValues(string(trigger), "skipped").Inc()
			return &RefreshResult{Refreshed: false, Message: "record is fresh, no refresh needed"}, nil
		}
	}

	c.logger.WithFields(logrus.Fields{
		"anime_id": animeID,
		"title":    anime.Title,
		"trigger":  trigger,
		"force":    force,
	}).Info("Refreshing anime metadata")

	meta, err := c.provider.FetchByTitle(ctx, anime.Title)
	if err != nil {
		c.metrics.RefreshTotal.WithLabelValues(string(trigger), "error").Inc()
		c.logger.WithError(err).WithField("anime_id", animeID).Warn("Metadata fetch failed")
		return &RefreshResult{
			Refreshed: false,
			Message:   fmt.Sprintf("metadata fetch failed: %v", err),
		}, nil
	}

	changed := mergeMetadata(anime, meta)

	now := time.Now()
	anime.LastFetchedAt = &now
	if err := c.db.UpdateAnime(anime); err != nil {
		return nil, fmt.Errorf("failed to save anime: %w", err)
	}

	c.mirror.SaveEpisodes(animeID, anime.Episodes)
	c.mirror.SaveCharacters(animeID, anime.Characters)

	c.metrics.RefreshTotal.WithLabelValues(string(trigger), "ok").Inc()

	message := "metadata refreshed, no changes"
	if changed {
		message = "metadata refreshed and updated"
	}
	return &RefreshResult{Refreshed: true, DataChanged: changed, Message: message}, nil
}

// RefreshStale evaluates the whole catalog and refreshes the worst records,
// most degraded first. Used by the background sweep.
func (c *RefreshController) RefreshStale(ctx context.Context, batch int) {
	animes, err := c.db.GetAllAnimes()
	if err != nil {
		c.logger.WithError(err).Error("Failed to list animes for background sweep")
		return
	}

	type scored struct {
		anime  *models.Anime
		report FreshnessReport
	}
	var stale []scored
	for _, anime := range animes {
		report := c.evaluator.Evaluate(anime)
		if report.Priority == models.PriorityCritical || report.Priority == models.PriorityHigh {
			stale = append(stale, scored{anime: anime, report: report})
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].report.Score < stale[j].report.Score })

	if len(stale) > batch {
		stale = stale[:batch]
	}

	for _, entry := range stale {
		result, err := c.Refresh(ctx, entry.anime.ID, models.TriggerBackground, false)
		if err != nil {
			c.logger.WithError(err).WithField("anime_id", entry.anime.ID).Error("Background refresh failed")
			continue
		}
		c.logger.WithFields(logrus.Fields{
			"anime_id":     entry.anime.ID,
			"title":        entry.anime.Title,
			"refreshed":    result.Refreshed,
			"data_changed": result.DataChanged,
		}).Debug("Background refresh completed")
	}
}

func (c *RefreshController) begin(animeID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[animeID] {
		return false
	}
	c.inflight[animeID] = true
	return true
}

func (c *RefreshController) end(animeID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, animeID)
}

// mergeMetadata merges provider fields into the stored record and reports
// whether anything changed. Fields the provider did not return are left alone,
// and character enrichment payloads are never touched.
func mergeMetadata(anime *models.Anime, meta *jikan.AnimeMetadata) bool {
	changed := false

	changed = mergeString(&anime.Description, meta.Description) || changed
	changed = mergeString(&anime.PosterURL, meta.PosterURL) || changed
	changed = mergeString(&anime.TrailerURL, meta.TrailerURL) || changed

	if len(meta.AltTitles) > 0 && !equalStrings(anime.AltTitles, meta.AltTitles) {
		anime.AltTitles = meta.AltTitles
		changed = true
	}
	if len(meta.Genres) > 0 && !equalStrings(anime.Genres, meta.Genres) {
		anime.Genres = meta.Genres
		changed = true
	}
	if len(meta.Studios) > 0 && !equalStrings(anime.Studios, meta.Studios) {
		anime.Studios = meta.Studios
		changed = true
	}
	if len(meta.Themes) > 0 && !equalStrings(anime.Themes, meta.Themes) {
		anime.Themes = meta.Themes
		changed = true
	}

	if meta.Score != 0 && meta.Score != anime.ExternalRating {
		anime.ExternalRating = meta.Score
		changed = true
	}
	if meta.AiringStatus != "" && models.AiringStatus(meta.AiringStatus) != anime.AiringStatus {
		anime.AiringStatus = models.AiringStatus(meta.AiringStatus)
		changed = true
	}
	if meta.NextAiringEpisode != nil {
		projection := &models.AiringProjection{
			Episode:  meta.NextAiringEpisode.Episode,
			AiringAt: meta.NextAiringEpisode.AiringAt,
		}
		if anime.NextAiringEpisode == nil || *anime.NextAiringEpisode != *projection {
			anime.NextAiringEpisode = projection
			changed = true
		}
	}

	changed = mergeEpisodes(anime, meta.Episodes) || changed
	changed = mergeCharacters(anime, meta.Characters) || changed

	return changed
}

func mergeEpisodes(anime *models.Anime, episodes []jikan.EpisodeMetadata) bool {
	if len(episodes) == 0 {
		return false
	}

	mapped := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		mapped = append(mapped, models.Episode{
			Number:          ep.Number,
			Title:           ep.Title,
			AirDate:         ep.AirDate,
			DurationMinutes: ep.DurationMinutes,
			ThumbnailURL:    ep.ThumbnailURL,
			PreviewURL:      ep.PreviewURL,
		})
	}

	if equalEpisodes(anime.Episodes, mapped) {
		return false
	}
	anime.Episodes = mapped
	return true
}

// mergeCharacters updates base fields of known characters by name and appends
// new ones with a pending enrichment status. Stored characters the provider no
// longer returns are kept (characters are never deleted, only overwritten).
func mergeCharacters(anime *models.Anime, characters []jikan.CharacterMetadata) bool {
	if len(characters) == 0 {
		return false
	}

	byName := make(map[string]int, len(anime.Characters))
	for i, existing := range anime.Characters {
		byName[existing.Name] = i
	}

	changed := false
	for _, incoming := range characters {
		if idx, ok := byName[incoming.Name]; ok {
			existing := &anime.Characters[idx]
			changed = mergeString(&existing.ImageURL, incoming.ImageURL) || changed
			changed = mergeString(&existing.Description, incoming.Description) || changed
			if incoming.Role != "" && models.CharacterRole(incoming.Role) != existing.Role {
				existing.Role = models.CharacterRole(incoming.Role)
				changed = true
			}
			continue
		}

		anime.Characters = append(anime.Characters, models.Character{
			Name:             incoming.Name,
			ImageURL:         incoming.ImageURL,
			Role:             models.CharacterRole(incoming.Role),
			Description:      incoming.Description,
			EnrichmentStatus: models.EnrichmentPending,
		})
		byName[incoming.Name] = len(anime.Characters) - 1
		changed = true
	}

	return changed
}

func mergeString(dst *string, src string) bool {
	if src == "" || src == *dst {
		return false
	}
	*dst = src
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalEpisodes(a, b []models.Episode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Number != b[i].Number || a[i].Title != b[i].Title ||
			a[i].DurationMinutes != b[i].DurationMinutes ||
			a[i].ThumbnailURL != b[i].ThumbnailURL || a[i].PreviewURL != b[i].PreviewURL ||
			!equalAirDates(a[i].AirDate, b[i].AirDate) {
			return false
		}
	}
	return true
}

func equalAirDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
