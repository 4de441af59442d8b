package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/cache"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// AnimeHandler serves the catalog: browse/search, detail, freshness, refresh
// and enrichment triggers.
type AnimeHandler struct {
	db          *models.Database
	mirror      *cache.Mirror
	evaluator   *controllers.FreshnessEvaluator
	refreshCtrl *controllers.RefreshController
	enrichCtrl  *controllers.EnrichmentController
	logger      *logrus.Logger
}

// NewAnimeHandler creates a new anime handler
func NewAnimeHandler(db *models.Database, mirror *cache.Mirror, evaluator *controllers.FreshnessEvaluator, refreshCtrl *controllers.RefreshController, enrichCtrl *controllers.EnrichmentController, logger *logrus.Logger) *AnimeHandler {
	return &AnimeHandler{
		db:          db,
		mirror:      mirror,
		evaluator:   evaluator,
		refreshCtrl: refreshCtrl,
		enrichCtrl:  enrichCtrl,
		logger:      logger,
	}
}

// RegisterPublic wires routes that need no user identity
func (h *AnimeHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/anime", h.list)
	rg.GET("/anime/:id", h.get)
	rg.GET("/anime/:id/freshness", h.freshness)
}

// RegisterProtected wires routes that trigger external calls
func (h *AnimeHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/anime/:id/refresh", h.refresh)
	rg.POST("/anime/:id/enrich", h.enrich)
}

func (h *AnimeHandler) list(c *gin.Context) {
	status := models.AiringStatus(c.Query("status"))
	animes, err := h.db.SearchAnimes(c.Query("q"), c.Query("genre"), status)
	if err != nil {
		h.logger.WithError(err).Error("Catalog search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	limit := parseIntDefault(c.Query("limit"), 20)
	offset := parseIntDefault(c.Query("offset"), 0)
	total := len(animes)

	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  animes[offset:end],
	})
}

func (h *AnimeHandler) get(c *gin.Context) {
	anime, ok := h.loadAnime(c)
	if !ok {
		return
	}

	// The mirror is display-layer sugar only; the stored record wins whenever
	// it has data, and the mirror backfills a record fetched without details.
	if len(anime.Characters) == 0 {
		if characters, found := h.mirror.Characters(anime.ID); found {
			anime.Characters = characters
		}
	}
	if len(anime.Episodes) == 0 {
		if episodes, found := h.mirror.Episodes(anime.ID); found {
			anime.Episodes = episodes
		}
	}

	c.JSON(http.StatusOK, anime)
}

func (h *AnimeHandler) freshness(c *gin.Context) {
	anime, ok := h.loadAnime(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.evaluator.Evaluate(anime))
}

type refreshRequest struct {
	Force bool `json:"force"`
}

func (h *AnimeHandler) refresh(c *gin.Context) {
	anime, ok := h.loadAnime(c)
	if !ok {
		return
	}

	var req refreshRequest
	_ = c.ShouldBindJSON(&req) // empty body means no force

	result, err := h.refreshCtrl.Refresh(c.Request.Context(), anime.ID, models.TriggerManual, req.Force)
	if err != nil {
		h.logger.WithError(err).Error("Refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnimeHandler) enrich(c *gin.Context) {
	anime, ok := h.loadAnime(c)
	if !ok {
		return
	}

	summary, err := h.enrichCtrl.EnrichCharacters(c.Request.Context(), anime.ID)
	if err != nil {
		h.logger.WithError(err).Error("Enrichment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "enrichment failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AnimeHandler) loadAnime(c *gin.Context) (*models.Anime, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return nil, false
	}

	anime, err := h.db.GetAnimeByID(id)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		} else {
			h.logger.WithError(err).Error("Failed to load anime")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return nil, false
	}
	return anime, true
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
