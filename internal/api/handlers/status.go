package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports catalog-wide statistics
type StatusHandler struct {
	db        *models.Database
	evaluator *controllers.FreshnessEvaluator
	logger    *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, evaluator *controllers.FreshnessEvaluator, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{db: db, evaluator: evaluator, logger: logger}
}

// Register wires the status route
func (h *StatusHandler) Register(r gin.IRouter) {
	r.GET("/status", h.status)
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalAnimes        int            `json:"total_animes"`
	AnimesByStatus     map[string]int `json:"animes_by_status"`
	AnimesByPriority   map[string]int `json:"animes_by_priority"`
	EnrichedCharacters int            `json:"enriched_characters"`
	PendingCharacters  int            `json:"pending_characters"`
}

func (h *StatusHandler) status(c *gin.Context) {
	animes, err := h.db.GetAllAnimes()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get animes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	response := StatusResponse{
		TotalAnimes:      len(animes),
		AnimesByStatus:   make(map[string]int),
		AnimesByPriority: make(map[string]int),
	}

	for _, anime := range animes {
		response.AnimesByStatus[string(anime.AiringStatus)]++

		report := h.evaluator.Evaluate(anime)
		response.AnimesByPriority[string(report.Priority)]++

		for _, character := range anime.Characters {
			if character.EnrichmentStatus == models.EnrichmentSuccess {
				response.EnrichedCharacters++
			} else {
				response.PendingCharacters++
			}
		}
	}

	c.JSON(http.StatusOK, response)
}
