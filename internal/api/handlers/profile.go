package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/api/middleware"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// ProfileHandler serves the user's onboarding profile
type ProfileHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(db *models.Database, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{db: db, logger: logger}
}

// Register wires the profile routes
func (h *ProfileHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile", h.get)
	rg.PUT("/profile", h.put)
}

func (h *ProfileHandler) get(c *gin.Context) {
	profile, err := h.db.GetUserProfile(middleware.UserID(c))
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.WithError(err).Error("Profile load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type profileRequest struct {
	Moods           []string `json:"moods"`
	Genres          []string `json:"genres"`
	FavoriteAnime   []string `json:"favorite_anime"`
	ExperienceLevel string   `json:"experience_level"`
	DislikedGenres  []string `json:"disliked_genres"`
	DislikedTags    []string `json:"disliked_tags"`
	Archetypes      []string `json:"archetypes"`
	OnboardingDone  bool     `json:"onboarding_done"`
}

func (h *ProfileHandler) put(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	userID := middleware.UserID(c)

	// Admin and verification flags are never writable through this endpoint
	profile, err := h.db.GetUserProfile(userID)
	if err != nil {
		if err != models.ErrNotFound {
			h.logger.WithError(err).Error("Profile load failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		profile = &models.UserProfile{UserID: userID}
	}

	profile.Moods = req.Moods
	profile.Genres = req.Genres
	profile.FavoriteAnime = req.FavoriteAnime
	profile.ExperienceLevel = req.ExperienceLevel
	profile.DislikedGenres = req.DislikedGenres
	profile.DislikedTags = req.DislikedTags
	profile.Archetypes = req.Archetypes
	profile.OnboardingDone = req.OnboardingDone

	if err := h.db.UpsertUserProfile(profile); err != nil {
		h.logger.WithError(err).Error("Profile save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
