package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/api/middleware"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// WatchlistHandler serves a user's watchlist
type WatchlistHandler struct {
	watchlistCtrl *controllers.WatchlistController
	logger        *logrus.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlistCtrl *controllers.WatchlistController, logger *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlistCtrl: watchlistCtrl, logger: logger}
}

// Register wires the watchlist routes
func (h *WatchlistHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/watchlist", h.list)
	rg.POST("/watchlist", h.upsert)
	rg.DELETE("/watchlist/:animeID", h.remove)
}

type watchlistRequest struct {
	AnimeID  uint64 `json:"anime_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Rating   *int   `json:"rating"`
	Notes    string `json:"notes"`
	Public   bool   `json:"public"`
}

func (h *WatchlistHandler) upsert(c *gin.Context) {
	var req watchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.AnimeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id required"})
		return
	}

	entry, err := h.watchlistCtrl.Upsert(controllers.UpsertRequest{
		UserID:   middleware.UserID(c),
		AnimeID:  req.AnimeID,
		Status:   models.WatchStatus(req.Status),
		Progress: req.Progress,
		Rating:   req.Rating,
		Notes:    req.Notes,
		Public:   req.Public,
	})
	if err != nil {
		switch err {
		case controllers.ErrInvalidStatus, controllers.ErrInvalidRating:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case models.ErrNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		default:
			h.logger.WithError(err).Error("Watchlist upsert failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upsert failed"})
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *WatchlistHandler) list(c *gin.Context) {
	entries, err := h.watchlistCtrl.List(middleware.UserID(c), models.WatchStatus(c.Query("status")))
	if err != nil {
		if err == controllers.ErrInvalidStatus {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Watchlist list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *WatchlistHandler) remove(c *gin.Context) {
	animeID, err := strconv.ParseUint(c.Param("animeID"), 10, 64)
	if err != nil || animeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	if err := h.watchlistCtrl.Remove(middleware.UserID(c), animeID); err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "not on watchlist"})
			return
		}
		h.logger.WithError(err).Error("Watchlist remove failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "remove failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}
