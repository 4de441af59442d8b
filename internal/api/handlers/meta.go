package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// MetaHandler serves the derived filter metadata
type MetaHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewMetaHandler creates a new filter metadata handler
func NewMetaHandler(db *models.Database, logger *logrus.Logger) *MetaHandler {
	return &MetaHandler{db: db, logger: logger}
}

// Register wires the filter metadata route
func (h *MetaHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/meta/filters", h.filters)
}

func (h *MetaHandler) filters(c *gin.Context) {
	meta, err := h.db.GetFilterMetadata()
	if err != nil {
		if err == models.ErrNotFound {
			// First boot before the rebuild job has run
			c.JSON(http.StatusOK, &models.FilterMetadata{})
			return
		}
		h.logger.WithError(err).Error("Filter metadata load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, meta)
}
