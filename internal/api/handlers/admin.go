package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// AdminHandler serves administrative operations: the schema migration and the
// filter metadata rebuild.
type AdminHandler struct {
	db          *models.Database
	migrateCtrl *controllers.MigrationController
	metaCtrl    *controllers.MetaController
	logger      *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *models.Database, migrateCtrl *controllers.MigrationController, metaCtrl *controllers.MetaController, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{db: db, migrateCtrl: migrateCtrl, metaCtrl: metaCtrl, logger: logger}
}

// Register wires the admin routes
func (h *AdminHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/admin/migrate", h.migrate)
	rg.POST("/admin/meta/rebuild", h.rebuildMeta)
}

type migrateRequest struct {
	BatchSize  int `json:"batch_size"`
	StartIndex int `json:"start_index"`
}

func (h *AdminHandler) migrate(c *gin.Context) {
	var req migrateRequest
	_ = c.ShouldBindJSON(&req) // zero values mean defaults

	progress, err := h.migrateCtrl.MigrateBatch(c.Request.Context(), req.BatchSize, req.StartIndex)
	if err != nil {
		h.logger.WithError(err).Error("Migration batch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "migration failed"})
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *AdminHandler) rebuildMeta(c *gin.Context) {
	meta, err := h.metaCtrl.Rebuild()
	if err != nil {
		h.logger.WithError(err).Error("Filter metadata rebuild failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rebuild failed"})
		return
	}

	c.JSON(http.StatusOK, meta)
}
