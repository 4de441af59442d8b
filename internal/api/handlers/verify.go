package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kitsouko/aniarr/internal/api/middleware"
	"github.com/kitsouko/aniarr/internal/controllers"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// VerifyHandler serves phone verification
type VerifyHandler struct {
	verifyCtrl *controllers.VerifyController
	logger     *logrus.Logger
}

// NewVerifyHandler creates a new verification handler
func NewVerifyHandler(verifyCtrl *controllers.VerifyController, logger *logrus.Logger) *VerifyHandler {
	return &VerifyHandler{verifyCtrl: verifyCtrl, logger: logger}
}

// Register wires the verification routes
func (h *VerifyHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/verify/start", h.start)
	rg.POST("/verify/check", h.check)
}

type startRequest struct {
	PhoneNumber string `json:"phone_number"`
}

func (h *VerifyHandler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id, err := h.verifyCtrl.Start(c.Request.Context(), middleware.UserID(c), req.PhoneNumber)
	if err != nil {
		switch {
		case errors.Is(err, controllers.ErrInvalidPhone):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, controllers.ErrSendFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Verification start failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"verification_id": id})
}

type checkRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

func (h *VerifyHandler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.VerificationID == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "verification_id and code are required"})
		return
	}

	err := h.verifyCtrl.Check(c.Request.Context(), req.VerificationID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "verification not found"})
		case errors.Is(err, controllers.ErrCodeExpired),
			errors.Is(err, controllers.ErrTooManyAttempts),
			errors.Is(err, controllers.ErrCodeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Verification check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true})
}
