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

// ReviewHandler serves reviews, votes and comment threads
type ReviewHandler struct {
	db         *models.Database
	reviewCtrl *controllers.ReviewController
	logger     *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(db *models.Database, reviewCtrl *controllers.ReviewController, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{db: db, reviewCtrl: reviewCtrl, logger: logger}
}

// RegisterPublic wires read-only review routes
func (h *ReviewHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/anime/:id/reviews", h.listByAnime)
	rg.GET("/reviews/:id/comments", h.listComments)
}

// RegisterProtected wires review mutation routes
func (h *ReviewHandler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/anime/:id/reviews", h.create)
	rg.PATCH("/reviews/:id", h.update)
	rg.DELETE("/reviews/:id", h.delete)
	rg.POST("/reviews/:id/vote", h.vote)
	rg.POST("/reviews/:id/comments", h.comment)
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
	Spoiler bool   `json:"spoiler"`
}

func (h *ReviewHandler) create(c *gin.Context) {
	animeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || animeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	review, err := h.reviewCtrl.Create(middleware.UserID(c), animeID, req.Rating, req.Text, req.Spoiler)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) update(c *gin.Context) {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	review, err := h.reviewCtrl.Update(reviewID, middleware.UserID(c), req.Rating, req.Text, req.Spoiler)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) delete(c *gin.Context) {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return
	}

	err := h.reviewCtrl.Delete(reviewID, middleware.UserID(c), middleware.IsAdmin(c, h.db))
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type voteRequest struct {
	Value int `json:"value"` // +1 or -1
}

func (h *ReviewHandler) vote(c *gin.Context) {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	review, err := h.reviewCtrl.Vote(middleware.UserID(c), reviewID, req.Value)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

type commentRequest struct {
	Text     string  `json:"text"`
	ParentID *uint64 `json:"parent_id"`
}

func (h *ReviewHandler) comment(c *gin.Context) {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	comment, err := h.reviewCtrl.AddComment(middleware.UserID(c), reviewID, req.ParentID, req.Text)
	if err != nil {
		h.writeReviewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *ReviewHandler) listByAnime(c *gin.Context) {
	animeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || animeID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	reviews, err := h.db.GetReviewsByAnime(animeID)
	if err != nil {
		h.logger.WithError(err).Error("Review list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": reviews})
}

func (h *ReviewHandler) listComments(c *gin.Context) {
	reviewID, ok := h.reviewID(c)
	if !ok {
		return
	}

	comments, err := h.db.GetCommentsByReview(reviewID)
	if err != nil {
		h.logger.WithError(err).Error("Comment list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": comments})
}

func (h *ReviewHandler) reviewID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return 0, false
	}
	return id, true
}

func (h *ReviewHandler) writeReviewError(c *gin.Context, err error) {
	switch err {
	case controllers.ErrInvalidRating, controllers.ErrInvalidVote, controllers.ErrBlockedContent:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.ErrAlreadyReviewed:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case controllers.ErrNotOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case models.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.WithError(err).Error("Review operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
