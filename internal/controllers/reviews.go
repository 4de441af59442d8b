package controllers

import (
	"errors"
	"fmt"

	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/utils"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidRating is returned for ratings outside 1..5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrNotOwner is returned when a user mutates a review they do not own
	ErrNotOwner = errors.New("review belongs to another user")
	// ErrBlockedContent is returned when text matches the content blocklist
	ErrBlockedContent = errors.New("text contains blocked content")
	// ErrInvalidVote is returned for vote values other than +1/-1
	ErrInvalidVote = errors.New("vote value must be +1 or -1")
)

// ReviewController owns review, vote and comment mutations, including the
// cascade on delete and the anime rating aggregate. AverageUserRating and
// ReviewCount on the anime are recomputed from the review rows inside every
// mutation path here and written nowhere else.
type ReviewController struct {
	db        *models.Database
	blocklist *utils.Blocklist
	logger    *logrus.Logger
}

// NewReviewController creates a new review controller
func NewReviewController(db *models.Database, blocklist *utils.Blocklist, logger *logrus.Logger) *ReviewController {
	return &ReviewController{
		db:        db,
		blocklist: blocklist,
		logger:    logger,
	}
}

// Create adds a review, enforcing one per (user, anime)
func (c *ReviewController) Create(userID string, animeID uint64, rating int, text string, spoiler bool) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if blocked, term := c.blocklist.IsBlocked(text); blocked {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"term":    term,
		}).Debug("Review text blocked")
		return nil, ErrBlockedContent
	}

	// Anime must exist; a review pointing nowhere breaks the aggregate.
	if _, err := c.db.GetAnimeByID(animeID); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:  userID,
		AnimeID: animeID,
		Rating:  rating,
		Text:    text,
		Spoiler: spoiler,
	}
	if err := c.db.CreateReview(review); err != nil {
		return nil, err
	}

	if err := c.recomputeAggregate(animeID); err != nil {
		c.logger.WithError(err).WithField("anime_id", animeID).Error("Failed to recompute rating aggregate")
	}
	return review, nil
}

// Update edits a user's own review
func (c *ReviewController) Update(reviewID uint64, userID string, rating int, text string, spoiler bool) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if blocked, _ := c.blocklist.IsBlocked(text); blocked {
		return nil, ErrBlockedContent
	}

	review, err := c.db.GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, ErrNotOwner
	}

	review.Rating = rating
	review.Text = text
	review.Spoiler = spoiler
	if err := c.db.UpdateReview(review); err != nil {
		return nil, err
	}

	if err := c.recomputeAggregate(review.AnimeID); err != nil {
		c.logger.WithError(err).WithField("anime_id", review.AnimeID).Error("Failed to recompute rating aggregate")
	}
	return review, nil
}

// Delete removes a review with its votes and comment thread. The store does
// not cascade, so the cascade lives here.
func (c *ReviewController) Delete(reviewID uint64, userID string, admin bool) error {
	review, err := c.db.GetReviewByID(reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID && !admin {
		return ErrNotOwner
	}

	if err := c.db.DeleteVotesByReview(reviewID); err != nil {
		return fmt.Errorf("failed to delete review votes: %w", err)
	}
	if err := c.db.DeleteCommentsByReview(reviewID); err != nil {
		return fmt.Errorf("failed to delete review comments: %w", err)
	}
	if err := c.db.DeleteReview(reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := c.recomputeAggregate(review.AnimeID); err != nil {
		c.logger.WithError(err).WithField("anime_id", review.AnimeID).Error("Failed to recompute rating aggregate")
	}
	return nil
}

// Vote records a user's +1/-1 on a review. Re-voting with the other value
// switches the vote and adjusts both tallies.
func (c *ReviewController) Vote(userID string, reviewID uint64, value int) (*models.Review, error) {
	if value != 1 && value != -1 {
		return nil, ErrInvalidVote
	}

	review, err := c.db.GetReviewByID(reviewID)
	if err != nil {
		return nil, err
	}

	existing, err := c.db.GetVote(userID, reviewID)
	if err != nil {
		if err != models.ErrNotFound {
			return nil, err
		}
		vote := &models.ReviewVote{ReviewID: reviewID, UserID: userID, Value: value}
		if err := c.db.CreateVote(vote); err != nil {
			return nil, err
		}
		applyVote(review, value)
	} else {
		if existing.Value == value {
			return review, nil // idempotent re-vote
		}
		retractVote(review, existing.Value)
		applyVote(review, value)
		existing.Value = value
		if err := c.db.UpdateVote(existing); err != nil {
			return nil, err
		}
	}

	if err := c.db.UpdateReview(review); err != nil {
		return nil, err
	}
	return review, nil
}

// AddComment attaches a comment to a review, optionally replying to another
// comment on the same review.
func (c *ReviewController) AddComment(userID string, reviewID uint64, parentID *uint64, text string) (*models.ReviewComment, error) {
	if text == "" {
		return nil, errors.New("comment text is required")
	}
	if blocked, _ := c.blocklist.IsBlocked(text); blocked {
		return nil, ErrBlockedContent
	}

	if _, err := c.db.GetReviewByID(reviewID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parents, err := c.db.GetCommentsByReview(reviewID)
		if err != nil {
			return nil, err
		}
		found := false
		for _, parent := range parents {
			if parent.ID == *parentID {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New("parent comment not found on this review")
		}
	}

	comment := &models.ReviewComment{
		ReviewID: reviewID,
		ParentID: parentID,
		UserID:   userID,
		Text:     text,
	}
	if err := c.db.CreateComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func applyVote(review *models.Review, value int) {
	if value > 0 {
		review.Upvotes++
	} else {
		review.Downvotes++
	}
}

func retractVote(review *models.Review, value int) {
	if value > 0 && review.Upvotes > 0 {
		review.Upvotes--
	} else if value < 0 && review.Downvotes > 0 {
		review.Downvotes--
	}
}

// recomputeAggregate derives AverageUserRating and ReviewCount from the review
// rows and writes them onto the anime record.
func (c *ReviewController) recomputeAggregate(animeID uint64) error {
	anime, err := c.db.GetAnimeByID(animeID)
	if err != nil {
		return err
	}
	reviews, err := c.db.GetReviewsByAnime(animeID)
	if err != nil {
		return err
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}

	anime.ReviewCount = len(reviews)
	if len(reviews) == 0 {
		anime.AverageUserRating = 0
	} else {
		anime.AverageUserRating = float64(sum) / float64(len(reviews))
	}

	return c.db.UpdateAnime(anime)
}
