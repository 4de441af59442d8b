package controllers

import (
	"errors"

	"github.com/kitsouko/aniarr/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrInvalidStatus is returned for unknown watch statuses
var ErrInvalidStatus = errors.New("unknown watchlist status")

// WatchlistController owns watchlist mutations. Entries are keyed by the
// (user, anime) pair: the first status-setting action creates the entry,
// later ones update it in place.
type WatchlistController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(db *models.Database, logger *logrus.Logger) *WatchlistController {
	return &WatchlistController{db: db, logger: logger}
}

// UpsertRequest carries one watchlist mutation
type UpsertRequest struct {
	UserID   string
	AnimeID  uint64
	Status   models.WatchStatus
	Progress int
	Rating   *int
	Notes    string
	Public   bool
}

// Upsert creates or updates the single entry for a (user, anime) pair
func (c *WatchlistController) Upsert(req UpsertRequest) (*models.WatchlistEntry, error) {
	if !models.ValidWatchStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, ErrInvalidRating
	}

	anime, err := c.db.GetAnimeByID(req.AnimeID)
	if err != nil {
		return nil, err
	}

	progress := req.Progress
	if progress < 0 {
		progress = 0
	}
	// Clamp progress to the known episode count when we have one
	if len(anime.Episodes) > 0 && progress > len(anime.Episodes) {
		progress = len(anime.Episodes)
	}

	entry := &models.WatchlistEntry{
		UserID:   req.UserID,
		AnimeID:  req.AnimeID,
		Status:   req.Status,
		Progress: progress,
		Rating:   req.Rating,
		Notes:    req.Notes,
		Public:   req.Public,
	}
	if err := c.db.UpsertWatchlistEntry(entry); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"user_id":  req.UserID,
		"anime_id": req.AnimeID,
		"status":   req.Status,
	}).Debug("Watchlist entry upserted")

	return entry, nil
}

// List returns a user's watchlist, optionally filtered by status
func (c *WatchlistController) List(userID string, status models.WatchStatus) ([]*models.WatchlistEntry, error) {
	if status != "" && !models.ValidWatchStatus(status) {
		return nil, ErrInvalidStatus
	}
	return c.db.GetWatchlistByUser(userID, status)
}

// Remove deletes the entry for a (user, anime) pair
func (c *WatchlistController) Remove(userID string, animeID uint64) error {
	return c.db.DeleteWatchlistEntry(userID, animeID)
}
