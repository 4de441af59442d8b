package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// ErrAlreadyReviewed is returned when a user tries to review the same anime twice
var ErrAlreadyReviewed = errors.New("anime already reviewed by this user")

// ErrNotFound is the store's not-found sentinel, re-exported for callers
var ErrNotFound = bolthold.ErrNotFound

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Anime operations

// CreateAnime creates a new anime record
func (db *Database) CreateAnime(anime *Anime) error {
	anime.CreatedAt = time.Now()
	anime.UpdatedAt = time.Now()
	if anime.SchemaVersion == 0 {
		anime.SchemaVersion = AnimeSchemaVersion
	}
	return db.store.Insert(bolthold.NextSequence(), anime)
}

// UpdateAnime updates an existing anime record
func (db *Database) UpdateAnime(anime *Anime) error {
	anime.UpdatedAt = time.Now()
	return db.store.Update(anime.ID, anime)
}

// GetAnimeByID retrieves an anime by ID
func (db *Database) GetAnimeByID(id uint64) (*Anime, error) {
	var anime Anime
	err := db.store.Get(id, &anime)
	if err != nil {
		return nil, err
	}
	return &anime, nil
}

// GetAnimeByTitle retrieves an anime by exact title
func (db *Database) GetAnimeByTitle(title string) (*Anime, error) {
	var anime Anime
	err := db.store.FindOne(&anime, bolthold.Where("Title").Eq(title))
	if err != nil {
		return nil, err
	}
	return &anime, nil
}

// GetAllAnimes retrieves all anime records sorted by ID
func (db *Database) GetAllAnimes() ([]*Anime, error) {
	var animes []*Anime
	err := db.store.Find(&animes, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(animes, func(i, j int) bool { return animes[i].ID < animes[j].ID })
	return animes, nil
}

// SearchAnimes filters the catalog by substring match on title, genre and
// airing status. An empty argument disables that filter.
func (db *Database) SearchAnimes(query, genre string, status AiringStatus) ([]*Anime, error) {
	animes, err := db.GetAllAnimes()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var out []*Anime
	for _, anime := range animes {
		if status != "" && anime.AiringStatus != status {
			continue
		}
		if genre != "" && !containsFold(anime.Genres, genre) {
			continue
		}
		if queryLower != "" && !matchesTitle(anime, queryLower) {
			continue
		}
		out = append(out, anime)
	}
	return out, nil
}

func matchesTitle(anime *Anime, queryLower string) bool {
	if strings.Contains(strings.ToLower(anime.Title), queryLower) {
		return true
	}
	for _, alt := range anime.AltTitles {
		if strings.Contains(strings.ToLower(alt), queryLower) {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// Watchlist operations

// GetWatchlistEntry retrieves the entry for a (user, anime) pair
func (db *Database) GetWatchlistEntry(userID string, animeID uint64) (*WatchlistEntry, error) {
	var entry WatchlistEntry
	err := db.store.FindOne(&entry,
		bolthold.Where("UserID").Eq(userID).And("AnimeID").Eq(animeID))
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertWatchlistEntry inserts or updates the single entry for a (user, anime)
// pair. The latest status wins; there is never more than one row per pair.
func (db *Database) UpsertWatchlistEntry(entry *WatchlistEntry) error {
	existing, err := db.GetWatchlistEntry(entry.UserID, entry.AnimeID)
	if err != nil {
		if err != bolthold.ErrNotFound {
			return err
		}
		entry.CreatedAt = time.Now()
		entry.UpdatedAt = time.Now()
		return db.store.Insert(bolthold.NextSequence(), entry)
	}

	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = time.Now()
	return db.store.Update(entry.ID, entry)
}

// GetWatchlistByUser retrieves a user's watchlist, optionally filtered by status
func (db *Database) GetWatchlistByUser(userID string, status WatchStatus) ([]*WatchlistEntry, error) {
	var entries []*WatchlistEntry
	query := bolthold.Where("UserID").Eq(userID)
	if status != "" {
		query = query.And("Status").Eq(status)
	}
	err := db.store.Find(&entries, query)
	return entries, err
}

// DeleteWatchlistEntry removes the entry for a (user, anime) pair
func (db *Database) DeleteWatchlistEntry(userID string, animeID uint64) error {
	entry, err := db.GetWatchlistEntry(userID, animeID)
	if err != nil {
		return err
	}
	return db.store.Delete(entry.ID, &WatchlistEntry{})
}

// Review operations

// CreateReview creates a review, enforcing one review per (user, anime)
func (db *Database) CreateReview(review *Review) error {
	_, err := db.GetReviewByUserAndAnime(review.UserID, review.AnimeID)
	if err == nil {
		return ErrAlreadyReviewed
	}
	if err != bolthold.ErrNotFound {
		return err
	}

	review.CreatedAt = time.Now()
	review.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), review)
}

// UpdateReview updates an existing review
func (db *Database) UpdateReview(review *Review) error {
	review.UpdatedAt = time.Now()
	return db.store.Update(review.ID, review)
}

// GetReviewByID retrieves a review by ID
func (db *Database) GetReviewByID(id uint64) (*Review, error) {
	var review Review
	err := db.store.Get(id, &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewByUserAndAnime retrieves the single review for a (user, anime) pair
func (db *Database) GetReviewByUserAndAnime(userID string, animeID uint64) (*Review, error) {
	var review Review
	err := db.store.FindOne(&review,
		bolthold.Where("UserID").Eq(userID).And("AnimeID").Eq(animeID))
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewsByAnime retrieves all reviews for an anime, newest first
func (db *Database) GetReviewsByAnime(animeID uint64) ([]*Review, error) {
	var reviews []*Review
	err := db.store.Find(&reviews, bolthold.Where("AnimeID").Eq(animeID))
	if err != nil {
		return nil, err
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

// DeleteReview deletes a review row only; the review controller owns the
// cascade to votes and comments.
func (db *Database) DeleteReview(id uint64) error {
	return db.store.Delete(id, &Review{})
}

// Review vote operations

// GetVote retrieves a user's vote on a review
func (db *Database) GetVote(userID string, reviewID uint64) (*ReviewVote, error) {
	var vote ReviewVote
	err := db.store.FindOne(&vote,
		bolthold.Where("UserID").Eq(userID).And("ReviewID").Eq(reviewID))
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// CreateVote creates a new vote row
func (db *Database) CreateVote(vote *ReviewVote) error {
	vote.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), vote)
}

// UpdateVote updates an existing vote row
func (db *Database) UpdateVote(vote *ReviewVote) error {
	return db.store.Update(vote.ID, vote)
}

// DeleteVotesByReview deletes all votes attached to a review
func (db *Database) DeleteVotesByReview(reviewID uint64) error {
	return db.store.DeleteMatching(&ReviewVote{}, bolthold.Where("ReviewID").Eq(reviewID))
}

// Review comment operations

// CreateComment creates a comment on a review
func (db *Database) CreateComment(comment *ReviewComment) error {
	comment.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), comment)
}

// GetCommentsByReview retrieves all comments on a review, oldest first
func (db *Database) GetCommentsByReview(reviewID uint64) ([]*ReviewComment, error) {
	var comments []*ReviewComment
	err := db.store.Find(&comments, bolthold.Where("ReviewID").Eq(reviewID))
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// DeleteCommentsByReview deletes the whole comment thread of a review
func (db *Database) DeleteCommentsByReview(reviewID uint64) error {
	return db.store.DeleteMatching(&ReviewComment{}, bolthold.Where("ReviewID").Eq(reviewID))
}

// User profile operations

// GetUserProfile retrieves a profile by user ID
func (db *Database) GetUserProfile(userID string) (*UserProfile, error) {
	var profile UserProfile
	err := db.store.Get(userID, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertUserProfile inserts or replaces a user profile
func (db *Database) UpsertUserProfile(profile *UserProfile) error {
	existing, err := db.GetUserProfile(profile.UserID)
	if err != nil {
		if err != bolthold.ErrNotFound {
			return err
		}
		profile.CreatedAt = time.Now()
		profile.UpdatedAt = time.Now()
		return db.store.Insert(profile.UserID, profile)
	}

	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = time.Now()
	return db.store.Update(profile.UserID, profile)
}

// Phone verification operations

// CreateVerification stores a new verification challenge
func (db *Database) CreateVerification(v *PhoneVerification) error {
	v.CreatedAt = time.Now()
	return db.store.Insert(v.ID, v)
}

// GetVerification retrieves a verification challenge by ID
func (db *Database) GetVerification(id string) (*PhoneVerification, error) {
	var v PhoneVerification
	err := db.store.Get(id, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateVerification updates a verification challenge
func (db *Database) UpdateVerification(v *PhoneVerification) error {
	return db.store.Update(v.ID, v)
}

// DeleteExpiredVerifications removes challenges past their expiry
func (db *Database) DeleteExpiredVerifications(now time.Time) (int, error) {
	var expired []*PhoneVerification
	err := db.store.Find(&expired, bolthold.Where("ExpiresAt").Lt(now))
	if err != nil {
		return 0, err
	}
	for _, v := range expired {
		if err := db.store.Delete(v.ID, &PhoneVerification{}); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// Filter metadata operations

const filterMetadataKey = uint64(1)

// SaveFilterMetadata replaces the derived filter metadata singleton
func (db *Database) SaveFilterMetadata(meta *FilterMetadata) error {
	meta.ID = filterMetadataKey
	return db.store.Upsert(filterMetadataKey, meta)
}

// GetFilterMetadata retrieves the derived filter metadata singleton
func (db *Database) GetFilterMetadata() (*FilterMetadata, error) {
	var meta FilterMetadata
	err := db.store.Get(filterMetadataKey, &meta)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
