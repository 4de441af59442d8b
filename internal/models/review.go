package models

import "time"

// Review is one user's review of one anime. Uniqueness of (UserID, AnimeID)
// is enforced by the database wrapper, not by the store itself.
type Review struct {
	ID      uint64 `boltholdKey:"ID"`
	UserID  string `boltholdIndex:"UserID"`
	AnimeID uint64 `boltholdIndex:"AnimeID"`

	Rating  int // 1..5
	Text    string
	Spoiler bool

	// Vote tallies, maintained by the review controller alongside ReviewVote rows.
	Upvotes   int
	Downvotes int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewVote is one user's vote on one review, +1 or -1. Re-voting replaces
// the previous vote.
type ReviewVote struct {
	ID       uint64 `boltholdKey:"ID"`
	ReviewID uint64 `boltholdIndex:"ReviewID"`
	UserID   string `boltholdIndex:"UserID"`
	Value    int    // +1 or -1

	CreatedAt time.Time
}

// ReviewComment belongs to one review and may reply to another comment via
// ParentID. The model permits arbitrary nesting.
type ReviewComment struct {
	ID       uint64  `boltholdKey:"ID"`
	ReviewID uint64  `boltholdIndex:"ReviewID"`
	ParentID *uint64
	UserID   string

	Text      string
	CreatedAt time.Time
}
