package models

import "time"

// WatchlistEntry tracks one user's state for one anime. There is at most one
// entry per (UserID, AnimeID) pair; status changes upsert rather than insert.
type WatchlistEntry struct {
	ID      uint64 `boltholdKey:"ID"`
	UserID  string `boltholdIndex:"UserID"`
	AnimeID uint64 `boltholdIndex:"AnimeID"`

	Status   WatchStatus
	Progress int  // episodes watched
	Rating   *int // 1..5, optional
	Notes    string
	Public   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
