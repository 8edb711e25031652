package domain

import "time"

// Rating is one append-only ledger entry: a user's like or dislike of a movie.
// The same user may rate the same movie any number of times.
type Rating struct {
	ID        int64
	UserID    int64
	MovieID   int64
	Positive  bool
	CreatedAt *time.Time
}
