package model

import (
	"errors"
	"time"
)

// Like marks that a user liked a message. Rows carry a surrogate id; the
// at-most-once rule per (user, message) is enforced by the service layer
// and backed by a unique index.
type Like struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	MessageID int64     `db:"message_id" json:"message_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var (
	ErrAlreadyLiked     = errors.New("message already liked")
	ErrNotLiked         = errors.New("message not liked")
	ErrCannotLikeOwnMsg = errors.New("cannot like your own message")
)
