package model

import (
	"errors"
	"time"
)

// Follow is a directed edge: follower follows followee.
// The (follower_id, followee_id) pair is the primary key, so duplicate
// edges cannot exist. Self-follows are rejected at the application layer.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the lightweight user shape rendered in lists.
type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	ImageURL    string  `db:"image_url" json:"image_url"`
	Bio         *string `db:"bio" json:"bio"`
	IsFollowing bool    `json:"is_following"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
