package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/cache"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, query string) ([]model.UserSummary, error)
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user row; messages, likes, and follow edges go
	// with it via cascades. Runs inside the caller's transaction so like
	// counts on other users' messages can be adjusted first.
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	GetByUser(ctx context.Context, userID int64) ([]model.Message, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Message, error)
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	GetAuthorID(ctx context.Context, id int64) (int64, error)
	// GetTimeline returns the newest messages authored by any of the
	// given users, newest first.
	GetTimeline(ctx context.Context, userIDs []int64, limit int) ([]model.Message, error)
	// GetRecentByUser feeds the timeline-cache backfill.
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.MessageScore, error)
	GetLikedByUser(ctx context.Context, userID int64) ([]model.Message, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, messageID int64, delta int) error
}

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	Delete(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
}

type LikeRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error
	Exists(ctx context.Context, userID, messageID int64) (bool, error)
	CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	CountByMessage(ctx context.Context, messageID int64) (int, error)
	// GetLikedMessageIDs returns message ids the user liked, for adjusting
	// like counts before an account delete.
	GetLikedMessageIDs(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error)
}
