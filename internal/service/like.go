package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	messageRepo repository.MessageRepository
	db          *sqlx.DB
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	messageRepo repository.MessageRepository,
	db *sqlx.DB,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		messageRepo: messageRepo,
		db:          db,
	}
}

// Like records that the user liked the message. Users cannot like their
// own messages, and liking twice returns model.ErrAlreadyLiked. The like
// row and the message's like count move in one transaction.
func (s *LikeService) Like(ctx context.Context, userID, messageID int64) error {
	authorID, err := s.messageRepo.GetAuthorID(ctx, messageID)
	if err != nil {
		return err
	}
	if authorID == userID {
		return model.ErrCannotLikeOwnMsg
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.likeRepo.Create(ctx, tx, userID, messageID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyLiked
	}

	if err := s.messageRepo.IncrementLikeCount(ctx, tx, messageID, 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Unlike removes the user's like from the message. Unliking a message
// that isn't liked returns model.ErrNotLiked.
func (s *LikeService) Unlike(ctx context.Context, userID, messageID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.likeRepo.Delete(ctx, tx, userID, messageID); err != nil {
		return err
	}

	if err := s.messageRepo.IncrementLikeCount(ctx, tx, messageID, -1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Toggle likes the message if not yet liked, otherwise removes the like.
// Returns true when the result is a like.
func (s *LikeService) Toggle(ctx context.Context, userID, messageID int64) (bool, error) {
	liked, err := s.likeRepo.Exists(ctx, userID, messageID)
	if err != nil {
		return false, err
	}

	if liked {
		if err := s.Unlike(ctx, userID, messageID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.Like(ctx, userID, messageID); err != nil {
		return false, err
	}
	return true, nil
}

// IsLiked reports whether the user has liked the message.
func (s *LikeService) IsLiked(ctx context.Context, userID, messageID int64) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, messageID)
}
