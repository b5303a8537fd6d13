package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts a like edge inside the caller's transaction so the
// message like count stays in step. Returns false when the pair already
// exists (the unique index backs the at-most-once rule).
func (r *likeRepository) Create(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	query := tx.Rebind(`
		INSERT INTO likes (user_id, message_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, message_id) DO NOTHING
	`)

	result, err := tx.ExecContext(ctx, query, userID, messageID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to create like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error {
	query := tx.Rebind(`DELETE FROM likes WHERE user_id = ? AND message_id = ?`)

	result, err := tx.ExecContext(ctx, query, userID, messageID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}

	return nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND message_id = ?)`)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, messageID); err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}
	return exists, nil
}

// CheckLikes reports which of the given messages the user has liked.
// Single batched IN query.
func (r *likeRepository) CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error) {
	if len(messageIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query, args, err := sqlx.In(`
		SELECT message_id FROM likes WHERE user_id = ? AND message_id IN (?)
	`, userID, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var likedIDs []int64
	err = r.db.SelectContext(ctx, &likedIDs, r.db.Rebind(query), args...)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range messageIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

func (r *likeRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM likes WHERE user_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count likes by user: %w", err)
	}
	return count, nil
}

func (r *likeRepository) CountByMessage(ctx context.Context, messageID int64) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM likes WHERE message_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, messageID); err != nil {
		return 0, fmt.Errorf("failed to count likes by message: %w", err)
	}
	return count, nil
}

func (r *likeRepository) GetLikedMessageIDs(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error) {
	query := tx.Rebind(`SELECT message_id FROM likes WHERE user_id = ?`)

	var ids []int64
	if err := tx.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get liked message ids: %w", err)
	}
	return ids, nil
}
