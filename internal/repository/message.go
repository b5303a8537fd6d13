package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/cache"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

// messageRow flattens a message joined with its author for sqlx scanning.
type messageRow struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Text           string    `db:"text"`
	LikeCount      int       `db:"like_count"`
	CreatedAt      time.Time `db:"created_at"`
	AuthorUsername string    `db:"author_username"`
	AuthorImageURL string    `db:"author_image_url"`
}

func (row messageRow) toMessage() model.Message {
	return model.Message{
		ID:        row.ID,
		UserID:    row.UserID,
		Text:      row.Text,
		LikeCount: row.LikeCount,
		CreatedAt: row.CreatedAt,
		Author: &model.UserSummary{
			ID:       row.UserID,
			Username: row.AuthorUsername,
			ImageURL: row.AuthorImageURL,
		},
	}
}

const messageColumns = `
	m.id, m.user_id, m.text, m.like_count, m.created_at,
	u.username AS author_username, u.image_url AS author_image_url`

func toMessages(rows []messageRow) []model.Message {
	messages := make([]model.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toMessage()
	}
	return messages
}

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO messages (user_id, text, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`)

	row := r.db.QueryRowxContext(ctx, query, m.UserID, m.Text, m.CreatedAt)
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	query := r.db.Rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = ?
	`)

	var row messageRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	msg := row.toMessage()
	return &msg, nil
}

func (r *messageRepository) GetByUser(ctx context.Context, userID int64) ([]model.Message, error) {
	query := r.db.Rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = ?
		ORDER BY m.created_at DESC
	`)

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user messages: %w", err)
	}

	return toMessages(rows), nil
}

func (r *messageRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.id IN (?)
		ORDER BY m.created_at DESC
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get messages by ids: %w", err)
	}

	return toMessages(rows), nil
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM messages WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrMessageNotFound
	}

	return nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM messages WHERE user_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}

func (r *messageRepository) GetAuthorID(ctx context.Context, id int64) (int64, error) {
	query := r.db.Rebind(`SELECT user_id FROM messages WHERE id = ?`)

	var authorID int64
	err := r.db.GetContext(ctx, &authorID, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, model.ErrMessageNotFound
		}
		return 0, fmt.Errorf("failed to get message author: %w", err)
	}

	return authorID, nil
}

// GetTimeline returns the newest messages authored by any of the given
// users. Uses a single IN query (sqlx.In) rather than one query per author.
func (r *messageRepository) GetTimeline(ctx context.Context, userIDs []int64, limit int) ([]model.Message, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id IN (?)
		ORDER BY m.created_at DESC
		LIMIT ?
	`, userIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline query: %w", err)
	}

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get timeline: %w", err)
	}

	return toMessages(rows), nil
}

func (r *messageRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.MessageScore, error) {
	query := r.db.Rebind(`
		SELECT id, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`)

	rows, err := r.db.QueryxContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	defer rows.Close()

	var scores []cache.MessageScore
	for rows.Next() {
		var id int64
		var createdAt time.Time
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent message: %w", err)
		}
		scores = append(scores, cache.MessageScore{
			MessageID: id,
			Timestamp: createdAt.Unix(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent messages: %w", err)
	}

	return scores, nil
}

func (r *messageRepository) GetLikedByUser(ctx context.Context, userID int64) ([]model.Message, error) {
	query := r.db.Rebind(`
		SELECT ` + messageColumns + `
		FROM likes l
		JOIN messages m ON m.id = l.message_id
		JOIN users u ON u.id = m.user_id
		WHERE l.user_id = ?
		ORDER BY l.created_at DESC
	`)

	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get liked messages: %w", err)
	}

	return toMessages(rows), nil
}

func (r *messageRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, messageID int64, delta int) error {
	query := tx.Rebind(`UPDATE messages SET like_count = like_count + ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query, delta, messageID); err != nil {
		return fmt.Errorf("failed to increment like count: %w", err)
	}
	return nil
}
