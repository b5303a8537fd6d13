package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// translateIntegrityError maps driver-level unique violations onto the
// model sentinels so callers can branch with errors.Is. Both the postgres
// (pq error code 23505) and sqlite ("UNIQUE constraint failed") shapes are
// handled; anything else passes through untranslated.
func translateIntegrityError(err error) error {
	if err == nil {
		return nil
	}

	var detail string
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		detail = pqErr.Constraint
	} else if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		detail = err.Error()
	} else {
		return err
	}

	switch {
	case strings.Contains(detail, "username"):
		return model.ErrUsernameTaken
	case strings.Contains(detail, "email"):
		return model.ErrEmailTaken
	}
	return err
}

// Create inserts a new user into the database. Duplicate username/email
// surfaces as an integrity sentinel, never silently.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO users (username, email, password_hashed, image_url, header_image_url, bio, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.ImageURL,
		u.HeaderImageURL,
		u.Bio,
		u.Location,
		u.CreatedAt,
		u.UpdatedAt,
	)

	if err := row.Scan(&u.ID); err != nil {
		if mapped := translateIntegrityError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := r.db.Rebind(`
		SELECT id, username, email, password_hashed, image_url, header_image_url, bio, location, created_at, updated_at
		FROM users
		WHERE id = ?
	`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := r.db.Rebind(`
		SELECT id, username, email, password_hashed, image_url, header_image_url, bio, location, created_at, updated_at
		FROM users
		WHERE username = ?
	`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`)

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`)

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// List returns all users, optionally filtered by a username prefix.
func (r *userRepository) List(ctx context.Context, search string) ([]model.UserSummary, error) {
	var users []model.UserSummary
	var err error

	if search == "" {
		query := `SELECT id, username, image_url, bio FROM users ORDER BY username`
		err = r.db.SelectContext(ctx, &users, query)
	} else {
		query := r.db.Rebind(`
			SELECT id, username, image_url, bio
			FROM users
			WHERE username LIKE ?
			ORDER BY username
		`)
		err = r.db.SelectContext(ctx, &users, query, "%"+search+"%")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Update persists the editable profile fields.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := r.db.Rebind(`
		UPDATE users
		SET username = ?, email = ?, image_url = ?, header_image_url = ?, bio = ?, location = ?, updated_at = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query,
		u.Username,
		u.Email,
		u.ImageURL,
		u.HeaderImageURL,
		u.Bio,
		u.Location,
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		if mapped := translateIntegrityError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// Delete removes the user; dependent rows cascade.
func (r *userRepository) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	query := tx.Rebind(`DELETE FROM users WHERE id = ?`)

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}

	return nil
}
