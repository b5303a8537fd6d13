package model

import (
	"errors"
	"fmt"
	"time"
)

// Default profile images applied when signup leaves them blank.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents an account in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	ImageURL       string    `db:"image_url" json:"image_url"`
	HeaderImageURL string    `db:"header_image_url" json:"header_image_url"`
	Bio            *string   `db:"bio" json:"bio"`
	Location       *string   `db:"location" json:"location"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// String is the diagnostic representation used in logs and tests.
func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

// SignupRequest represents the data needed to create a new account
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ImageURL string `json:"image_url"`
}

// ProfileUpdateRequest carries the editable profile fields. The acting
// user's password must be re-confirmed before any change is applied.
type ProfileUpdateRequest struct {
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ImageURL       string  `json:"image_url"`
	HeaderImageURL string  `json:"header_image_url"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	Password       string  `json:"-"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is the integrity sentinel for a duplicate username
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is the integrity sentinel for a duplicate email
	ErrEmailTaken = errors.New("email already taken")

	// ErrMissingField is returned when a required signup field is blank
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidCredentials is returned when authentication fails.
	// Failed auth is an expected outcome, never a panic, and the sentinel
	// does not reveal whether the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
