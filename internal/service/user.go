package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
)

// Profile is a user together with the counts shown on their profile page.
type Profile struct {
	User           *model.User
	MessageCount   int
	FollowerCount  int
	FollowingCount int
	LikeCount      int
}

type UserService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	db          *sqlx.DB
}

func NewUserService(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	followRepo repository.FollowRepository,
	likeRepo repository.LikeRepository,
	db *sqlx.DB,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		db:          db,
	}
}

// Signup creates a new account. The password is hashed with bcrypt and
// blank image fields fall back to the defaults. Duplicate usernames and
// emails surface as model.ErrUsernameTaken / model.ErrEmailTaken from the
// repository's integrity translation.
func (s *UserService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		req.Password == "" {
		return nil, model.ErrMissingField
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = model.DefaultImageURL
	}

	user := &model.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHashed: string(hashed),
		ImageURL:       imageURL,
		HeaderImageURL: model.DefaultHeaderImageURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user": user.ID, "username": user.Username}).
		Info("user signed up")

	return user, nil
}

// Authenticate checks a username/password pair. Both an unknown username
// and a wrong password return model.ErrInvalidCredentials so callers can't
// probe which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if err == model.ErrUserNotFound {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID fetches a user by id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile fetches a user along with the counts shown on the profile
// page. Counts come from live queries so they never drift from the rows.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	messageCount, err := s.messageRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	followerCount, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}

	followingCount, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	likeCount, err := s.likeRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           user,
		MessageCount:   messageCount,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		LikeCount:      likeCount,
	}, nil
}

// Search lists users, optionally filtered by a username substring.
func (s *UserService) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	return s.userRepo.List(ctx, query)
}

// UpdateProfile applies profile edits after re-confirming the acting
// user's password. A wrong password returns model.ErrInvalidCredentials
// and nothing changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req model.ProfileUpdateRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.ImageURL != "" {
		user.ImageURL = req.ImageURL
	} else {
		user.ImageURL = model.DefaultImageURL
	}
	if req.HeaderImageURL != "" {
		user.HeaderImageURL = req.HeaderImageURL
	} else {
		user.HeaderImageURL = model.DefaultHeaderImageURL
	}
	user.Bio = req.Bio
	user.Location = req.Location

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteAccount removes the user and everything they own. Like counts on
// other users' messages are decremented in the same transaction before
// the cascades fire, so counts stay consistent.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	likedIDs, err := s.likeRepo.GetLikedMessageIDs(ctx, tx, userID)
	if err != nil {
		return err
	}

	for _, messageID := range likedIDs {
		if err := s.messageRepo.IncrementLikeCount(ctx, tx, messageID, -1); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, tx, userID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	logrus.WithField("user", userID).Info("account deleted")
	return nil
}

// IsFollowing reports whether user a follows user b.
func (s *UserService) IsFollowing(ctx context.Context, a, b int64) (bool, error) {
	return s.followRepo.Exists(ctx, a, b)
}

// IsFollowedBy reports whether user a is followed by user b.
func (s *UserService) IsFollowedBy(ctx context.Context, a, b int64) (bool, error) {
	return s.followRepo.Exists(ctx, b, a)
}
