package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/cache"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/queue"
)

// Function-field mocks: each test overrides just the calls it cares
// about, everything else falls back to a zero-value response.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	listFn             func(ctx context.Context, query string) ([]model.UserSummary, error)
	updateFn           func(ctx context.Context, user *model.User) error
	deleteFn           func(ctx context.Context, tx *sqlx.Tx, id int64) error

	createCalls []*model.User
	updateCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = int64(len(m.createCalls))
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) List(ctx context.Context, query string) ([]model.UserSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, query)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	m.updateCalls = append(m.updateCalls, user)
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, id)
	}
	return nil
}

type mockMessageRepository struct {
	createFn             func(ctx context.Context, msg *model.Message) error
	getByIDFn            func(ctx context.Context, id int64) (*model.Message, error)
	getByUserFn          func(ctx context.Context, userID int64) ([]model.Message, error)
	getByIDsFn           func(ctx context.Context, ids []int64) ([]model.Message, error)
	deleteFn             func(ctx context.Context, id int64) error
	countByUserFn        func(ctx context.Context, userID int64) (int, error)
	getAuthorIDFn        func(ctx context.Context, id int64) (int64, error)
	getTimelineFn        func(ctx context.Context, userIDs []int64, limit int) ([]model.Message, error)
	getRecentByUserFn    func(ctx context.Context, userID int64, limit int) ([]cache.MessageScore, error)
	getLikedByUserFn     func(ctx context.Context, userID int64) ([]model.Message, error)
	incrementLikeCountFn func(ctx context.Context, tx *sqlx.Tx, messageID int64, delta int) error

	createCalls []*model.Message
	deleteCalls []int64
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	m.createCalls = append(m.createCalls, msg)
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	msg.ID = int64(len(m.createCalls))
	return nil
}

func (m *mockMessageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrMessageNotFound
}

func (m *mockMessageRepository) GetByUser(ctx context.Context, userID int64) ([]model.Message, error) {
	if m.getByUserFn != nil {
		return m.getByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMessageRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Message, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockMessageRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockMessageRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockMessageRepository) GetAuthorID(ctx context.Context, id int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, id)
	}
	return 0, model.ErrMessageNotFound
}

func (m *mockMessageRepository) GetTimeline(ctx context.Context, userIDs []int64, limit int) ([]model.Message, error) {
	if m.getTimelineFn != nil {
		return m.getTimelineFn(ctx, userIDs, limit)
	}
	return nil, nil
}

func (m *mockMessageRepository) GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.MessageScore, error) {
	if m.getRecentByUserFn != nil {
		return m.getRecentByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockMessageRepository) GetLikedByUser(ctx context.Context, userID int64) ([]model.Message, error) {
	if m.getLikedByUserFn != nil {
		return m.getLikedByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMessageRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, messageID int64, delta int) error {
	if m.incrementLikeCountFn != nil {
		return m.incrementLikeCountFn(ctx, tx, messageID, delta)
	}
	return nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followeeID int64) error
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowersFn   func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFollowingFn   func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	checkFollowsFn   func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
	getFollowerIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	getFolloweeIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	countFollowersFn func(ctx context.Context, userID int64) (int, error)
	countFollowingFn func(ctx context.Context, userID int64) (int, error)
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFolloweeIDsFn != nil {
		return m.getFolloweeIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

type mockLikeRepository struct {
	createFn             func(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error)
	deleteFn             func(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error
	existsFn             func(ctx context.Context, userID, messageID int64) (bool, error)
	checkLikesFn         func(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error)
	countByUserFn        func(ctx context.Context, userID int64) (int, error)
	countByMessageFn     func(ctx context.Context, messageID int64) (int, error)
	getLikedMessageIDsFn func(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error)
}

func (m *mockLikeRepository) Create(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, userID, messageID)
	}
	return true, nil
}

func (m *mockLikeRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, userID, messageID)
	}
	return nil
}

func (m *mockLikeRepository) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, messageID)
	}
	return false, nil
}

func (m *mockLikeRepository) CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, messageIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockLikeRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockLikeRepository) CountByMessage(ctx context.Context, messageID int64) (int, error) {
	if m.countByMessageFn != nil {
		return m.countByMessageFn(ctx, messageID)
	}
	return 0, nil
}

func (m *mockLikeRepository) GetLikedMessageIDs(ctx context.Context, tx *sqlx.Tx, userID int64) ([]int64, error) {
	if m.getLikedMessageIDsFn != nil {
		return m.getLikedMessageIDsFn(ctx, tx, userID)
	}
	return nil, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []queue.TimelineEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.TimelineEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}
