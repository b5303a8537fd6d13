package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/queue"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Follow creates a follow edge from follower to followee. Re-following an
// already-followed user returns model.ErrAlreadyFollowing; the edge itself
// stays unique thanks to the composite primary key.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	inserted, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}

	// Publish after the edge exists so the worker's backfill sees it
	if s.publisher != nil {
		event := queue.NewUserFollowedEvent(followerID, followeeID)
		if _, err := s.publisher.Publish(ctx, queue.StreamTimeline, event); err != nil {
			logrus.WithFields(logrus.Fields{"follower": followerID, "followee": followeeID}).
				WithError(err).Error("follow: publish followed event failed")
		}
	}

	return nil
}

// Unfollow removes a follow edge. Unfollowing someone not followed
// returns model.ErrNotFollowing.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewUserUnfollowedEvent(followerID, followeeID)
		if _, err := s.publisher.Publish(ctx, queue.StreamTimeline, event); err != nil {
			logrus.WithFields(logrus.Fields{"follower": followerID, "followee": followeeID}).
				WithError(err).Error("follow: publish unfollowed event failed")
		}
	}

	return nil
}

// GetFollowers lists the users following userID. When viewerID is
// non-zero each entry carries whether the viewer follows them.
func (s *FollowService) GetFollowers(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error) {
	users, err := s.followRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrichWithFollowStatus(ctx, viewerID, users), nil
}

// GetFollowing lists the users userID follows.
func (s *FollowService) GetFollowing(ctx context.Context, userID, viewerID int64) ([]model.UserSummary, error) {
	users, err := s.followRepo.GetFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrichWithFollowStatus(ctx, viewerID, users), nil
}

// enrichWithFollowStatus batch-checks which listed users the viewer
// follows. One IN query, not one per row. If the check fails the list is
// still returned with is_following unset.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if viewerID == 0 || len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, u := range users {
		userIDs[i] = u.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}
	return users
}
