package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/cache"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
)

// TimelineLimit is the maximum number of messages on the home timeline.
const TimelineLimit = 100

// TimelineService builds the logged-in home timeline: the newest messages
// from the user and everyone they follow. With a cache attached, reads hit
// the per-user sorted set and fall back to the database on a miss; without
// one, every read queries the database directly.
type TimelineService struct {
	messageRepo repository.MessageRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	timeline    cache.TimelineCache // nil disables caching
}

func NewTimelineService(
	messageRepo repository.MessageRepository,
	followRepo repository.FollowRepository,
	likeRepo repository.LikeRepository,
	timeline cache.TimelineCache,
) *TimelineService {
	return &TimelineService{
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		timeline:    timeline,
	}
}

// GetHomeTimeline returns the newest messages authored by the user or
// anyone they follow, newest first, with the viewer's liked markers set.
func (s *TimelineService) GetHomeTimeline(ctx context.Context, userID int64) ([]model.Message, error) {
	if s.timeline == nil {
		return s.fromDatabase(ctx, userID)
	}

	exists, err := s.timeline.Exists(ctx, userID)
	if err != nil {
		logrus.WithField("user", userID).WithError(err).
			Warn("timeline: cache check failed, falling back to database")
		return s.fromDatabase(ctx, userID)
	}

	if !exists {
		if err := s.warmCache(ctx, userID); err != nil {
			logrus.WithField("user", userID).WithError(err).
				Warn("timeline: cache warm failed, falling back to database")
			return s.fromDatabase(ctx, userID)
		}
	}

	ids, err := s.timeline.GetTimeline(ctx, userID, TimelineLimit)
	if err != nil {
		return s.fromDatabase(ctx, userID)
	}

	messages, err := s.messageRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return s.markLiked(ctx, userID, messages)
}

// warmCache rebuilds the user's timeline sorted set from the database.
func (s *TimelineService) warmCache(ctx context.Context, userID int64) error {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return err
	}
	authorIDs := append(followeeIDs, userID)

	var scores []cache.MessageScore
	for _, authorID := range authorIDs {
		recent, err := s.messageRepo.GetRecentByUser(ctx, authorID, TimelineLimit)
		if err != nil {
			return err
		}
		scores = append(scores, recent...)
	}

	if len(scores) == 0 {
		return nil
	}
	return s.timeline.WarmCache(ctx, userID, scores)
}

// fromDatabase is the cache-free path: one query over the follow graph.
func (s *TimelineService) fromDatabase(ctx context.Context, userID int64) ([]model.Message, error) {
	followeeIDs, err := s.followRepo.GetFolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followeeIDs, userID)

	messages, err := s.messageRepo.GetTimeline(ctx, authorIDs, TimelineLimit)
	if err != nil {
		return nil, err
	}

	return s.markLiked(ctx, userID, messages)
}

func (s *TimelineService) markLiked(ctx context.Context, viewerID int64, messages []model.Message) ([]model.Message, error) {
	if len(messages) == 0 {
		return messages, nil
	}

	ids := make([]int64, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	likedMap, err := s.likeRepo.CheckLikes(ctx, viewerID, ids)
	if err != nil {
		logrus.WithError(err).Warn("timeline: check likes failed")
		return messages, nil
	}

	for i := range messages {
		messages[i].IsLiked = likedMap[messages[i].ID]
	}
	return messages, nil
}
