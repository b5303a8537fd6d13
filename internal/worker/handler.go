package worker

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/cache"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/queue"
)

const (
	// backfillLimit is how many recent messages to copy into a follower's
	// timeline when a new follow edge appears.
	backfillLimit = 20

	// removeLimit caps how many of the followee's messages to prune from
	// a timeline on unfollow.
	removeLimit = 100
)

// FollowerProvider supplies follower ids for fan-out.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// RecentMessagesProvider supplies a user's recent messages for backfill
// and unfollow pruning.
type RecentMessagesProvider interface {
	GetRecentByUser(ctx context.Context, userID int64, limit int) ([]cache.MessageScore, error)
}

// Handler processes timeline events and keeps per-user timeline caches
// in sync with the follow graph.
type Handler struct {
	timeline  cache.TimelineCache
	followers FollowerProvider
	messages  RecentMessagesProvider
}

// NewHandler creates an event handler for timeline maintenance.
func NewHandler(timeline cache.TimelineCache, followers FollowerProvider, messages RecentMessagesProvider) *Handler {
	return &Handler{
		timeline:  timeline,
		followers: followers,
		messages:  messages,
	}
}

// Handle dispatches an event to the matching handler.
func (h *Handler) Handle(ctx context.Context, event queue.TimelineEvent) error {
	switch event.Type {
	case queue.EventMessagePosted:
		return h.handleMessagePosted(ctx, event)
	case queue.EventMessageDeleted:
		return h.handleMessageDeleted(ctx, event)
	case queue.EventUserFollowed:
		return h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		return h.handleUserUnfollowed(ctx, event)
	default:
		logrus.WithField("type", event.Type).Warn("worker: unknown event type")
		return nil
	}
}

// handleMessagePosted fans the message out to every follower's timeline
// and to the author's own.
func (h *Handler) handleMessagePosted(ctx context.Context, event queue.TimelineEvent) error {
	followerIDs, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers for fan-out: %w", err)
	}

	// The author sees their own messages on the home timeline
	targets := append(followerIDs, event.AuthorID)

	var failed int
	for _, userID := range targets {
		if err := h.timeline.AddMessage(ctx, userID, event.MessageID, event.Timestamp); err != nil {
			failed++
			logrus.WithFields(logrus.Fields{"user": userID, "message": event.MessageID}).
				WithError(err).Error("worker: fan-out to timeline failed")
		}
	}

	logrus.WithFields(logrus.Fields{
		"message":   event.MessageID,
		"author":    event.AuthorID,
		"timelines": len(targets),
		"failed":    failed,
	}).Debug("worker: message fanned out")

	if failed == len(targets) && len(targets) > 0 {
		return fmt.Errorf("fan-out failed for all %d timelines", len(targets))
	}
	return nil
}

// handleMessageDeleted removes the message from every timeline it was
// fanned out to.
func (h *Handler) handleMessageDeleted(ctx context.Context, event queue.TimelineEvent) error {
	followerIDs, err := h.followers.GetFollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers for removal: %w", err)
	}

	targets := append(followerIDs, event.AuthorID)

	for _, userID := range targets {
		if err := h.timeline.RemoveMessage(ctx, userID, event.MessageID); err != nil {
			logrus.WithFields(logrus.Fields{"user": userID, "message": event.MessageID}).
				WithError(err).Error("worker: timeline removal failed")
		}
	}

	return nil
}

// handleUserFollowed backfills the followee's recent messages into the
// follower's timeline so the new follow shows up without a cache rebuild.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.TimelineEvent) error {
	recent, err := h.messages.GetRecentByUser(ctx, event.FolloweeID, backfillLimit)
	if err != nil {
		return fmt.Errorf("get recent messages for backfill: %w", err)
	}

	if len(recent) == 0 {
		return nil
	}

	if err := h.timeline.WarmCache(ctx, event.FollowerID, recent); err != nil {
		return fmt.Errorf("backfill timeline: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"follower": event.FollowerID,
		"followee": event.FolloweeID,
		"messages": len(recent),
	}).Debug("worker: timeline backfilled after follow")

	return nil
}

// handleUserUnfollowed prunes the followee's messages from the follower's
// timeline.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.TimelineEvent) error {
	recent, err := h.messages.GetRecentByUser(ctx, event.FolloweeID, removeLimit)
	if err != nil {
		return fmt.Errorf("get messages for unfollow prune: %w", err)
	}

	for _, m := range recent {
		if err := h.timeline.RemoveMessage(ctx, event.FollowerID, m.MessageID); err != nil {
			logrus.WithFields(logrus.Fields{"follower": event.FollowerID, "message": m.MessageID}).
				WithError(err).Error("worker: unfollow prune failed")
		}
	}

	return nil
}
