package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// TimelineCachePrefix is the key prefix for per-user home timelines
	TimelineCachePrefix = "timeline:user:"

	// TimelineCacheCap is the maximum number of messages cached per user
	TimelineCacheCap = 500

	// TimelineCacheTTL expires timelines of inactive users (7 days)
	TimelineCacheTTL = 7 * 24 * time.Hour
)

// MessageScore pairs a message id with its timestamp score for caching
type MessageScore struct {
	MessageID int64
	Timestamp int64 // Unix timestamp
}

// TimelineCache holds each user's home timeline as message ids ordered by
// post time. An interface so tests can use an in-memory implementation.
type TimelineCache interface {
	// AddMessage adds a message to a user's timeline.
	// Pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL)
	AddMessage(ctx context.Context, userID, messageID int64, timestamp int64) error

	// RemoveMessage removes a message from a user's timeline.
	RemoveMessage(ctx context.Context, userID, messageID int64) error

	// GetTimeline returns the newest message ids in a user's timeline.
	GetTimeline(ctx context.Context, userID int64, limit int) ([]int64, error)

	// WarmCache bulk-inserts messages into a user's timeline.
	WarmCache(ctx context.Context, userID int64, messages []MessageScore) error

	// Size returns the number of messages in a user's timeline.
	Size(ctx context.Context, userID int64) (int64, error)

	// Exists reports whether the user has a timeline entry. False means
	// the caller should warm the cache from the database.
	Exists(ctx context.Context, userID int64) (bool, error)
}

// RedisTimelineCache implements TimelineCache using Redis sorted sets.
type RedisTimelineCache struct {
	client *redis.Client
}

// NewTimelineCache creates a TimelineCache backed by Redis.
func NewTimelineCache(client *redis.Client) TimelineCache {
	return &RedisTimelineCache{client: client}
}

func timelineKey(userID int64) string {
	return fmt.Sprintf("%s%d", TimelineCachePrefix, userID)
}

func (c *RedisTimelineCache) AddMessage(ctx context.Context, userID, messageID int64, timestamp int64) error {
	key := timelineKey(userID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(messageID, 10),
	})
	// Keep the newest TimelineCacheCap entries, drop the rest
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-TimelineCacheCap-1))
	pipe.Expire(ctx, key, TimelineCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		logrus.WithFields(logrus.Fields{"user": userID, "message": messageID}).
			WithError(err).Error("timeline cache: add message failed")
		return fmt.Errorf("add message to timeline: %w", err)
	}
	return nil
}

func (c *RedisTimelineCache) RemoveMessage(ctx context.Context, userID, messageID int64) error {
	key := timelineKey(userID)
	member := strconv.FormatInt(messageID, 10)

	if err := c.client.ZRem(ctx, key, member).Err(); err != nil {
		logrus.WithFields(logrus.Fields{"user": userID, "message": messageID}).
			WithError(err).Error("timeline cache: remove message failed")
		return fmt.Errorf("remove message from timeline: %w", err)
	}
	return nil
}

func (c *RedisTimelineCache) GetTimeline(ctx context.Context, userID int64, limit int) ([]int64, error) {
	key := timelineKey(userID)

	members, err := c.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("get timeline: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, key, TimelineCacheTTL)

	ids := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse message id: %w", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (c *RedisTimelineCache) WarmCache(ctx context.Context, userID int64, messages []MessageScore) error {
	if len(messages) == 0 {
		return nil
	}

	key := timelineKey(userID)

	members := make([]redis.Z, len(messages))
	for i, m := range messages {
		members[i] = redis.Z{
			Score:  float64(m.Timestamp),
			Member: strconv.FormatInt(m.MessageID, 10),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-TimelineCacheCap-1))
	pipe.Expire(ctx, key, TimelineCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm timeline cache: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user": userID, "messages": len(messages)}).
		Info("timeline cache warmed")
	return nil
}

func (c *RedisTimelineCache) Size(ctx context.Context, userID int64) (int64, error) {
	n, err := c.client.ZCard(ctx, timelineKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("timeline size: %w", err)
	}
	return n, nil
}

func (c *RedisTimelineCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, timelineKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("timeline exists: %w", err)
	}
	return n > 0, nil
}
