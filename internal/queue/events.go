package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the timeline stream
const (
	EventMessagePosted  = "message_posted"
	EventMessageDeleted = "message_deleted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
)

// Stream names
const (
	StreamTimeline = "stream:timeline"
)

// Consumer group name for timeline workers
const (
	ConsumerGroupTimeline = "timeline_workers"
)

// TimelineEvent represents an event published to the timeline stream.
// All timeline-related events share this structure.
type TimelineEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Message events (MessagePosted, MessageDeleted)
	MessageID int64 `json:"message_id,omitempty"`
	AuthorID  int64 `json:"author_id,omitempty"`

	// Follow events (UserFollowed, UserUnfollowed)
	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`
}

// NewMessagePostedEvent creates an event for a freshly posted message.
// The worker fans it out to every follower's timeline cache.
func NewMessagePostedEvent(messageID, authorID int64) TimelineEvent {
	return TimelineEvent{
		Type:      EventMessagePosted,
		Timestamp: time.Now().Unix(),
		MessageID: messageID,
		AuthorID:  authorID,
	}
}

// NewMessageDeletedEvent creates an event for a deleted message.
// The worker removes it from all followers' timeline caches.
func NewMessageDeletedEvent(messageID, authorID int64) TimelineEvent {
	return TimelineEvent{
		Type:      EventMessageDeleted,
		Timestamp: time.Now().Unix(),
		MessageID: messageID,
		AuthorID:  authorID,
	}
}

// NewUserFollowedEvent creates an event for a new follow edge.
// The worker backfills the followee's recent messages into the follower's
// timeline cache.
func NewUserFollowedEvent(followerID, followeeID int64) TimelineEvent {
	return TimelineEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewUserUnfollowedEvent creates an event for a removed follow edge.
// The worker prunes the followee's messages from the follower's timeline.
func NewUserUnfollowedEvent(followerID, followeeID int64) TimelineEvent {
	return TimelineEvent{
		Type:       EventUserUnfollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// ToMap converts the event to a map for Redis XADD. Streams store
// field-value pairs, so the event is serialized as JSON in a "data" field.
func (e TimelineEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseTimelineEvent parses a TimelineEvent from Redis stream message values.
func ParseTimelineEvent(values map[string]interface{}) (TimelineEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return TimelineEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event TimelineEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return TimelineEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
