package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/model"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/queue"
	"github.com/jesseruhland/SBUnit26TwitterClone/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
	publisher   queue.Publisher
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	likeRepo repository.LikeRepository,
	publisher queue.Publisher,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		publisher:   publisher,
	}
}

// Create posts a new message for the user. Text must be non-blank and at
// most model.MaxMessageLength runes.
func (s *MessageService) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return nil, model.ErrMessageTooLong
	}

	msg := &model.Message{
		UserID: userID,
		Text:   text,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	// Fan-out happens asynchronously after commit
	if s.publisher != nil {
		event := queue.NewMessagePostedEvent(msg.ID, userID)
		if _, err := s.publisher.Publish(ctx, queue.StreamTimeline, event); err != nil {
			logrus.WithFields(logrus.Fields{"message": msg.ID, "author": userID}).
				WithError(err).Error("message: publish posted event failed")
		}
	}

	return msg, nil
}

// GetByID fetches a single message with its author attached.
func (s *MessageService) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	return s.messageRepo.GetByID(ctx, id)
}

// GetByUser returns a user's messages, newest first. When viewerID is
// non-zero each message carries whether the viewer has liked it.
func (s *MessageService) GetByUser(ctx context.Context, userID, viewerID int64) ([]model.Message, error) {
	messages, err := s.messageRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.markLiked(ctx, viewerID, messages)
}

// GetLikedByUser returns the messages a user has liked, newest like first.
func (s *MessageService) GetLikedByUser(ctx context.Context, userID, viewerID int64) ([]model.Message, error) {
	messages, err := s.messageRepo.GetLikedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.markLiked(ctx, viewerID, messages)
}

// Delete removes a message. Only the author may delete it; anyone else
// gets model.ErrNotMessageOwner.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID int64) error {
	authorID, err := s.messageRepo.GetAuthorID(ctx, messageID)
	if err != nil {
		return err
	}

	if authorID != actorID {
		return model.ErrNotMessageOwner
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewMessageDeletedEvent(messageID, authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamTimeline, event); err != nil {
			logrus.WithFields(logrus.Fields{"message": messageID, "author": authorID}).
				WithError(err).Error("message: publish deleted event failed")
		}
	}

	return nil
}

func (s *MessageService) markLiked(ctx context.Context, viewerID int64, messages []model.Message) ([]model.Message, error) {
	if viewerID == 0 || len(messages) == 0 {
		return messages, nil
	}

	ids := make([]int64, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	likedMap, err := s.likeRepo.CheckLikes(ctx, viewerID, ids)
	if err != nil {
		// Liked markers are cosmetic; don't fail the page over them
		logrus.WithError(err).Warn("message: check likes failed")
		return messages, nil
	}

	for i := range messages {
		messages[i].IsLiked = likedMap[messages[i].ID]
	}
	return messages, nil
}
