package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linkuphq/linkup/internal/metrics"
	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/realtime"
	"github.com/linkuphq/linkup/internal/storage"
)

// MessageService handles direct messages between friends.
type MessageService struct {
	store    storage.Store
	notifier Notifier
}

// NewMessageService creates a new MessageService.
func NewMessageService(store storage.Store, notifier Notifier) *MessageService {
	return &MessageService{store: store, notifier: notifier}
}

// Send delivers a direct message. Only friends can message each other. The
// message is persisted unread first; if the recipient is connected it is
// pushed immediately.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationf("message content is required")
	}
	if senderID == recipientID {
		return nil, validationf("cannot message yourself")
	}
	isFriend, err := s.store.IsFriend(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, storage.ErrNotFriends
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	delivered := s.notifier.Send(recipientID, realtime.Event{Type: "message", Payload: message.View()})
	slog.Info("message sent",
		"message_id", message.ID,
		"sender_id", senderID,
		"recipient_id", recipientID,
		"pushed", delivered,
	)
	return message, nil
}

// Conversation returns one page of the history with a peer, latest page
// first, and marks the peer's messages as read. The second flag reports
// whether an older page exists, the third whether unread messages from
// other conversations remain.
func (s *MessageService) Conversation(ctx context.Context, userID, peerID string, page storage.Page) ([]models.Message, bool, bool, error) {
	if userID == peerID {
		return nil, false, false, validationf("cannot open a conversation with yourself")
	}
	if _, err := s.store.GetUserByID(ctx, peerID); err != nil {
		return nil, false, false, err
	}
	messages, hasNext, err := s.store.Conversation(ctx, userID, peerID, page)
	if err != nil {
		return nil, false, false, err
	}
	hasUnread, err := s.store.MarkMessagesRead(ctx, userID, peerID)
	if err != nil {
		return nil, false, false, err
	}
	return messages, hasNext, hasUnread, nil
}

// Inbox returns the latest message of each conversation, newest first.
func (s *MessageService) Inbox(ctx context.Context, userID string) ([]models.Message, error) {
	return s.store.LatestConversations(ctx, userID)
}

// HasUnread reports whether any unread message awaits the user.
func (s *MessageService) HasUnread(ctx context.Context, userID string) (bool, error) {
	return s.store.HasUnreadMessages(ctx, userID)
}
