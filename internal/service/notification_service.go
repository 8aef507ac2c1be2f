package service

import (
	"context"
	"log/slog"

	"github.com/linkuphq/linkup/internal/metrics"
	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/realtime"
	"github.com/linkuphq/linkup/internal/storage"
)

// Delivery reports what happened to a notification push.
type Delivery string

const (
	// Delivered means the recipient had a live connection and got the push.
	Delivered Delivery = "delivered"
	// Unconnected means the notification was persisted but nobody was
	// listening; the recipient sees it on their next query.
	Unconnected Delivery = "unconnected"
)

// Notifier pushes an event to a user's live connection, reporting whether
// the user was connected. *realtime.Registry satisfies it.
type Notifier interface {
	Send(userID string, v any) bool
}

// NotificationService queries persisted notifications and pushes freshly
// created ones to live connections.
//
// Notification rows are created by the store inside the same transaction as
// the action that caused them; services hand the committed row to Emit.
// A failed or impossible push is never an error: the row already exists.
type NotificationService struct {
	store    storage.Store
	notifier Notifier
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store storage.Store, notifier Notifier) *NotificationService {
	return &NotificationService{store: store, notifier: notifier}
}

// Emit pushes a committed notification to its recipient's connection.
// Accepts nil (no notification was produced) for caller convenience.
func (s *NotificationService) Emit(n *models.Notification) Delivery {
	if n == nil {
		return Unconnected
	}

	delivery := Unconnected
	if s.notifier.Send(n.RecipientID, realtime.Event{Type: "notification", Payload: n.View()}) {
		delivery = Delivered
	}
	metrics.NotificationsEmitted.WithLabelValues(string(n.Type), string(delivery)).Inc()

	slog.Debug("notification emitted",
		"notification_id", n.ID,
		"type", n.Type,
		"recipient_id", n.RecipientID,
		"delivery", delivery,
	)
	return delivery
}

// Unread returns a capped preview of the user's newest unread notifications.
func (s *NotificationService) Unread(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.store.UnreadNotifications(ctx, userID)
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page storage.Page) ([]models.Notification, bool, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly, page)
}

// Next returns the newest unread notification not yet shown, or nil.
// Clients pass the IDs they are already displaying.
func (s *NotificationService) Next(ctx context.Context, userID string, excludeIDs []string) (*models.Notification, error) {
	return s.store.NextUnreadNotification(ctx, userID, excludeIDs)
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.store.MarkNotificationRead(ctx, id, userID)
}

// MarkAllRead marks every notification for the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}
