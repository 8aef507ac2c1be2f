package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

const notificationSelect = `
SELECT n.id, n.recipient_id, n.sender_id, n.notification_type,
	COALESCE(n.post_id, ''), COALESCE(n.comment_id, ''), n.is_read, n.created_at,
	u.username, u.name, u.surname, u.image
FROM notifications n
JOIN users u ON u.id = n.sender_id`

func scanNotification(row rowScanner) (*models.Notification, error) {
	var n models.Notification
	var createdAt int64
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.SenderID, &n.Type,
		&n.PostID, &n.CommentID, &n.IsRead, &createdAt,
		&n.SenderUsername, &n.SenderName, &n.SenderSurname, &n.SenderImage,
	)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = fromMillis(createdAt)
	return &n, nil
}

func collectNotifications(rows *sql.Rows) ([]models.Notification, error) {
	var notifications []models.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// UnreadNotifications returns the user's most recent unread notifications,
// capped at five.
func (s *SQLiteStore) UnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		notificationSelect+`
		WHERE n.recipient_id = ? AND n.is_read = 0
		ORDER BY n.created_at DESC, n.id DESC LIMIT 5`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread notifications: %w", err)
	}
	defer rows.Close()

	return collectNotifications(rows)
}

// ListNotifications returns the user's notifications, newest first,
// optionally restricted to unread ones.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool, page storage.Page) ([]models.Notification, bool, error) {
	query := notificationSelect + " WHERE n.recipient_id = ?"
	if unreadOnly {
		query += " AND n.is_read = 0"
	}
	query += " ORDER BY n.created_at DESC, n.id DESC LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit()+1, page.Offset())
	if err != nil {
		return nil, false, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications, err := collectNotifications(rows)
	if err != nil {
		return nil, false, err
	}
	hasNext := len(notifications) > page.Limit()
	if hasNext {
		notifications = notifications[:page.Limit()]
	}
	return notifications, hasNext, nil
}

// NextUnreadNotification returns the newest unread notification for the
// user that is not in excludeIDs, or nil when none remain.
func (s *SQLiteStore) NextUnreadNotification(ctx context.Context, userID string, excludeIDs []string) (*models.Notification, error) {
	query := notificationSelect + " WHERE n.recipient_id = ? AND n.is_read = 0"
	args := []any{userID}
	if len(excludeIDs) > 0 {
		query += " AND n.id NOT IN (?" + strings.Repeat(", ?", len(excludeIDs)-1) + ")"
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY n.created_at DESC, n.id DESC LIMIT 1"

	notification, err := scanNotification(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next unread notification: %w", err)
	}
	return notification, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
// Notifications belonging to other users are not found.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every notification for the user as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0",
		userID,
	); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
