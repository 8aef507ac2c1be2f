package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

const messageSelect = `
SELECT m.id, m.sender_id, m.recipient_id, m.content, m.is_read, m.created_at,
	u.username, u.name, u.surname, u.image
FROM messages m
JOIN users u ON u.id = m.sender_id`

func scanMessage(row rowScanner) (*models.Message, error) {
	var m models.Message
	var createdAt int64
	err := row.Scan(
		&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &createdAt,
		&m.SenderUsername, &m.SenderName, &m.SenderSurname, &m.SenderImage,
	)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = fromMillis(createdAt)
	return &m, nil
}

// CreateMessage persists a direct message and fills the sender's display
// fields on the returned value.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = newID()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, recipient_id, content, is_read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		message.ID, message.SenderID, message.RecipientID, message.Content, toMillis(message.CreatedAt),
	); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT username, name, surname, image FROM users WHERE id = ?", message.SenderID,
	).Scan(&message.SenderUsername, &message.SenderName, &message.SenderSurname, &message.SenderImage); err != nil {
		return fmt.Errorf("failed to get message sender: %w", err)
	}
	return nil
}

// Conversation returns one page of the message history between two users.
// The first page holds the latest messages, later pages walk backwards in
// time; within a page messages are ordered oldest first.
func (s *SQLiteStore) Conversation(ctx context.Context, userID, peerID string, page storage.Page) ([]models.Message, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		messageSelect+`
		WHERE (m.sender_id = ? AND m.recipient_id = ?)
			OR (m.sender_id = ? AND m.recipient_id = ?)
		ORDER BY m.created_at DESC, m.id DESC LIMIT ? OFFSET ?`,
		userID, peerID, peerID, userID, page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate messages: %w", err)
	}

	hasNext := len(messages) > page.Limit()
	if hasNext {
		messages = messages[:page.Limit()]
	}
	// Flip back to chronological order for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, hasNext, nil
}

// LatestConversations returns the most recent message of each conversation
// the user participates in, newest first.
//
// Conversations are grouped by the unordered participant pair; the
// join-back on the pair's max timestamp picks the latest row, and the
// Go-side dedupe keeps one row per pair when two messages share that
// timestamp.
func (s *SQLiteStore) LatestConversations(ctx context.Context, userID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		messageSelect+`
		JOIN (
			SELECT MIN(sender_id, recipient_id) AS lo,
				MAX(sender_id, recipient_id) AS hi,
				MAX(created_at) AS latest
			FROM messages
			WHERE sender_id = ? OR recipient_id = ?
			GROUP BY lo, hi
		) last ON MIN(m.sender_id, m.recipient_id) = last.lo
			AND MAX(m.sender_id, m.recipient_id) = last.hi
			AND m.created_at = last.latest
		ORDER BY m.created_at DESC, m.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest conversations: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var messages []models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		pair := message.SenderID + "|" + message.RecipientID
		if message.RecipientID < message.SenderID {
			pair = message.RecipientID + "|" + message.SenderID
		}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		messages = append(messages, *message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return messages, nil
}

// MarkMessagesRead marks every message from peerID to userID as read and
// reports whether the user still has unread messages from anyone else.
func (s *SQLiteStore) MarkMessagesRead(ctx context.Context, userID, peerID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE messages SET is_read = 1 WHERE sender_id = ? AND recipient_id = ? AND is_read = 0",
		peerID, userID,
	); err != nil {
		return false, fmt.Errorf("failed to mark messages read: %w", err)
	}

	var hasUnread bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM messages WHERE recipient_id = ? AND is_read = 0)",
		userID,
	).Scan(&hasUnread); err != nil {
		return false, fmt.Errorf("failed to check unread messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return hasUnread, nil
}

// HasUnreadMessages reports whether any message to the user is unread.
func (s *SQLiteStore) HasUnreadMessages(ctx context.Context, userID string) (bool, error) {
	var hasUnread bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM messages WHERE recipient_id = ? AND is_read = 0)",
		userID,
	).Scan(&hasUnread); err != nil {
		return false, fmt.Errorf("failed to check unread messages: %w", err)
	}
	return hasUnread, nil
}
