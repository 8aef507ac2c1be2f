// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so query helpers can run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func newID() string {
	return uuid.New().String()
}

// Timestamps are stored as UTC milliseconds.
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// nullable maps an empty string reference to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// createNotification inserts a notification row inside the caller's
// transaction and fills the sender's denormalized display fields so the
// record can be emitted immediately after commit.
func createNotification(ctx context.Context, tx dbtx, n *models.Notification) error {
	if _, err := models.ParseNotificationType(string(n.Type)); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, sender_id, notification_type, post_id, comment_id, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		n.ID, n.RecipientID, n.SenderID, string(n.Type),
		nullable(n.PostID), nullable(n.CommentID), toMillis(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		"SELECT username, name, surname, image FROM users WHERE id = ?", n.SenderID,
	).Scan(&n.SenderUsername, &n.SenderName, &n.SenderSurname, &n.SenderImage)
	if err != nil {
		return fmt.Errorf("failed to load notification sender: %w", err)
	}
	return nil
}

// markRequestNotificationRead marks an outstanding unread FRIEND_REQUEST
// notification from sender to recipient as read, if one exists.
func markRequestNotificationRead(ctx context.Context, tx dbtx, recipientID, senderID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1
		 WHERE recipient_id = ? AND sender_id = ? AND notification_type = ? AND is_read = 0`,
		recipientID, senderID, string(models.NotifFriendRequest),
	)
	if err != nil {
		return fmt.Errorf("failed to mark request notification read: %w", err)
	}
	return nil
}
