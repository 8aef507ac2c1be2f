package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// A friendship is stored as a symmetric row pair in friends; a pending
// request is a single directed row in friend_requests (pending for the
// requester, received for the recipient). A pair holds at most one of
// {nothing, pending request, friendship} at any time.

func edgeExists(ctx context.Context, tx dbtx, table, colA, colB, a, b string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+table+" WHERE "+colA+" = ? AND "+colB+" = ?)",
		a, b,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return exists, nil
}

func insertFriendEdges(ctx context.Context, tx dbtx, a, b string) error {
	// Both directions, so the symmetric invariant holds row-for-row.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id) VALUES (?, ?), (?, ?)",
		a, b, b, a,
	); err != nil {
		return fmt.Errorf("failed to insert friend edges: %w", err)
	}
	return nil
}

func deleteRequest(ctx context.Context, tx dbtx, requesterID, recipientID string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM friend_requests WHERE requester_id = ? AND recipient_id = ?",
		requesterID, recipientID,
	); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// SendFriendRequest runs the request state machine for fromID -> toID.
func (s *SQLiteStore) SendFriendRequest(ctx context.Context, fromID, toID string) (storage.FriendRequestOutcome, *models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	friends, err := edgeExists(ctx, tx, "friends", "user_id", "friend_id", fromID, toID)
	if err != nil {
		return 0, nil, err
	}
	if friends {
		return 0, nil, storage.ErrAlreadyFriends
	}

	pending, err := edgeExists(ctx, tx, "friend_requests", "requester_id", "recipient_id", fromID, toID)
	if err != nil {
		return 0, nil, err
	}
	if pending {
		return 0, nil, storage.ErrRequestAlreadySent
	}

	// A reverse pending request resolves the race to an immediate
	// acceptance instead of two deadlocked pending edges.
	reverse, err := edgeExists(ctx, tx, "friend_requests", "requester_id", "recipient_id", toID, fromID)
	if err != nil {
		return 0, nil, err
	}

	var outcome storage.FriendRequestOutcome
	notification := &models.Notification{SenderID: fromID, RecipientID: toID}

	if reverse {
		outcome = storage.OutcomeAutoAccepted
		notification.Type = models.NotifFriendAccepted

		if err := insertFriendEdges(ctx, tx, fromID, toID); err != nil {
			return 0, nil, err
		}
		if err := deleteRequest(ctx, tx, toID, fromID); err != nil {
			return 0, nil, err
		}
		// The original request notification is resolved by this acceptance.
		if err := markRequestNotificationRead(ctx, tx, fromID, toID); err != nil {
			return 0, nil, err
		}
	} else {
		outcome = storage.OutcomeRequested
		notification.Type = models.NotifFriendRequest

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO friend_requests (requester_id, recipient_id, created_at) VALUES (?, ?, ?)",
			fromID, toID, toMillis(time.Now().UTC()),
		); err != nil {
			return 0, nil, fmt.Errorf("failed to insert friend request: %w", err)
		}
	}

	if err := createNotification(ctx, tx, notification); err != nil {
		return 0, nil, err
	}
	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return outcome, notification, nil
}

// AcceptFriendRequest turns a received request into a symmetric friendship.
func (s *SQLiteStore) AcceptFriendRequest(ctx context.Context, accepterID, requesterID string) (*models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	friends, err := edgeExists(ctx, tx, "friends", "user_id", "friend_id", accepterID, requesterID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, storage.ErrAlreadyFriends
	}

	requested, err := edgeExists(ctx, tx, "friend_requests", "requester_id", "recipient_id", requesterID, accepterID)
	if err != nil {
		return nil, err
	}
	if !requested {
		return nil, storage.ErrNotFound
	}

	if err := insertFriendEdges(ctx, tx, accepterID, requesterID); err != nil {
		return nil, err
	}
	if err := deleteRequest(ctx, tx, requesterID, accepterID); err != nil {
		return nil, err
	}
	if err := markRequestNotificationRead(ctx, tx, accepterID, requesterID); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		RecipientID: requesterID,
		SenderID:    accepterID,
		Type:        models.NotifFriendAccepted,
	}
	if err := createNotification(ctx, tx, notification); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return notification, nil
}

// DeclineFriendRequest drops a received request without creating friendship.
func (s *SQLiteStore) DeclineFriendRequest(ctx context.Context, declinerID, requesterID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM friend_requests WHERE requester_id = ? AND recipient_id = ?",
		requesterID, declinerID,
	)
	if err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check decline result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RemoveFriend deletes the symmetric edge pair.
func (s *SQLiteStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM friends WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove friend edges: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check remove result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFriends
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsFriend reports whether a symmetric edge exists.
func (s *SQLiteStore) IsFriend(ctx context.Context, userID, friendID string) (bool, error) {
	return edgeExists(ctx, s.db, "friends", "user_id", "friend_id", userID, friendID)
}

// ListFriends returns a user's friends ordered by name.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID string, page storage.Page) ([]models.User, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE id IN (SELECT friend_id FROM friends WHERE user_id = ?)
		 ORDER BY name, surname, username LIMIT ? OFFSET ?`,
		userID, page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows, page.Limit())
}

// ListReceivedRequests returns the users whose requests await userID.
func (s *SQLiteStore) ListReceivedRequests(ctx context.Context, userID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE id IN (SELECT requester_id FROM friend_requests WHERE recipient_id = ?)
		 ORDER BY name, surname, username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
