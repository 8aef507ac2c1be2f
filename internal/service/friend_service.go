package service

import (
	"context"
	"log/slog"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// FriendService runs the friend request state machine.
type FriendService struct {
	store         storage.Store
	notifications *NotificationService
}

// NewFriendService creates a new FriendService.
func NewFriendService(store storage.Store, notifications *NotificationService) *FriendService {
	return &FriendService{store: store, notifications: notifications}
}

// SendRequest sends a friend request from one user to another. When the
// recipient already has a pending request the other way, the two become
// friends immediately.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID string) (storage.FriendRequestOutcome, error) {
	if fromID == toID {
		return 0, validationf("cannot send a friend request to yourself")
	}
	if _, err := s.store.GetUserByID(ctx, toID); err != nil {
		return 0, err
	}

	outcome, notification, err := s.store.SendFriendRequest(ctx, fromID, toID)
	if err != nil {
		return 0, err
	}
	s.notifications.Emit(notification)

	slog.Info("friend request processed",
		"from_id", fromID,
		"to_id", toID,
		"auto_accepted", outcome == storage.OutcomeAutoAccepted,
	)
	return outcome, nil
}

// Accept turns a received request into a friendship.
func (s *FriendService) Accept(ctx context.Context, userID, requesterID string) error {
	notification, err := s.store.AcceptFriendRequest(ctx, userID, requesterID)
	if err != nil {
		return err
	}
	s.notifications.Emit(notification)

	slog.Info("friend request accepted", "user_id", userID, "requester_id", requesterID)
	return nil
}

// Decline drops a received request. The requester is not told.
func (s *FriendService) Decline(ctx context.Context, userID, requesterID string) error {
	return s.store.DeclineFriendRequest(ctx, userID, requesterID)
}

// Unfriend removes an existing friendship in both directions.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID string) error {
	if err := s.store.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	slog.Info("friendship removed", "user_id", userID, "friend_id", friendID)
	return nil
}

// Friends lists a user's friends.
func (s *FriendService) Friends(ctx context.Context, userID string, page storage.Page) ([]models.User, bool, error) {
	return s.store.ListFriends(ctx, userID, page)
}

// ReceivedRequests lists the users whose requests await userID.
func (s *FriendService) ReceivedRequests(ctx context.Context, userID string) ([]models.User, error) {
	return s.store.ListReceivedRequests(ctx, userID)
}
