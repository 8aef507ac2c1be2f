package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

func TestFriendRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("SendFriendRequest creates a pending request and notification", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		outcome, notification, err := store.SendFriendRequest(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}
		if outcome != storage.OutcomeRequested {
			t.Errorf("Expected OutcomeRequested, got %v", outcome)
		}
		if notification == nil {
			t.Fatal("Expected a notification")
		}
		if notification.Type != models.NotifFriendRequest {
			t.Errorf("Type mismatch: got %s, want %s", notification.Type, models.NotifFriendRequest)
		}
		if notification.RecipientID != bob.ID {
			t.Errorf("Recipient mismatch: got %s, want %s", notification.RecipientID, bob.ID)
		}

		isFriend, err := store.IsFriend(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("IsFriend failed: %v", err)
		}
		if isFriend {
			t.Error("Expected no friendship yet")
		}
	})

	t.Run("duplicate request is rejected", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		if _, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}
		_, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID)
		if !errors.Is(err, storage.ErrRequestAlreadySent) {
			t.Errorf("Expected ErrRequestAlreadySent, got %v", err)
		}
	})

	t.Run("mutual requests auto-accept", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		if _, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}

		outcome, notification, err := store.SendFriendRequest(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("reverse SendFriendRequest failed: %v", err)
		}
		if outcome != storage.OutcomeAutoAccepted {
			t.Errorf("Expected OutcomeAutoAccepted, got %v", outcome)
		}
		if notification == nil || notification.Type != models.NotifFriendAccepted {
			t.Fatalf("Expected FRIEND_ACCEPTED notification, got %+v", notification)
		}
		if notification.RecipientID != alice.ID {
			t.Errorf("Recipient mismatch: got %s, want %s", notification.RecipientID, alice.ID)
		}

		// Friendship is symmetric.
		for _, pair := range [][2]string{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
			isFriend, err := store.IsFriend(ctx, pair[0], pair[1])
			if err != nil {
				t.Fatalf("IsFriend failed: %v", err)
			}
			if !isFriend {
				t.Errorf("Expected %s and %s to be friends", pair[0], pair[1])
			}
		}

		// No request survives in either direction.
		requests, err := store.ListReceivedRequests(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListReceivedRequests failed: %v", err)
		}
		if len(requests) != 0 {
			t.Errorf("Expected no pending requests, got %d", len(requests))
		}

		// The original request notification is marked read.
		unread, err := store.UnreadNotifications(ctx, bob.ID)
		if err != nil {
			t.Fatalf("UnreadNotifications failed: %v", err)
		}
		for _, n := range unread {
			if n.Type == models.NotifFriendRequest {
				t.Error("Expected the friend request notification to be marked read")
			}
		}
	})

	t.Run("AcceptFriendRequest creates a symmetric friendship", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		if _, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}

		notification, err := store.AcceptFriendRequest(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("AcceptFriendRequest failed: %v", err)
		}
		if notification.Type != models.NotifFriendAccepted {
			t.Errorf("Type mismatch: got %s, want %s", notification.Type, models.NotifFriendAccepted)
		}
		if notification.RecipientID != alice.ID {
			t.Errorf("Recipient mismatch: got %s, want %s", notification.RecipientID, alice.ID)
		}

		isFriend, err := store.IsFriend(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("IsFriend failed: %v", err)
		}
		if !isFriend {
			t.Error("Expected friendship after accept")
		}
	})

	t.Run("AcceptFriendRequest without a request returns ErrNotFound", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		_, err := store.AcceptFriendRequest(ctx, bob.ID, alice.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("request to an existing friend is rejected", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		if _, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}
		if _, err := store.AcceptFriendRequest(ctx, bob.ID, alice.ID); err != nil {
			t.Fatalf("AcceptFriendRequest failed: %v", err)
		}

		_, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID)
		if !errors.Is(err, storage.ErrAlreadyFriends) {
			t.Errorf("Expected ErrAlreadyFriends, got %v", err)
		}
	})

	t.Run("DeclineFriendRequest drops the request silently", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		if _, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}
		if err := store.DeclineFriendRequest(ctx, bob.ID, alice.ID); err != nil {
			t.Fatalf("DeclineFriendRequest failed: %v", err)
		}

		isFriend, err := store.IsFriend(ctx, alice.ID, bob.ID)
		if err != nil {
			t.Fatalf("IsFriend failed: %v", err)
		}
		if isFriend {
			t.Error("Expected no friendship after decline")
		}

		// Declining again finds nothing.
		if err := store.DeclineFriendRequest(ctx, bob.ID, alice.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RemoveFriend deletes both directions", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")

		if _, _, err := store.SendFriendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendFriendRequest failed: %v", err)
		}
		if _, err := store.AcceptFriendRequest(ctx, bob.ID, alice.ID); err != nil {
			t.Fatalf("AcceptFriendRequest failed: %v", err)
		}

		if err := store.RemoveFriend(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("RemoveFriend failed: %v", err)
		}
		isFriend, err := store.IsFriend(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("IsFriend failed: %v", err)
		}
		if isFriend {
			t.Error("Expected friendship to be gone in both directions")
		}

		if err := store.RemoveFriend(ctx, alice.ID, bob.ID); !errors.Is(err, storage.ErrNotFriends) {
			t.Errorf("Expected ErrNotFriends, got %v", err)
		}
	})

	t.Run("ListFriends returns accepted friends", func(t *testing.T) {
		store := newTestStore(t)
		alice := createTestUser(t, store, "alice")
		bob := createTestUser(t, store, "bob")
		carol := createTestUser(t, store, "carol")

		for _, friend := range []*models.User{bob, carol} {
			if _, _, err := store.SendFriendRequest(ctx, alice.ID, friend.ID); err != nil {
				t.Fatalf("SendFriendRequest failed: %v", err)
			}
			if _, err := store.AcceptFriendRequest(ctx, friend.ID, alice.ID); err != nil {
				t.Fatalf("AcceptFriendRequest failed: %v", err)
			}
		}

		friends, hasNext, err := store.ListFriends(ctx, alice.ID, storage.Page{})
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(friends) != 2 {
			t.Errorf("Expected 2 friends, got %d", len(friends))
		}
		if hasNext {
			t.Error("Expected no next page")
		}
	})
}
