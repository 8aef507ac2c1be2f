package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var testUserSeq int

// createTestUser inserts a completed user with a unique username.
func createTestUser(t *testing.T, store *SQLiteStore, name string) *models.User {
	t.Helper()

	testUserSeq++
	user := &models.User{
		Username:     fmt.Sprintf("%s%d", name, testUserSeq),
		Email:        fmt.Sprintf("%s%d@example.com", name, testUserSeq),
		PasswordHash: "x",
		Name:         name,
		Surname:      "Tester",
		IsCompleted:  true,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and CreatedAt", func(t *testing.T) {
		user := createTestUser(t, store, "alice")
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByID retrieves the user", func(t *testing.T) {
		user := createTestUser(t, store, "bob")

		retrieved, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if retrieved.Username != user.Username {
			t.Errorf("Username mismatch: got %s, want %s", retrieved.Username, user.Username)
		}
		if retrieved.Email != user.Email {
			t.Errorf("Email mismatch: got %s, want %s", retrieved.Email, user.Email)
		}
	})

	t.Run("GetUserByUsername and GetUserByEmail", func(t *testing.T) {
		user := createTestUser(t, store, "carol")

		byUsername, err := store.GetUserByUsername(ctx, user.Username)
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if byUsername.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", byUsername.ID, user.ID)
		}

		byEmail, err := store.GetUserByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", byEmail.ID, user.ID)
		}
	})

	t.Run("GetUserByID returns ErrNotFound for missing user", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "no-such-id")
		if err != storage.ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateUser persists profile fields", func(t *testing.T) {
		user := createTestUser(t, store, "dave")
		user.About = "gopher"
		user.IsPrivate = true

		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		retrieved, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if retrieved.About != "gopher" {
			t.Errorf("About mismatch: got %s, want gopher", retrieved.About)
		}
		if !retrieved.IsPrivate {
			t.Error("Expected IsPrivate to be true")
		}
	})

	t.Run("ListUsers matches name search", func(t *testing.T) {
		user := createTestUser(t, store, "searchable")

		users, _, err := store.ListUsers(ctx, "searchable", storage.Page{})
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		found := false
		for _, u := range users {
			if u.ID == user.ID {
				found = true
			}
		}
		if !found {
			t.Error("Expected search to find the user")
		}
	})

	t.Run("DeleteUser removes the account", func(t *testing.T) {
		user := createTestUser(t, store, "gone")

		if err := store.DeleteUser(ctx, user.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		if _, err := store.GetUserByID(ctx, user.ID); err != storage.ErrNotFound {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})
}
