package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// fakeUserStorage keeps users in memory, keyed by ID.
type fakeUserStorage struct {
	users map[string]*models.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{users: make(map[string]*models.User)}
}

func (f *fakeUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUserStorage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUserStorage) UpdateUser(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return storage.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()

	t.Run("register then authenticate", func(t *testing.T) {
		a := NewPasswordAuthenticator(newFakeUserStorage())

		user, err := a.Register(ctx, "alice", "alice@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.PasswordHash == "correct horse" {
			t.Error("Expected the password to be hashed")
		}

		if _, err := a.Authenticate(ctx, "alice", "correct horse"); err != nil {
			t.Errorf("Authenticate by username failed: %v", err)
		}
		if _, err := a.Authenticate(ctx, "alice@example.com", "correct horse"); err != nil {
			t.Errorf("Authenticate by email failed: %v", err)
		}
		if _, err := a.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("register rejects duplicates and weak passwords", func(t *testing.T) {
		a := NewPasswordAuthenticator(newFakeUserStorage())

		if _, err := a.Register(ctx, "alice", "alice@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
		if _, err := a.Register(ctx, "alice", "alice@example.com", "long enough"); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if _, err := a.Register(ctx, "alice", "other@example.com", "long enough"); !errors.Is(err, ErrUsernameExists) {
			t.Errorf("Expected ErrUsernameExists, got %v", err)
		}
		if _, err := a.Register(ctx, "bob", "alice@example.com", "long enough"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("change password verifies the current one", func(t *testing.T) {
		a := NewPasswordAuthenticator(newFakeUserStorage())
		user, err := a.Register(ctx, "alice", "alice@example.com", "original pass")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if err := a.ChangePassword(ctx, user.ID, "wrong pass", "replacement"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
		if err := a.ChangePassword(ctx, user.ID, "original pass", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
		if err := a.ChangePassword(ctx, "missing", "original pass", "replacement"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
		}

		if err := a.ChangePassword(ctx, user.ID, "original pass", "replacement"); err != nil {
			t.Fatalf("ChangePassword failed: %v", err)
		}
		if _, err := a.Authenticate(ctx, "alice", "replacement"); err != nil {
			t.Errorf("Authenticate with the new password failed: %v", err)
		}
		if _, err := a.Authenticate(ctx, "alice", "original pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected the old password to stop working, got %v", err)
		}
	})
}
