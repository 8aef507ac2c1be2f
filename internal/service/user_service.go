package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// UserService manages profiles and people search.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// Profile returns a user's profile by username, along with whether the
// viewer is friends with them. Private profiles are returned with their
// fields intact; the caller decides how much to render.
func (s *UserService) Profile(ctx context.Context, viewerID, username string) (*models.User, bool, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	isFriend := false
	if viewerID != "" && viewerID != user.ID {
		isFriend, err = s.store.IsFriend(ctx, viewerID, user.ID)
		if err != nil {
			return nil, false, err
		}
	}
	return user, isFriend, nil
}

// ProfileFriends lists a user's friends by username. Private profiles
// hide the list from everyone but the owner and their friends.
func (s *UserService) ProfileFriends(ctx context.Context, viewerID, username string, page storage.Page) ([]models.User, bool, error) {
	user, err := s.visibleProfile(ctx, viewerID, username)
	if err != nil {
		return nil, false, err
	}
	return s.store.ListFriends(ctx, user.ID, page)
}

// ProfileGroups lists the groups a user belongs to, under the same
// private-profile gate as ProfileFriends.
func (s *UserService) ProfileGroups(ctx context.Context, viewerID, username string, page storage.Page) ([]models.Group, bool, error) {
	user, err := s.visibleProfile(ctx, viewerID, username)
	if err != nil {
		return nil, false, err
	}
	return s.store.ListGroups(ctx, "", user.ID, page)
}

// visibleProfile resolves a username and applies the personal visibility
// rule: self, friend, or non-private profile. ErrForbidden otherwise.
func (s *UserService) visibleProfile(ctx context.Context, viewerID, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if viewerID == user.ID || !user.IsPrivate {
		return user, nil
	}
	isFriend, err := s.store.IsFriend(ctx, viewerID, user.ID)
	if err != nil {
		return nil, err
	}
	if !isFriend {
		return nil, storage.ErrForbidden
	}
	return user, nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name      string
	Surname   string
	Location  string
	About     string
	WorkingOn string
	Interests string
	Links     string
	Image     string
	IsPrivate bool
}

// UpdateProfile applies a profile edit. A profile becomes completed once
// both name and surname are filled; completed profiles show up in search.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(update.Name)
	user.Surname = strings.TrimSpace(update.Surname)
	user.Location = update.Location
	user.About = update.About
	user.WorkingOn = update.WorkingOn
	user.Interests = update.Interests
	user.Links = update.Links
	user.IsPrivate = update.IsPrivate
	if update.Image != "" {
		user.Image = update.Image
	}
	user.IsCompleted = user.Name != "" && user.Surname != ""

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("profile updated", "user_id", userID, "completed", user.IsCompleted)
	return user, nil
}

// Search finds completed profiles by name or username.
func (s *UserService) Search(ctx context.Context, term string, page storage.Page) ([]models.User, bool, error) {
	return s.store.ListUsers(ctx, term, page)
}

// Delete removes the user's account and all attached data.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	slog.Info("account deleted", "user_id", userID)
	return nil
}
