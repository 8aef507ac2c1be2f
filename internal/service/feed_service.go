package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// FeedService manages posts, comments and likes, and assembles the
// visibility-filtered feeds.
type FeedService struct {
	store         storage.Store
	notifications *NotificationService
}

// NewFeedService creates a new FeedService.
func NewFeedService(store storage.Store, notifications *NotificationService) *FeedService {
	return &FeedService{store: store, notifications: notifications}
}

// CreatePost publishes a personal post, or a group post when groupID is
// set. Group posts require a role in the group.
func (s *FeedService) CreatePost(ctx context.Context, authorID, groupID, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationf("post content is required")
	}
	if groupID != "" {
		role, err := s.store.GroupRole(ctx, groupID, authorID)
		if err != nil {
			return nil, err
		}
		if !models.CanPost(role) {
			return nil, storage.ErrForbidden
		}
	}

	post := &models.Post{
		UserID:  authorID,
		GroupID: groupID,
		Content: content,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	slog.Info("post created", "post_id", post.ID, "author_id", authorID, "group_id", groupID)
	return s.store.GetPost(ctx, authorID, post.ID)
}

// GetPost retrieves a post the viewer is allowed to see.
func (s *FeedService) GetPost(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPostVisible(ctx, viewerID, post); err != nil {
		return nil, err
	}
	return post, nil
}

// checkPostVisible applies the feed visibility rules to a single post.
func (s *FeedService) checkPostVisible(ctx context.Context, viewerID string, post *models.Post) error {
	if post.GroupID != "" {
		group, err := s.store.GetGroup(ctx, post.GroupID)
		if err != nil {
			return err
		}
		role, err := s.store.GroupRole(ctx, post.GroupID, viewerID)
		if err != nil {
			return err
		}
		if role != models.RoleNone {
			return nil
		}
		if group.Type != models.GroupPublic {
			return storage.ErrForbidden
		}
		// Posts in public groups fall through to the author rule.
	}
	return s.checkAuthorVisible(ctx, viewerID, post.UserID)
}

// checkAuthorVisible applies the personal visibility rule: self, friend,
// or non-private author.
func (s *FeedService) checkAuthorVisible(ctx context.Context, viewerID, authorID string) error {
	if viewerID == authorID {
		return nil
	}
	author, err := s.store.GetUserByID(ctx, authorID)
	if err != nil {
		return err
	}
	if !author.IsPrivate {
		return nil
	}
	isFriend, err := s.store.IsFriend(ctx, viewerID, authorID)
	if err != nil {
		return err
	}
	if !isFriend {
		return storage.ErrForbidden
	}
	return nil
}

// Reshare republishes an existing post under the resharer's name.
func (s *FeedService) Reshare(ctx context.Context, authorID, parentID, content string) (*models.Post, error) {
	if _, err := s.GetPost(ctx, authorID, parentID); err != nil {
		return nil, err
	}

	post, notification, err := s.store.ResharePost(ctx, authorID, parentID, content)
	if err != nil {
		return nil, err
	}
	s.notifications.Emit(notification)

	slog.Info("post reshared", "post_id", post.ID, "parent_id", parentID, "author_id", authorID)
	return s.store.GetPost(ctx, authorID, post.ID)
}

// DeletePost removes a post. The author may always delete; in groups the
// role hierarchy also allows moderation.
func (s *FeedService) DeletePost(ctx context.Context, actorID, postID string) error {
	post, err := s.store.GetPost(ctx, actorID, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		if post.GroupID == "" {
			return storage.ErrForbidden
		}
		actorRole, err := s.store.GroupRole(ctx, post.GroupID, actorID)
		if err != nil {
			return err
		}
		authorRole, err := s.store.GroupRole(ctx, post.GroupID, post.UserID)
		if err != nil {
			return err
		}
		if !models.CanRemove(actorRole, authorRole) {
			return storage.ErrForbidden
		}
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return err
	}
	slog.Info("post deleted", "post_id", postID, "actor_id", actorID)
	return nil
}

// Community returns the viewer's community feed, optionally filtered by a
// case-insensitive content tag.
func (s *FeedService) Community(ctx context.Context, viewerID, tag string, page storage.Page) ([]models.Post, bool, error) {
	return s.store.CommunityFeed(ctx, viewerID, tag, page)
}

// Friends returns the feed restricted to friends and joined groups.
func (s *FeedService) Friends(ctx context.Context, viewerID string, page storage.Page) ([]models.Post, bool, error) {
	return s.store.FriendsFeed(ctx, viewerID, page)
}

// UserPosts returns an author's personal posts, gated on profile privacy.
func (s *FeedService) UserPosts(ctx context.Context, viewerID, userID string, page storage.Page) ([]models.Post, bool, error) {
	if err := s.checkAuthorVisible(ctx, viewerID, userID); err != nil {
		return nil, false, err
	}
	return s.store.UserPosts(ctx, viewerID, userID, page)
}

// GroupPosts returns a group's posts, gated on group visibility.
func (s *FeedService) GroupPosts(ctx context.Context, viewerID, groupID string, page storage.Page) ([]models.Post, bool, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, false, err
	}
	role, err := s.store.GroupRole(ctx, groupID, viewerID)
	if err != nil {
		return nil, false, err
	}
	if !models.CanView(group.Type, role) {
		return nil, false, storage.ErrForbidden
	}
	return s.store.GroupPosts(ctx, viewerID, groupID, page)
}

// Comment adds a comment to a post the viewer can see.
func (s *FeedService) Comment(ctx context.Context, authorID, postID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationf("comment content is required")
	}
	if _, err := s.GetPost(ctx, authorID, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:  authorID,
		PostID:  postID,
		Content: content,
	}
	notification, err := s.store.CreateComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	s.notifications.Emit(notification)

	slog.Info("comment created", "comment_id", comment.ID, "post_id", postID, "author_id", authorID)
	return comment, nil
}

// DeleteComment removes a comment. Allowed for the comment author and the
// post author.
func (s *FeedService) DeleteComment(ctx context.Context, actorID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		post, err := s.store.GetPost(ctx, actorID, comment.PostID)
		if err != nil {
			return err
		}
		if post.UserID != actorID {
			return storage.ErrForbidden
		}
	}
	return s.store.DeleteComment(ctx, commentID)
}

// Comments lists a post's comments, oldest first.
func (s *FeedService) Comments(ctx context.Context, viewerID, postID string, page storage.Page) ([]models.Comment, bool, error) {
	if _, err := s.GetPost(ctx, viewerID, postID); err != nil {
		return nil, false, err
	}
	return s.store.ListComments(ctx, viewerID, postID, page)
}

// LikePost toggles the viewer's like on a post.
func (s *FeedService) LikePost(ctx context.Context, userID, postID string) (storage.LikeResult, error) {
	if _, err := s.GetPost(ctx, userID, postID); err != nil {
		return storage.LikeResult{}, err
	}
	result, notification, err := s.store.ToggleLikePost(ctx, userID, postID)
	if err != nil {
		return storage.LikeResult{}, err
	}
	s.notifications.Emit(notification)
	return result, nil
}

// LikeComment toggles the viewer's like on a comment.
func (s *FeedService) LikeComment(ctx context.Context, userID, commentID string) (storage.LikeResult, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return storage.LikeResult{}, err
	}
	if _, err := s.GetPost(ctx, userID, comment.PostID); err != nil {
		return storage.LikeResult{}, err
	}
	result, notification, err := s.store.ToggleLikeComment(ctx, userID, commentID)
	if err != nil {
		return storage.LikeResult{}, err
	}
	s.notifications.Emit(notification)
	return result, nil
}
