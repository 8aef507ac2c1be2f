package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

func befriend(t *testing.T, store *SQLiteStore, a, b *models.User) {
	t.Helper()

	ctx := context.Background()
	if _, _, err := store.SendFriendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("SendFriendRequest failed: %v", err)
	}
	if _, err := store.AcceptFriendRequest(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("AcceptFriendRequest failed: %v", err)
	}
}

func createTestPost(t *testing.T, store *SQLiteStore, authorID, groupID, content string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: authorID, GroupID: groupID, Content: content}
	if err := store.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return post
}

func feedContains(posts []models.Post, id string) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func TestCommunityFeedVisibility(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	viewer := createTestUser(t, store, "viewer")
	friend := createTestUser(t, store, "friend")
	openUser := createTestUser(t, store, "open")
	privateUser := createTestUser(t, store, "hermit")

	privateUser.IsPrivate = true
	if err := store.UpdateUser(ctx, privateUser); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	friend.IsPrivate = true
	if err := store.UpdateUser(ctx, friend); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	befriend(t, store, viewer, friend)

	ownPost := createTestPost(t, store, viewer.ID, "", "my own post")
	friendPost := createTestPost(t, store, friend.ID, "", "private friend post")
	openPost := createTestPost(t, store, openUser.ID, "", "public stranger post")
	hiddenPost := createTestPost(t, store, privateUser.ID, "", "private stranger post")

	memberGroup := createTestGroup(t, store, openUser.ID, models.GroupPrivate)
	if err := store.AddGroupMember(ctx, memberGroup.ID, viewer.ID); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	memberGroupPost := createTestPost(t, store, openUser.ID, memberGroup.ID, "post in my group")

	closedGroup := createTestGroup(t, store, openUser.ID, models.GroupPrivate)
	closedGroupPost := createTestPost(t, store, openUser.ID, closedGroup.ID, "post in closed group")

	publicGroup := createTestGroup(t, store, openUser.ID, models.GroupPublic)
	publicGroupPost := createTestPost(t, store, openUser.ID, publicGroup.ID, "post in public group")
	publicGroupHidden := createTestPost(t, store, privateUser.ID, publicGroup.ID, "private author in public group")

	posts, _, err := store.CommunityFeed(ctx, viewer.ID, "", storage.Page{Size: 50})
	if err != nil {
		t.Fatalf("CommunityFeed failed: %v", err)
	}

	visible := []struct {
		name string
		id   string
	}{
		{"own post", ownPost.ID},
		{"private friend's post", friendPost.ID},
		{"non-private stranger's post", openPost.ID},
		{"post in a joined private group", memberGroupPost.ID},
		{"non-private author's post in a public group", publicGroupPost.ID},
	}
	for _, tc := range visible {
		if !feedContains(posts, tc.id) {
			t.Errorf("Expected %s to be visible", tc.name)
		}
	}

	hidden := []struct {
		name string
		id   string
	}{
		{"private stranger's post", hiddenPost.ID},
		{"post in a private group the viewer is not in", closedGroupPost.ID},
		{"private stranger's post in a public group", publicGroupHidden.ID},
	}
	for _, tc := range hidden {
		if feedContains(posts, tc.id) {
			t.Errorf("Expected %s to be hidden", tc.name)
		}
	}

	t.Run("tag filter matches content case-insensitively", func(t *testing.T) {
		posts, _, err := store.CommunityFeed(ctx, viewer.ID, "OWN POST", storage.Page{})
		if err != nil {
			t.Fatalf("CommunityFeed failed: %v", err)
		}
		if !feedContains(posts, ownPost.ID) {
			t.Error("Expected tag filter to match the post")
		}
		if feedContains(posts, openPost.ID) {
			t.Error("Expected tag filter to exclude non-matching posts")
		}
	})

	t.Run("friends feed excludes non-private strangers", func(t *testing.T) {
		posts, _, err := store.FriendsFeed(ctx, viewer.ID, storage.Page{Size: 50})
		if err != nil {
			t.Fatalf("FriendsFeed failed: %v", err)
		}
		if !feedContains(posts, friendPost.ID) {
			t.Error("Expected friend's post in friends feed")
		}
		if !feedContains(posts, memberGroupPost.ID) {
			t.Error("Expected joined group's post in friends feed")
		}
		if feedContains(posts, openPost.ID) {
			t.Error("Expected stranger's post to be excluded from friends feed")
		}
	})
}

func TestResharesAndDeletes(t *testing.T) {
	ctx := context.Background()

	t.Run("ResharePost bumps the counter and notifies the author", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		sharer := createTestUser(t, store, "sharer")
		original := createTestPost(t, store, author.ID, "", "worth sharing")

		reshare, notification, err := store.ResharePost(ctx, sharer.ID, original.ID, "look at this")
		if err != nil {
			t.Fatalf("ResharePost failed: %v", err)
		}
		if reshare.ParentID != original.ID {
			t.Errorf("ParentID mismatch: got %s, want %s", reshare.ParentID, original.ID)
		}
		if notification == nil || notification.Type != models.NotifPostShare {
			t.Fatalf("Expected POST_SHARE notification, got %+v", notification)
		}

		updated, err := store.GetPost(ctx, sharer.ID, original.ID)
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if updated.Shares != 1 {
			t.Errorf("Shares mismatch: got %d, want 1", updated.Shares)
		}
	})

	t.Run("resharing your own post produces no notification", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		original := createTestPost(t, store, author.ID, "", "self share")

		_, notification, err := store.ResharePost(ctx, author.ID, original.ID, "")
		if err != nil {
			t.Fatalf("ResharePost failed: %v", err)
		}
		if notification != nil {
			t.Errorf("Expected no notification, got %+v", notification)
		}
	})

	t.Run("DeletePost detaches reshares and drops comments and likes", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		other := createTestUser(t, store, "other")
		original := createTestPost(t, store, author.ID, "", "doomed")

		reshare, _, err := store.ResharePost(ctx, other.ID, original.ID, "")
		if err != nil {
			t.Fatalf("ResharePost failed: %v", err)
		}
		comment := &models.Comment{UserID: other.ID, PostID: original.ID, Content: "nice"}
		if _, err := store.CreateComment(ctx, comment); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
		if _, _, err := store.ToggleLikePost(ctx, other.ID, original.ID); err != nil {
			t.Fatalf("ToggleLikePost failed: %v", err)
		}

		if err := store.DeletePost(ctx, original.ID); err != nil {
			t.Fatalf("DeletePost failed: %v", err)
		}

		if _, err := store.GetPost(ctx, author.ID, original.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetComment(ctx, comment.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected comment to be gone, got %v", err)
		}

		orphan, err := store.GetPost(ctx, other.ID, reshare.ID)
		if err != nil {
			t.Fatalf("GetPost failed: %v", err)
		}
		if orphan.ParentID != "" {
			t.Errorf("Expected reshare parent to be cleared, got %s", orphan.ParentID)
		}
	})
}

func TestCommentsAndLikes(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateComment notifies the post author", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		commenter := createTestUser(t, store, "commenter")
		post := createTestPost(t, store, author.ID, "", "discuss")

		comment := &models.Comment{UserID: commenter.ID, PostID: post.ID, Content: "hot take"}
		notification, err := store.CreateComment(ctx, comment)
		if err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
		if notification == nil || notification.Type != models.NotifPostComment {
			t.Fatalf("Expected POST_COMMENT notification, got %+v", notification)
		}
		if notification.CommentID != comment.ID {
			t.Errorf("CommentID mismatch: got %s, want %s", notification.CommentID, comment.ID)
		}
	})

	t.Run("commenting on your own post produces no notification", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		post := createTestPost(t, store, author.ID, "", "monologue")

		notification, err := store.CreateComment(ctx, &models.Comment{
			UserID: author.ID, PostID: post.ID, Content: "me again",
		})
		if err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
		if notification != nil {
			t.Errorf("Expected no notification, got %+v", notification)
		}
	})

	t.Run("ListComments returns oldest first", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		post := createTestPost(t, store, author.ID, "", "thread")

		base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		for i, content := range []string{"first", "second", "third"} {
			if _, err := store.CreateComment(ctx, &models.Comment{
				UserID: author.ID, PostID: post.ID, Content: content,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}); err != nil {
				t.Fatalf("CreateComment failed: %v", err)
			}
		}

		comments, _, err := store.ListComments(ctx, author.ID, post.ID, storage.Page{})
		if err != nil {
			t.Fatalf("ListComments failed: %v", err)
		}
		if len(comments) != 3 {
			t.Fatalf("Expected 3 comments, got %d", len(comments))
		}
		if comments[0].Content != "first" || comments[2].Content != "third" {
			t.Errorf("Expected oldest-first order, got %s .. %s", comments[0].Content, comments[2].Content)
		}
	})

	t.Run("like toggle flips state and notifies once", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		liker := createTestUser(t, store, "liker")
		post := createTestPost(t, store, author.ID, "", "likeable")

		result, notification, err := store.ToggleLikePost(ctx, liker.ID, post.ID)
		if err != nil {
			t.Fatalf("ToggleLikePost failed: %v", err)
		}
		if !result.IsLiked || result.Likes != 1 {
			t.Errorf("Expected liked with count 1, got %+v", result)
		}
		if notification == nil || notification.Type != models.NotifPostLike {
			t.Fatalf("Expected POST_LIKE notification, got %+v", notification)
		}

		result, notification, err = store.ToggleLikePost(ctx, liker.ID, post.ID)
		if err != nil {
			t.Fatalf("ToggleLikePost failed: %v", err)
		}
		if result.IsLiked || result.Likes != 0 {
			t.Errorf("Expected unliked with count 0, got %+v", result)
		}
		if notification != nil {
			t.Errorf("Expected no notification on unlike, got %+v", notification)
		}
	})

	t.Run("comment like references the enclosing post", func(t *testing.T) {
		store := newTestStore(t)
		author := createTestUser(t, store, "author")
		liker := createTestUser(t, store, "liker")
		post := createTestPost(t, store, author.ID, "", "parent")
		comment := &models.Comment{UserID: author.ID, PostID: post.ID, Content: "likeable comment"}
		if _, err := store.CreateComment(ctx, comment); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}

		result, notification, err := store.ToggleLikeComment(ctx, liker.ID, comment.ID)
		if err != nil {
			t.Fatalf("ToggleLikeComment failed: %v", err)
		}
		if !result.IsLiked || result.Likes != 1 {
			t.Errorf("Expected liked with count 1, got %+v", result)
		}
		if notification == nil || notification.Type != models.NotifCommentLike {
			t.Fatalf("Expected COMMENT_LIKE notification, got %+v", notification)
		}
		if notification.PostID != post.ID || notification.CommentID != comment.ID {
			t.Errorf("Reference mismatch: got post %s comment %s", notification.PostID, notification.CommentID)
		}
	})
}
