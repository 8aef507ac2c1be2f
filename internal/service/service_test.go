package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/realtime"
	"github.com/linkuphq/linkup/internal/storage"
	"github.com/linkuphq/linkup/internal/storage/sqlite"
)

// fakeNotifier records pushed events and simulates per-user connectivity.
type fakeNotifier struct {
	connected map[string]bool
	events    map[string][]realtime.Event
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		connected: make(map[string]bool),
		events:    make(map[string][]realtime.Event),
	}
}

func (f *fakeNotifier) Send(userID string, v any) bool {
	if !f.connected[userID] {
		return false
	}
	f.events[userID] = append(f.events[userID], v.(realtime.Event))
	return true
}

type testEnv struct {
	store         storage.Store
	notifier      *fakeNotifier
	users         *UserService
	friends       *FriendService
	groups        *GroupService
	feed          *FeedService
	messages      *MessageService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	notifier := newFakeNotifier()
	notifications := NewNotificationService(store, notifier)
	return &testEnv{
		store:         store,
		notifier:      notifier,
		users:         NewUserService(store),
		friends:       NewFriendService(store, notifications),
		groups:        NewGroupService(store, notifications),
		feed:          NewFeedService(store, notifications),
		messages:      NewMessageService(store, notifier),
		notifications: notifications,
	}
}

var userSeq int

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()

	userSeq++
	user := &models.User{
		Username:    fmt.Sprintf("%s%d", name, userSeq),
		Email:       fmt.Sprintf("%s%d@example.com", name, userSeq),
		Name:        name,
		Surname:     "Tester",
		IsCompleted: true,
	}
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func (e *testEnv) befriend(t *testing.T, a, b *models.User) {
	t.Helper()

	ctx := context.Background()
	if _, err := e.friends.SendRequest(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := e.friends.Accept(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
}

func TestFriendServiceEmission(t *testing.T) {
	ctx := context.Background()

	t.Run("request pushes to a connected recipient", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")
		env.notifier.connected[bob.ID] = true

		if _, err := env.friends.SendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}

		events := env.notifier.events[bob.ID]
		if len(events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(events))
		}
		if events[0].Type != "notification" {
			t.Errorf("Type mismatch: got %s, want notification", events[0].Type)
		}
		view, ok := events[0].Payload.(models.NotificationView)
		if !ok {
			t.Fatalf("Unexpected payload type %T", events[0].Payload)
		}
		if view.Type != string(models.NotifFriendRequest) {
			t.Errorf("Notification type mismatch: got %s", view.Type)
		}
	})

	t.Run("request to a disconnected recipient still persists", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")

		if _, err := env.friends.SendRequest(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("SendRequest failed: %v", err)
		}
		if len(env.notifier.events[bob.ID]) != 0 {
			t.Error("Expected no push for a disconnected user")
		}

		unread, err := env.notifications.Unread(ctx, bob.ID)
		if err != nil {
			t.Fatalf("Unread failed: %v", err)
		}
		if len(unread) != 1 {
			t.Fatalf("Expected 1 persisted notification, got %d", len(unread))
		}
	})

	t.Run("self-request is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")

		_, err := env.friends.SendRequest(ctx, alice.ID, alice.ID)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("request to an unknown user is not found", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")

		_, err := env.friends.SendRequest(ctx, alice.ID, "no-such-user")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestMessageService(t *testing.T) {
	ctx := context.Background()

	t.Run("messaging requires friendship", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")

		_, err := env.messages.Send(ctx, alice.ID, bob.ID, "hello stranger")
		if !errors.Is(err, storage.ErrNotFriends) {
			t.Errorf("Expected ErrNotFriends, got %v", err)
		}
	})

	t.Run("message is pushed to a connected recipient", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")
		env.befriend(t, alice, bob)
		env.notifier.connected[bob.ID] = true

		message, err := env.messages.Send(ctx, alice.ID, bob.ID, "hello friend")
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if message.ID == "" {
			t.Error("Expected message ID to be generated")
		}

		var pushed []realtime.Event
		for _, ev := range env.notifier.events[bob.ID] {
			if ev.Type == "message" {
				pushed = append(pushed, ev)
			}
		}
		if len(pushed) != 1 {
			t.Fatalf("Expected 1 message event, got %d", len(pushed))
		}
		view := pushed[0].Payload.(models.MessageView)
		if view.Content != "hello friend" {
			t.Errorf("Content mismatch: got %s", view.Content)
		}
	})

	t.Run("conversation read clears the unread flag", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")
		env.befriend(t, alice, bob)

		if _, err := env.messages.Send(ctx, alice.ID, bob.ID, "ping"); err != nil {
			t.Fatalf("Send failed: %v", err)
		}

		hasUnread, err := env.messages.HasUnread(ctx, bob.ID)
		if err != nil {
			t.Fatalf("HasUnread failed: %v", err)
		}
		if !hasUnread {
			t.Error("Expected unread message")
		}

		messages, hasNext, stillUnread, err := env.messages.Conversation(ctx, bob.ID, alice.ID, storage.Page{})
		if err != nil {
			t.Fatalf("Conversation failed: %v", err)
		}
		if len(messages) != 1 {
			t.Fatalf("Expected 1 message, got %d", len(messages))
		}
		if hasNext {
			t.Error("Expected no older page")
		}
		if stillUnread {
			t.Error("Expected no other unread conversations")
		}

		if _, _, _, err := env.messages.Conversation(ctx, bob.ID, bob.ID, storage.Page{}); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation for self conversation, got %v", err)
		}
	})
}

func TestGroupServiceRules(t *testing.T) {
	ctx := context.Background()

	t.Run("private groups are hidden from outsiders", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.createUser(t, "owner")
		outsider := env.createUser(t, "outsider")

		group, err := env.groups.Create(ctx, owner.ID, "Secret", "", "", "private")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if _, _, err := env.groups.Get(ctx, outsider.ID, group.ID); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("joining a private group directly is forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.createUser(t, "owner")
		outsider := env.createUser(t, "outsider")

		group, err := env.groups.Create(ctx, owner.ID, "Secret", "", "", "private")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := env.groups.Join(ctx, outsider.ID, group.ID); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}

		// An invitation opens the door.
		if err := env.groups.Invite(ctx, owner.ID, group.ID, outsider.ID); err != nil {
			t.Fatalf("Invite failed: %v", err)
		}
		if err := env.groups.AcceptInvite(ctx, outsider.ID, group.ID); err != nil {
			t.Fatalf("AcceptInvite failed: %v", err)
		}
		if _, role, err := env.groups.Get(ctx, outsider.ID, group.ID); err != nil || role != models.RoleMember {
			t.Errorf("Expected member role, got %s (err %v)", role, err)
		}
	})

	t.Run("the owner cannot leave", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.createUser(t, "owner")

		group, err := env.groups.Create(ctx, owner.ID, "Mine", "", "", "public")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := env.groups.Leave(ctx, owner.ID, group.ID); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("admins may remove members but not other admins", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.createUser(t, "owner")
		admin := env.createUser(t, "admin")
		other := env.createUser(t, "other")

		group, err := env.groups.Create(ctx, owner.ID, "Moderated", "", "", "public")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		for _, u := range []*models.User{admin, other} {
			if err := env.groups.Join(ctx, u.ID, group.ID); err != nil {
				t.Fatalf("Join failed: %v", err)
			}
		}
		if err := env.groups.Promote(ctx, owner.ID, group.ID, admin.ID); err != nil {
			t.Fatalf("Promote failed: %v", err)
		}

		if err := env.groups.Remove(ctx, admin.ID, group.ID, other.ID); err != nil {
			t.Fatalf("Remove of a member failed: %v", err)
		}
		if err := env.groups.Remove(ctx, admin.ID, group.ID, owner.ID); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden removing the owner, got %v", err)
		}
	})
}

func TestFeedServiceGates(t *testing.T) {
	ctx := context.Background()

	t.Run("posting into a group requires a role", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.createUser(t, "owner")
		outsider := env.createUser(t, "outsider")

		group, err := env.groups.Create(ctx, owner.ID, "Wall", "", "", "public")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := env.feed.CreatePost(ctx, outsider.ID, group.ID, "hi"); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("a private author's post is invisible to strangers", func(t *testing.T) {
		env := newTestEnv(t)
		hermit := env.createUser(t, "hermit")
		stranger := env.createUser(t, "stranger")

		if _, err := env.users.UpdateProfile(ctx, hermit.ID, ProfileUpdate{
			Name: "Herman", Surname: "Hermit", IsPrivate: true,
		}); err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}

		post, err := env.feed.CreatePost(ctx, hermit.ID, "", "alone")
		if err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
		if _, err := env.feed.GetPost(ctx, stranger.ID, post.ID); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
		if _, _, err := env.feed.UserPosts(ctx, stranger.ID, hermit.ID, storage.Page{}); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden for the post list, got %v", err)
		}
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.createUser(t, "user")

		if _, err := env.feed.CreatePost(ctx, user.ID, "", "   "); !errors.Is(err, ErrValidation) {
			t.Errorf("Expected ErrValidation, got %v", err)
		}
	})

	t.Run("like emits to the post author only", func(t *testing.T) {
		env := newTestEnv(t)
		author := env.createUser(t, "author")
		liker := env.createUser(t, "liker")
		env.notifier.connected[author.ID] = true
		env.notifier.connected[liker.ID] = true

		post, err := env.feed.CreatePost(ctx, author.ID, "", "likeable")
		if err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
		if _, err := env.feed.LikePost(ctx, liker.ID, post.ID); err != nil {
			t.Fatalf("LikePost failed: %v", err)
		}

		if len(env.notifier.events[author.ID]) != 1 {
			t.Errorf("Expected 1 event for the author, got %d", len(env.notifier.events[author.ID]))
		}
		if len(env.notifier.events[liker.ID]) != 0 {
			t.Errorf("Expected no events for the liker, got %d", len(env.notifier.events[liker.ID]))
		}
	})
}

func TestUserServiceProfileGate(t *testing.T) {
	ctx := context.Background()

	t.Run("private friends and groups lists open up to friends", func(t *testing.T) {
		env := newTestEnv(t)
		hermit := env.createUser(t, "hermit")
		buddy := env.createUser(t, "buddy")
		stranger := env.createUser(t, "stranger")
		env.befriend(t, hermit, buddy)

		if _, err := env.users.UpdateProfile(ctx, hermit.ID, ProfileUpdate{
			Name: "Herman", Surname: "Hermit", IsPrivate: true,
		}); err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if _, err := env.groups.Create(ctx, hermit.ID, "Hideout", "", "", "private"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if _, _, err := env.users.ProfileFriends(ctx, stranger.ID, hermit.Username, storage.Page{}); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden for the friends list, got %v", err)
		}
		if _, _, err := env.users.ProfileGroups(ctx, stranger.ID, hermit.Username, storage.Page{}); !errors.Is(err, storage.ErrForbidden) {
			t.Errorf("Expected ErrForbidden for the groups list, got %v", err)
		}

		friends, _, err := env.users.ProfileFriends(ctx, buddy.ID, hermit.Username, storage.Page{})
		if err != nil {
			t.Fatalf("ProfileFriends failed: %v", err)
		}
		if len(friends) != 1 || friends[0].ID != buddy.ID {
			t.Errorf("Expected only the buddy in the friends list, got %+v", friends)
		}
		groups, _, err := env.users.ProfileGroups(ctx, buddy.ID, hermit.Username, storage.Page{})
		if err != nil {
			t.Fatalf("ProfileGroups failed: %v", err)
		}
		if len(groups) != 1 || groups[0].Name != "Hideout" {
			t.Errorf("Expected the hideout group, got %+v", groups)
		}
	})

	t.Run("open profiles list for anyone", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice")
		bob := env.createUser(t, "bob")
		stranger := env.createUser(t, "stranger")
		env.befriend(t, alice, bob)

		friends, _, err := env.users.ProfileFriends(ctx, stranger.ID, alice.Username, storage.Page{})
		if err != nil {
			t.Fatalf("ProfileFriends failed: %v", err)
		}
		if len(friends) != 1 || friends[0].ID != bob.ID {
			t.Errorf("Expected bob in the friends list, got %+v", friends)
		}
	})
}
