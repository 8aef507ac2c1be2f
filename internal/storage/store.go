// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/linkuphq/linkup/internal/models"
)

// Page selects a slice of an ordered result set. The zero value means the
// first page with the default size.
type Page struct {
	Number int
	Size   int
}

const defaultPageSize = 10

// Limit returns the page size, defaulting when unset.
func (p Page) Limit() int {
	if p.Size <= 0 {
		return defaultPageSize
	}
	return p.Size
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit()
}

/// FriendRequestOutcome reports what SendFriendRequest actually did: created
// a pending request, or auto-accepted a reverse pending request into a
// friendship.
type FriendRequestOutcome int

const (
	OutcomeRequested FriendRequestOutcome = iota
	OutcomeAutoAccepted
)

// LikeResult is the post-toggle state of a like operation.
type LikeResult struct {
	Likes   int
	IsLiked bool
}

// Store defines the interface for social graph storage operations.
//
// Every mutating method runs as a single transaction: multi-row invariants
// (symmetric friend edges, role moves, cascade deletes) are either fully
// applied or fully rolled back. Methods that describe a notifiable event
// create the notification row inside the same transaction and return it;
// the caller emits it after the method returns (that is, after commit).
type Store interface {
	// --- Users ---

	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store when unset.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUsername retrieves a user by username. Returns ErrNotFound
	// if absent.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateUser persists changed user fields.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes a user and everything attached to it.
	DeleteUser(ctx context.Context, id string) error

	// ListUsers returns completed profiles ordered by creation time
	// descending, optionally filtered by a name/username search term.
	ListUsers(ctx context.Context, search string, page Page) ([]models.User, bool, error)

	// --- Relationship graph ---

	// SendFriendRequest runs the request state machine for from -> to.
	// Fails with ErrAlreadyFriends or ErrRequestAlreadySent; auto-accepts
	// when a reverse pending request exists. The returned notification is
	// FRIEND_REQUEST or FRIEND_ACCEPTED depending on the outcome.
	SendFriendRequest(ctx context.Context, fromID, toID string) (FriendRequestOutcome, *models.Notification, error)

	// AcceptFriendRequest turns a received request into a symmetric
	// friendship. Returns ErrNotFound if no request exists, or
	// ErrAlreadyFriends. The returned FRIEND_ACCEPTED notification is
	// addressed to the original requester.
	AcceptFriendRequest(ctx context.Context, accepterID, requesterID string) (*models.Notification, error)

	// DeclineFriendRequest drops a received request without creating a
	// friendship. No notification.
	DeclineFriendRequest(ctx context.Context, declinerID, requesterID string) error

	// RemoveFriend deletes the symmetric edge pair. ErrNotFriends if absent.
	RemoveFriend(ctx context.Context, userID, friendID string) error

	// IsFriend reports whether a symmetric edge exists.
	IsFriend(ctx context.Context, userID, friendID string) (bool, error)

	// ListFriends returns a user's friends ordered by name.
	ListFriends(ctx context.Context, userID string, page Page) ([]models.User, bool, error)

	// ListReceivedRequests returns the users whose requests await userID.
	ListReceivedRequests(ctx context.Context, userID string) ([]models.User, error)

	// --- Groups ---

	// CreateGroup persists a new group. ID and CreatedAt are populated.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// UpdateGroup persists changed group fields. The owner never changes.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group, its posts and their comments/likes,
	// memberships, and invitations.
	DeleteGroup(ctx context.Context, id string) error

	// GroupRole reports the role of a user within a group (RoleNone when
	// the user does not belong to it).
	GroupRole(ctx context.Context, groupID, userID string) (models.GroupRole, error)

	// ListGroups returns groups ordered by creation time descending,
	// optionally filtered by a name search term. When memberID is set only
	// groups that user owns, administers, or belongs to are returned.
	ListGroups(ctx context.Context, search, memberID string, page Page) ([]models.Group, bool, error)

	// ListGroupMembers and ListGroupAdmins return the respective role sets.
	ListGroupMembers(ctx context.Context, groupID string, page Page) ([]models.User, bool, error)
	ListGroupAdmins(ctx context.Context, groupID string, page Page) ([]models.User, bool, error)

	// AddGroupMember adds a user to the member set. ErrAlreadyMember when
	// the user already holds any role in the group.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// RemoveGroupUser drops a user from the admin and member sets.
	// Idempotent; no-op if the user holds no role.
	RemoveGroupUser(ctx context.Context, groupID, userID string) error

	// PromoteMember moves target from the member set to the admin set.
	// Only the owner may promote; ErrForbidden/ErrNotMember/ErrAlreadyAdmin
	// otherwise. Returns an ADMIN_PROMOTION notification for the target.
	PromoteMember(ctx context.Context, groupID, actorID, targetID string) (*models.Notification, error)

	// DemoteAdmin moves target from the admin set back to the member set.
	// Only the owner may demote; ErrForbidden/ErrNotAdmin otherwise.
	DemoteAdmin(ctx context.Context, groupID, actorID, targetID string) error

	// CreateInvitation records an invite. ErrAlreadyMember if the invitee
	// already holds a role; ErrDuplicateInvitation if any outstanding
	// invite exists for the invitee in this group, whoever sent it.
	// Returns a GROUP_INVITE notification for the invitee.
	CreateInvitation(ctx context.Context, groupID, inviterID, inviteeID string) (*models.Notification, error)

	// AcceptInvitation consumes the invitation and adds the invitee to the
	// member set. Returns an INVITE_ACCEPTED notification for the inviter.
	// ErrNotFound when no invitation exists.
	AcceptInvitation(ctx context.Context, groupID, inviteeID string) (*models.Notification, error)

	// DeclineInvitation consumes the invitation without joining.
	DeclineInvitation(ctx context.Context, groupID, inviteeID string) error

	// --- Posts, comments, likes ---

	// CreatePost persists a new post. ID and timestamps are populated.
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPost retrieves a post with viewer-dependent aggregates.
	GetPost(ctx context.Context, viewerID, id string) (*models.Post, error)

	// ResharePost creates a reshare of parentID and increments the parent's
	// share counter. Returns a POST_SHARE notification for the parent's
	// author, nil when the author reshares their own post.
	ResharePost(ctx context.Context, authorID, parentID, content string) (*models.Post, *models.Notification, error)

	// DeletePost removes a post, its comments and likes, and clears the
	// parent reference on reshares of it.
	DeletePost(ctx context.Context, id string) error

	// CommunityFeed returns the posts visible to the viewer, newest first.
	// tag, when non-empty, is matched case-insensitively against content.
	CommunityFeed(ctx context.Context, viewerID, tag string, page Page) ([]models.Post, bool, error)

	// FriendsFeed restricts the feed to the viewer's own posts, friends'
	// posts, and posts in groups the viewer belongs to.
	FriendsFeed(ctx context.Context, viewerID string, page Page) ([]models.Post, bool, error)

	// UserPosts returns a single author's personal posts, newest first.
	UserPosts(ctx context.Context, viewerID, userID string, page Page) ([]models.Post, bool, error)

	// GroupPosts returns a group's posts, newest first.
	GroupPosts(ctx context.Context, viewerID, groupID string, page Page) ([]models.Post, bool, error)

	// CreateComment persists a comment. Returns a POST_COMMENT notification
	// for the post author, nil when commenting on an own post.
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Notification, error)

	// GetComment retrieves a comment by ID.
	GetComment(ctx context.Context, id string) (*models.Comment, error)

	// DeleteComment removes a comment and its likes.
	DeleteComment(ctx context.Context, id string) error

	// ListComments returns a post's comments, oldest first.
	ListComments(ctx context.Context, viewerID, postID string, page Page) ([]models.Comment, bool, error)

	// ToggleLikePost likes or unlikes a post for the user. A notification
	// is returned only on like (never unlike) of another user's post.
	ToggleLikePost(ctx context.Context, userID, postID string) (LikeResult, *models.Notification, error)

	// ToggleLikeComment likes or unlikes a comment for the user.
	ToggleLikeComment(ctx context.Context, userID, commentID string) (LikeResult, *models.Notification, error)

	// --- Messages ---

	// CreateMessage persists a message (unread) and fills the sender's
	// denormalized display fields for the immediate echo.
	CreateMessage(ctx context.Context, message *models.Message) error

	// Conversation returns one page of the message history between two
	// users. Pages walk backwards from the latest messages; within a page
	// messages are ordered oldest first.
	Conversation(ctx context.Context, userID, peerID string, page Page) ([]models.Message, bool, error)

	// LatestConversations returns, for each distinct peer, only the most
	// recent message, ordered by that message's timestamp descending.
	LatestConversations(ctx context.Context, userID string) ([]models.Message, error)

	// MarkMessagesRead marks all peer->user messages read and reports
	// whether unread messages from anyone else remain.
	MarkMessagesRead(ctx context.Context, userID, peerID string) (bool, error)

	// HasUnreadMessages reports whether any unread message awaits the user.
	HasUnreadMessages(ctx context.Context, userID string) (bool, error)

	// --- Notifications ---

	// UnreadNotifications returns a capped preview of the newest unread
	// notifications (at most 5).
	UnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error)

	// ListNotifications returns the user's notifications newest first,
	// optionally restricted to unread ones.
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, page Page) ([]models.Notification, bool, error)

	// NextUnreadNotification returns the newest unread notification whose
	// ID is not in the exclusion set, or nil when none remain.
	NextUnreadNotification(ctx context.Context, userID string, excludeIDs []string) (*models.Notification, error)

	// MarkNotificationRead marks one notification read, scoped to the
	// owning recipient. ErrNotFound when it belongs to someone else.
	MarkNotificationRead(ctx context.Context, id, userID string) error

	// MarkAllNotificationsRead marks every unread notification read.
	MarkAllNotificationsRead(ctx context.Context, userID string) error

	// Close releases any resources held by the store.
	Close() error
}
