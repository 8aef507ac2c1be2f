package models

import (
	"fmt"
	"time"

	"github.com/linkuphq/linkup/pkg/timeutil"
)

// NotificationType enumerates the social events that produce notifications.
type NotificationType string

const (
	NotifFriendRequest  NotificationType = "friend_request"
	NotifFriendAccepted NotificationType = "friend_accepted"
	NotifPostLike       NotificationType = "post_like"
	NotifPostComment    NotificationType = "post_comment"
	NotifPostShare      NotificationType = "post_share"
	NotifCommentLike    NotificationType = "comment_like"
	NotifGroupInvite    NotificationType = "group_invite"
	NotifInviteAccepted NotificationType = "invite_accepted"
	NotifAdminPromotion NotificationType = "admin_promotion"
)

// ParseNotificationType validates a type read from the database.
func ParseNotificationType(s string) (NotificationType, error) {
	switch NotificationType(s) {
	case NotifFriendRequest, NotifFriendAccepted, NotifPostLike,
		NotifPostComment, NotifPostShare, NotifCommentLike,
		NotifGroupInvite, NotifInviteAccepted, NotifAdminPromotion:
		return NotificationType(s), nil
	}
	return "", fmt.Errorf("unknown notification type %q", s)
}

// Notification is a durable record of a social event addressed to a single
// recipient. Never mutated after creation except for the read flag.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    string
	Type        NotificationType

	// Optional references to the post/comment the event concerns.
	PostID    string
	CommentID string

	IsRead    bool
	CreatedAt time.Time

	// Denormalized sender fields filled on read and on creation so the
	// real-time payload can be built without a second lookup.
	SenderUsername string
	SenderName     string
	SenderSurname  string
	SenderImage    string
}

// NotificationView is the wire shape for a notification, shared by the
// HTTP API and the real-time channel.
type NotificationView struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	SenderName        string `json:"sender_name"`
	SenderUsername    string `json:"sender_username"`
	SenderImage       string `json:"sender_image"`
	CreatedAtRelative string `json:"created_at"`
	CreatedAtISO      string `json:"created_at_iso"`
	IsRead            bool   `json:"is_read"`
	PostID            string `json:"post_id,omitempty"`
	CommentID         string `json:"comment_id,omitempty"`
}

// View builds the wire representation of the notification.
func (n *Notification) View() NotificationView {
	name := n.SenderName
	if n.SenderSurname != "" {
		name += " " + n.SenderSurname
	}
	return NotificationView{
		ID:                n.ID,
		Type:              string(n.Type),
		SenderName:        name,
		SenderUsername:    n.SenderUsername,
		SenderImage:       n.SenderImage,
		CreatedAtRelative: timeutil.TimeAgo(n.CreatedAt),
		CreatedAtISO:      timeutil.ISO(n.CreatedAt),
		IsRead:            n.IsRead,
		PostID:            n.PostID,
		CommentID:         n.CommentID,
	}
}
