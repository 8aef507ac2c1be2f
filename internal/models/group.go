package models

import (
	"fmt"
	"time"
)

// GroupType controls who may view a group's posts.
type GroupType string

const (
	GroupPrivate GroupType = "private"
	GroupPublic  GroupType = "public"
)

// ParseGroupType validates a group type coming from a client or the database.
func ParseGroupType(s string) (GroupType, error) {
	switch GroupType(s) {
	case GroupPrivate, GroupPublic:
		return GroupType(s), nil
	}
	return "", fmt.Errorf("unknown group type %q", s)
}

// GroupRole is a user's role within a group. The owner is exactly one user,
// fixed at creation; admin and member sets are disjoint from each other and
// from the owner.
type GroupRole string

const (
	RoleNone   GroupRole = ""
	RoleOwner  GroupRole = "owner"
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

// Group represents a community owned by a single user.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// OwnerID references the owning user. Immutable once created.
	OwnerID string

	// Image is an opaque blob-storage key for the group picture.
	Image string

	Name  string
	About string

	Type GroupType

	CreatedAt time.Time
}

// CanPost reports whether a user with the given role may post in the group.
func CanPost(role GroupRole) bool {
	return role != RoleNone
}

// CanView reports whether a user with the given role may see the group's
// posts. Public groups are visible to everyone.
func CanView(groupType GroupType, role GroupRole) bool {
	return groupType == GroupPublic || role != RoleNone
}

// CanRemove reports whether an actor may remove a target from the group
// (or moderate the target's posts). The owner may remove anyone but itself;
// admins may remove plain members only; members may remove no one.
func CanRemove(actor, target GroupRole) bool {
	switch actor {
	case RoleOwner:
		return target != RoleOwner
	case RoleAdmin:
		return target == RoleMember
	}
	return false
}

// Invitation is an outstanding invite of a user into a group. At most one
// invitation per (group, invitee) exists; it is consumed on accept/decline.
type Invitation struct {
	ID        string
	GroupID   string
	InviterID string
	InviteeID string
	CreatedAt time.Time
}
