package storage

import "errors"

// Error kinds surfaced by storage operations. Services and handlers match
// these with errors.Is; anything else is a store failure that triggered a
// rollback and left no partial state.
var (
	// ErrNotFound reports that a referenced entity is absent, or that it is
	// not owned by the caller where ownership is part of the lookup.
	ErrNotFound = errors.New("not found")

	// ErrForbidden reports a failed role or ownership check.
	ErrForbidden = errors.New("forbidden")

	// Relationship graph conflicts.
	ErrAlreadyFriends     = errors.New("already friends")
	ErrRequestAlreadySent = errors.New("friend request already sent")
	ErrNotFriends         = errors.New("not friends")

	// Group membership conflicts.
	ErrAlreadyMember       = errors.New("already a group member")
	ErrAlreadyAdmin        = errors.New("already an admin")
	ErrNotAdmin            = errors.New("not an admin")
	ErrNotMember           = errors.New("not a group member")
	ErrDuplicateInvitation = errors.New("invitation already sent")
)
