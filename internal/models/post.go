package models

import "time"

// Post is a feed entry. A post with GroupID set belongs to that group's
// wall; otherwise it is a personal feed post. A post with ParentID set is a
// reshare of the parent post.
type Post struct {
	// ID is the unique identifier for the post (UUID format).
	ID string

	// UserID references the author.
	UserID string

	// ParentID references the reshared post, empty for original posts.
	// Deleting a parent clears this reference on children.
	ParentID string

	// GroupID references the owning group, empty for personal posts.
	GroupID string

	Content string

	// Shares counts how many times this post has been reshared.
	Shares int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalized author fields filled by feed queries.
	AuthorUsername string
	AuthorName     string
	AuthorSurname  string
	AuthorImage    string

	// Viewer-dependent aggregates filled by feed queries.
	LikeCount    int
	CommentCount int
	IsLiked      bool
}

// Comment is attached to exactly one post.
type Comment struct {
	ID      string
	UserID  string
	PostID  string
	Content string

	CreatedAt time.Time

	AuthorUsername string
	AuthorName     string
	AuthorSurname  string
	AuthorImage    string

	LikeCount int
	IsLiked   bool
}

// Like is attached to exactly one of a post or a comment, never both and
// never neither. The storage schema enforces the invariant with a CHECK
// constraint.
type Like struct {
	ID        string
	UserID    string
	PostID    string
	CommentID string
	CreatedAt time.Time
}
