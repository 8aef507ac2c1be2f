package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// Post rows are always selected with the author's display fields and the
// viewer-dependent aggregates, so feeds render without follow-up queries.
const postSelect = `
SELECT p.id, p.user_id, COALESCE(p.parent_id, ''), COALESCE(p.group_id, ''),
	p.content, p.shares, p.created_at, p.updated_at,
	u.username, u.name, u.surname, u.image,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?)
FROM posts p
JOIN users u ON u.id = p.user_id`

// authorVisible is the personal-post predicate: the author is the viewer,
// the author is a friend of the viewer, or the author's account is public.
const authorVisible = `(p.user_id = ?
	OR u.is_private = 0
	OR EXISTS (SELECT 1 FROM friends f WHERE f.user_id = ? AND f.friend_id = p.user_id))`

// viewerInGroup covers owner, admin, and member roles.
const viewerInGroup = `(g.owner_id = ?
	OR EXISTS (SELECT 1 FROM group_admins ga WHERE ga.group_id = g.id AND ga.user_id = ?)
	OR EXISTS (SELECT 1 FROM group_members gm WHERE gm.group_id = g.id AND gm.user_id = ?))`

func scanPost(row rowScanner) (*models.Post, error) {
	var p models.Post
	var createdAt, updatedAt int64
	err := row.Scan(
		&p.ID, &p.UserID, &p.ParentID, &p.GroupID,
		&p.Content, &p.Shares, &createdAt, &updatedAt,
		&p.AuthorUsername, &p.AuthorName, &p.AuthorSurname, &p.AuthorImage,
		&p.LikeCount, &p.CommentCount, &p.IsLiked,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}

func collectPosts(rows *sql.Rows, limit int) ([]models.Post, bool, error) {
	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate posts: %w", err)
	}
	hasNext := len(posts) > limit
	if hasNext {
		posts = posts[:limit]
	}
	return posts, hasNext, nil
}

// CreatePost persists a new post.
func (s *SQLiteStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, parent_id, group_id, content, shares, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		post.ID, post.UserID, nullable(post.ParentID), nullable(post.GroupID),
		post.Content, toMillis(post.CreatedAt), toMillis(post.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetPost retrieves a post with viewer-dependent aggregates.
func (s *SQLiteStore) GetPost(ctx context.Context, viewerID, id string) (*models.Post, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, postSelect+" WHERE p.id = ?", viewerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ResharePost creates a reshare and bumps the parent's share counter in the
// same transaction.
func (s *SQLiteStore) ResharePost(ctx context.Context, authorID, parentID, content string) (*models.Post, *models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var parentAuthorID string
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM posts WHERE id = ?", parentID).Scan(&parentAuthorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get parent post: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE posts SET shares = shares + 1 WHERE id = ?", parentID,
	); err != nil {
		return nil, nil, fmt.Errorf("failed to bump share counter: %w", err)
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        newID(),
		UserID:    authorID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, parent_id, group_id, content, shares, created_at, updated_at)
		 VALUES (?, ?, ?, NULL, ?, 0, ?, ?)`,
		post.ID, post.UserID, post.ParentID, post.Content,
		toMillis(post.CreatedAt), toMillis(post.UpdatedAt),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to insert reshare: %w", err)
	}

	var notification *models.Notification
	if parentAuthorID != authorID {
		notification = &models.Notification{
			RecipientID: parentAuthorID,
			SenderID:    authorID,
			Type:        models.NotifPostShare,
			PostID:      post.ID,
		}
		if err := createNotification(ctx, tx, notification); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return post, notification, nil
}

// DeletePost removes a post with its comments and likes, and detaches
// reshares of it.
func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ?
			OR comment_id IN (SELECT id FROM comments WHERE post_id = ?)`,
		id, id,
	); err != nil {
		return fmt.Errorf("failed to delete post likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE post_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete post comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE posts SET parent_id = NULL WHERE parent_id = ?", id,
	); err != nil {
		return fmt.Errorf("failed to detach reshares: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CommunityFeed returns the posts visible to the viewer, newest first.
//
// The visibility rules compose into a single filter evaluated by the
// database: group posts are visible to group members and, for public
// groups, to anyone the author's personal posts would be visible to;
// personal posts follow the self/friend/non-private rule.
func (s *SQLiteStore) CommunityFeed(ctx context.Context, viewerID, tag string, page storage.Page) ([]models.Post, bool, error) {
	query := postSelect + `
	LEFT JOIN groups g ON g.id = p.group_id
	WHERE (
		(p.group_id IS NULL AND ` + authorVisible + `)
		OR (p.group_id IS NOT NULL AND (` + viewerInGroup + `
			OR (g.group_type = 'public' AND ` + authorVisible + `)))
	)`
	args := []any{viewerID, // postSelect IsLiked
		viewerID, viewerID, // personal authorVisible
		viewerID, viewerID, viewerID, // viewerInGroup
		viewerID, viewerID, // public-group authorVisible
	}
	if tag != "" {
		query += " AND instr(lower(p.content), lower(?)) > 0"
		args = append(args, tag)
	}
	query += " ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?"
	args = append(args, page.Limit()+1, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query community feed: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows, page.Limit())
}

// FriendsFeed restricts the feed to own posts, friends' posts, and posts in
// groups the viewer belongs to. The public/non-private widening clause does
// not apply here.
func (s *SQLiteStore) FriendsFeed(ctx context.Context, viewerID string, page storage.Page) ([]models.Post, bool, error) {
	query := postSelect + `
	LEFT JOIN groups g ON g.id = p.group_id
	WHERE (p.user_id = ?
		OR EXISTS (SELECT 1 FROM friends f WHERE f.user_id = ? AND f.friend_id = p.user_id)
		OR (p.group_id IS NOT NULL AND ` + viewerInGroup + `))
	ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query,
		viewerID, viewerID, viewerID, viewerID, viewerID, viewerID,
		page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query friends feed: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows, page.Limit())
}

// UserPosts returns a single author's personal posts, newest first.
// Profile-level privacy gating happens in the service layer.
func (s *SQLiteStore) UserPosts(ctx context.Context, viewerID, userID string, page storage.Page) ([]models.Post, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		postSelect+` WHERE p.user_id = ? AND p.group_id IS NULL
		ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		viewerID, userID, page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query user posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows, page.Limit())
}

// GroupPosts returns a group's posts, newest first. The CanView gate
// happens in the service layer.
func (s *SQLiteStore) GroupPosts(ctx context.Context, viewerID, groupID string, page storage.Page) ([]models.Post, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		postSelect+` WHERE p.group_id = ?
		ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		viewerID, groupID, page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query group posts: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows, page.Limit())
}

const commentSelect = `
SELECT c.id, c.user_id, c.post_id, c.content, c.created_at,
	u.username, u.name, u.surname, u.image,
	(SELECT COUNT(*) FROM likes l WHERE l.comment_id = c.id),
	EXISTS (SELECT 1 FROM likes l WHERE l.comment_id = c.id AND l.user_id = ?)
FROM comments c
JOIN users u ON u.id = c.user_id`

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var createdAt int64
	err := row.Scan(
		&c.ID, &c.UserID, &c.PostID, &c.Content, &createdAt,
		&c.AuthorUsername, &c.AuthorName, &c.AuthorSurname, &c.AuthorImage,
		&c.LikeCount, &c.IsLiked,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}

// CreateComment persists a comment and stages a POST_COMMENT notification
// for the post author.
func (s *SQLiteStore) CreateComment(ctx context.Context, comment *models.Comment) (*models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var postAuthorID string
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM posts WHERE id = ?", comment.PostID).Scan(&postAuthorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if comment.ID == "" {
		comment.ID = newID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO comments (id, user_id, post_id, content, created_at) VALUES (?, ?, ?, ?, ?)",
		comment.ID, comment.UserID, comment.PostID, comment.Content, toMillis(comment.CreatedAt),
	); err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	var notification *models.Notification
	if postAuthorID != comment.UserID {
		notification = &models.Notification{
			RecipientID: postAuthorID,
			SenderID:    comment.UserID,
			Type:        models.NotifPostComment,
			PostID:      comment.PostID,
			CommentID:   comment.ID,
		}
		if err := createNotification(ctx, tx, notification); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return notification, nil
}

// GetComment retrieves a comment by ID. Viewer aggregates are not filled.
func (s *SQLiteStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+" WHERE c.id = ?", "", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment and its likes.
func (s *SQLiteStore) DeleteComment(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM likes WHERE comment_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete comment likes: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListComments returns a post's comments, oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, viewerID, postID string, page storage.Page) ([]models.Comment, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		commentSelect+` WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.id LIMIT ? OFFSET ?`,
		viewerID, postID, page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate comments: %w", err)
	}
	hasNext := len(comments) > page.Limit()
	if hasNext {
		comments = comments[:page.Limit()]
	}
	return comments, hasNext, nil
}

// ToggleLikePost likes or unlikes a post for the user.
func (s *SQLiteStore) ToggleLikePost(ctx context.Context, userID, postID string) (storage.LikeResult, *models.Notification, error) {
	return s.toggleLike(ctx, userID, postID, "")
}

// ToggleLikeComment likes or unlikes a comment for the user.
func (s *SQLiteStore) ToggleLikeComment(ctx context.Context, userID, commentID string) (storage.LikeResult, *models.Notification, error) {
	return s.toggleLike(ctx, userID, "", commentID)
}

// toggleLike runs the like/unlike toggle as one transaction. Exactly one of
// postID or commentID is set.
func (s *SQLiteStore) toggleLike(ctx context.Context, userID, postID, commentID string) (storage.LikeResult, *models.Notification, error) {
	var res storage.LikeResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Resolve the liked entity and its author; the notification references
	// both the comment (when present) and its post.
	var targetCol, targetID, authorID, notifPostID string
	var notifType models.NotificationType
	if postID != "" {
		targetCol, targetID = "post_id", postID
		notifType = models.NotifPostLike
		notifPostID = postID
		err = tx.QueryRowContext(ctx, "SELECT user_id FROM posts WHERE id = ?", postID).Scan(&authorID)
	} else {
		targetCol, targetID = "comment_id", commentID
		notifType = models.NotifCommentLike
		err = tx.QueryRowContext(ctx,
			"SELECT user_id, post_id FROM comments WHERE id = ?", commentID,
		).Scan(&authorID, &notifPostID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return res, nil, storage.ErrNotFound
	}
	if err != nil {
		return res, nil, fmt.Errorf("failed to get like target: %w", err)
	}

	var likeID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM likes WHERE user_id = ? AND "+targetCol+" = ?", userID, targetID,
	).Scan(&likeID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res.IsLiked = true
	case err != nil:
		return res, nil, fmt.Errorf("failed to check existing like: %w", err)
	}

	var notification *models.Notification
	if res.IsLiked {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO likes (id, user_id, "+targetCol+", created_at) VALUES (?, ?, ?, ?)",
			newID(), userID, targetID, toMillis(time.Now().UTC()),
		); err != nil {
			return res, nil, fmt.Errorf("failed to insert like: %w", err)
		}
		if authorID != userID {
			notification = &models.Notification{
				RecipientID: authorID,
				SenderID:    userID,
				Type:        notifType,
				PostID:      notifPostID,
				CommentID:   commentID,
			}
			if err := createNotification(ctx, tx, notification); err != nil {
				return res, nil, err
			}
		}
	} else {
		if _, err := tx.ExecContext(ctx, "DELETE FROM likes WHERE id = ?", likeID); err != nil {
			return res, nil, fmt.Errorf("failed to delete like: %w", err)
		}
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE "+targetCol+" = ?", targetID,
	).Scan(&res.Likes); err != nil {
		return res, nil, fmt.Errorf("failed to count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return res, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, notification, nil
}
