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

const groupColumns = "id, owner_id, image, name, about, group_type, created_at"

func scanGroup(row rowScanner) (*models.Group, error) {
	var g models.Group
	var groupType string
	var createdAt int64
	err := row.Scan(&g.ID, &g.OwnerID, &g.Image, &g.Name, &g.About, &groupType, &createdAt)
	if err != nil {
		return nil, err
	}
	parsed, err := models.ParseGroupType(groupType)
	if err != nil {
		return nil, err
	}
	g.Type = parsed
	g.CreatedAt = fromMillis(createdAt)
	return &g, nil
}

// CreateGroup persists a new group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if _, err := models.ParseGroupType(string(group.Type)); err != nil {
		return err
	}
	if group.ID == "" {
		group.ID = newID()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (id, owner_id, image, name, about, group_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.OwnerID, group.Image, group.Name, group.About,
		string(group.Type), toMillis(group.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := scanGroup(s.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// UpdateGroup persists changed group fields. The owner column is left
// untouched: ownership is immutable after creation.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	if _, err := models.ParseGroupType(string(group.Type)); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET image = ?, name = ?, about = ?, group_type = ? WHERE id = ?",
		group.Image, group.Name, group.About, string(group.Type), group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteGroup removes a group. Posts, memberships, and invitations go with
// it through the schema cascades; comment and like rows cascade from posts.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func groupRole(ctx context.Context, tx dbtx, groupID, userID string) (models.GroupRole, error) {
	var owner, admin, member bool
	err := tx.QueryRowContext(ctx,
		`SELECT
			EXISTS (SELECT 1 FROM groups WHERE id = ? AND owner_id = ?),
			EXISTS (SELECT 1 FROM group_admins WHERE group_id = ? AND user_id = ?),
			EXISTS (SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)`,
		groupID, userID, groupID, userID, groupID, userID,
	).Scan(&owner, &admin, &member)
	if err != nil {
		return models.RoleNone, fmt.Errorf("failed to resolve group role: %w", err)
	}
	switch {
	case owner:
		return models.RoleOwner, nil
	case admin:
		return models.RoleAdmin, nil
	case member:
		return models.RoleMember, nil
	}
	return models.RoleNone, nil
}

// GroupRole reports the role of a user within a group.
func (s *SQLiteStore) GroupRole(ctx context.Context, groupID, userID string) (models.GroupRole, error) {
	return groupRole(ctx, s.db, groupID, userID)
}

// ListGroups returns groups ordered by creation time descending.
func (s *SQLiteStore) ListGroups(ctx context.Context, search, memberID string, page storage.Page) ([]models.Group, bool, error) {
	query := "SELECT " + groupColumns + " FROM groups WHERE 1 = 1"
	args := []any{}
	if search != "" {
		query += " AND instr(lower(name), lower(?)) > 0"
		args = append(args, search)
	}
	if memberID != "" {
		query += ` AND (owner_id = ?
			OR id IN (SELECT group_id FROM group_admins WHERE user_id = ?)
			OR id IN (SELECT group_id FROM group_members WHERE user_id = ?))`
		args = append(args, memberID, memberID, memberID)
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, page.Limit()+1, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, *group)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate groups: %w", err)
	}
	hasNext := len(groups) > page.Limit()
	if hasNext {
		groups = groups[:page.Limit()]
	}
	return groups, hasNext, nil
}

func (s *SQLiteStore) listGroupUsers(ctx context.Context, table, groupID string, page storage.Page) ([]models.User, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE id IN (SELECT user_id FROM `+table+` WHERE group_id = ?)
		 ORDER BY name, surname, username LIMIT ? OFFSET ?`,
		groupID, page.Limit()+1, page.Offset(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list group users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows, page.Limit())
}

// ListGroupMembers returns the member set.
func (s *SQLiteStore) ListGroupMembers(ctx context.Context, groupID string, page storage.Page) ([]models.User, bool, error) {
	return s.listGroupUsers(ctx, "group_members", groupID, page)
}

// ListGroupAdmins returns the admin set.
func (s *SQLiteStore) ListGroupAdmins(ctx context.Context, groupID string, page storage.Page) ([]models.User, bool, error) {
	return s.listGroupUsers(ctx, "group_admins", groupID, page)
}

// AddGroupMember adds a user to the member set.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	role, err := groupRole(ctx, tx, groupID, userID)
	if err != nil {
		return err
	}
	if role != models.RoleNone {
		return storage.ErrAlreadyMember
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)",
		groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveGroupUser drops a user from the admin and member sets. Idempotent.
func (s *SQLiteStore) RemoveGroupUser(ctx context.Context, groupID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_admins WHERE group_id = ? AND user_id = ?", groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to remove group admin: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	); err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// PromoteMember moves target from the member set to the admin set.
func (s *SQLiteStore) PromoteMember(ctx context.Context, groupID, actorID, targetID string) (*models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	actorRole, err := groupRole(ctx, tx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleOwner {
		return nil, storage.ErrForbidden
	}

	targetRole, err := groupRole(ctx, tx, groupID, targetID)
	if err != nil {
		return nil, err
	}
	if targetRole == models.RoleAdmin {
		return nil, storage.ErrAlreadyAdmin
	}
	if targetRole != models.RoleMember {
		return nil, storage.ErrNotMember
	}

	// Move, never copy: the role sets stay disjoint.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, targetID,
	); err != nil {
		return nil, fmt.Errorf("failed to remove member row: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO group_admins (group_id, user_id) VALUES (?, ?)", groupID, targetID,
	); err != nil {
		return nil, fmt.Errorf("failed to insert admin row: %w", err)
	}

	notification := &models.Notification{
		RecipientID: targetID,
		SenderID:    actorID,
		Type:        models.NotifAdminPromotion,
	}
	if err := createNotification(ctx, tx, notification); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return notification, nil
}

// DemoteAdmin moves target from the admin set back to the member set.
func (s *SQLiteStore) DemoteAdmin(ctx context.Context, groupID, actorID, targetID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	actorRole, err := groupRole(ctx, tx, groupID, actorID)
	if err != nil {
		return err
	}
	if actorRole != models.RoleOwner {
		return storage.ErrForbidden
	}

	targetRole, err := groupRole(ctx, tx, groupID, targetID)
	if err != nil {
		return err
	}
	if targetRole != models.RoleAdmin {
		return storage.ErrNotAdmin
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM group_admins WHERE group_id = ? AND user_id = ?", groupID, targetID,
	); err != nil {
		return fmt.Errorf("failed to remove admin row: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)", groupID, targetID,
	); err != nil {
		return fmt.Errorf("failed to insert member row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateInvitation records an invite and stages a GROUP_INVITE notification.
func (s *SQLiteStore) CreateInvitation(ctx context.Context, groupID, inviterID, inviteeID string) (*models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	role, err := groupRole(ctx, tx, groupID, inviteeID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleNone {
		return nil, storage.ErrAlreadyMember
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM invitations WHERE group_id = ? AND invitee_id = ?)",
		groupID, inviteeID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check invitation: %w", err)
	}
	if exists {
		return nil, storage.ErrDuplicateInvitation
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO invitations (id, group_id, inviter_id, invitee_id, created_at) VALUES (?, ?, ?, ?, ?)",
		newID(), groupID, inviterID, inviteeID, toMillis(time.Now().UTC()),
	); err != nil {
		return nil, fmt.Errorf("failed to insert invitation: %w", err)
	}

	notification := &models.Notification{
		RecipientID: inviteeID,
		SenderID:    inviterID,
		Type:        models.NotifGroupInvite,
	}
	if err := createNotification(ctx, tx, notification); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return notification, nil
}

// AcceptInvitation consumes the invitation and adds the invitee as a member.
func (s *SQLiteStore) AcceptInvitation(ctx context.Context, groupID, inviteeID string) (*models.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inviterID string
	err = tx.QueryRowContext(ctx,
		"SELECT inviter_id FROM invitations WHERE group_id = ? AND invitee_id = ?",
		groupID, inviteeID,
	).Scan(&inviterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM invitations WHERE group_id = ? AND invitee_id = ?", groupID, inviteeID,
	); err != nil {
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}

	role, err := groupRole(ctx, tx, groupID, inviteeID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleNone {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id) VALUES (?, ?)", groupID, inviteeID,
		); err != nil {
			return nil, fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	notification := &models.Notification{
		RecipientID: inviterID,
		SenderID:    inviteeID,
		Type:        models.NotifInviteAccepted,
	}
	if err := createNotification(ctx, tx, notification); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return notification, nil
}

// DeclineInvitation consumes the invitation without joining.
func (s *SQLiteStore) DeclineInvitation(ctx context.Context, groupID, inviteeID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM invitations WHERE group_id = ? AND invitee_id = ?", groupID, inviteeID,
	)
	if err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check decline result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
