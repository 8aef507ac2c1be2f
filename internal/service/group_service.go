package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/storage"
)

// GroupService manages groups, their membership roles, and invitations.
type GroupService struct {
	store         storage.Store
	notifications *NotificationService
}

// NewGroupService creates a new GroupService.
func NewGroupService(store storage.Store, notifications *NotificationService) *GroupService {
	return &GroupService{store: store, notifications: notifications}
}

// Create makes a new group owned by ownerID.
func (s *GroupService) Create(ctx context.Context, ownerID, name, about, image, groupType string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("group name is required")
	}
	gt, err := models.ParseGroupType(groupType)
	if err != nil {
		return nil, validationf("%v", err)
	}

	group := &models.Group{
		OwnerID: ownerID,
		Name:    name,
		About:   about,
		Image:   image,
		Type:    gt,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "owner_id", ownerID, "type", gt)
	return group, nil
}

// Get retrieves a group. Private groups are only returned to users holding
// a role in them.
func (s *GroupService) Get(ctx context.Context, viewerID, groupID string) (*models.Group, models.GroupRole, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, models.RoleNone, err
	}
	role, err := s.store.GroupRole(ctx, groupID, viewerID)
	if err != nil {
		return nil, models.RoleNone, err
	}
	if !models.CanView(group.Type, role) {
		return nil, models.RoleNone, storage.ErrForbidden
	}
	return group, role, nil
}

// Update changes a group's mutable fields. Owner and admins only. The
// owner never changes.
func (s *GroupService) Update(ctx context.Context, actorID, groupID, name, about, image string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	role, err := s.store.GroupRole(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleOwner && role != models.RoleAdmin {
		return nil, storage.ErrForbidden
	}

	if name = strings.TrimSpace(name); name != "" {
		group.Name = name
	}
	group.About = about
	if image != "" {
		group.Image = image
	}
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a group and everything in it. Owner only.
func (s *GroupService) Delete(ctx context.Context, actorID, groupID string) error {
	role, err := s.store.GroupRole(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return storage.ErrForbidden
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID, "owner_id", actorID)
	return nil
}

// List returns groups matching the search term. When mine is set, only
// groups the viewer belongs to.
func (s *GroupService) List(ctx context.Context, viewerID, search string, mine bool, page storage.Page) ([]models.Group, bool, error) {
	memberID := ""
	if mine {
		memberID = viewerID
	}
	return s.store.ListGroups(ctx, search, memberID, page)
}

// Members and Admins list the group's role sets, gated on visibility.
func (s *GroupService) Members(ctx context.Context, viewerID, groupID string, page storage.Page) ([]models.User, bool, error) {
	if _, _, err := s.Get(ctx, viewerID, groupID); err != nil {
		return nil, false, err
	}
	return s.store.ListGroupMembers(ctx, groupID, page)
}

func (s *GroupService) Admins(ctx context.Context, viewerID, groupID string, page storage.Page) ([]models.User, bool, error) {
	if _, _, err := s.Get(ctx, viewerID, groupID); err != nil {
		return nil, false, err
	}
	return s.store.ListGroupAdmins(ctx, groupID, page)
}

// Join adds the user to a public group. Private groups are joined through
// invitations only.
func (s *GroupService) Join(ctx context.Context, userID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Type != models.GroupPublic {
		return storage.ErrForbidden
	}
	if err := s.store.AddGroupMember(ctx, groupID, userID); err != nil {
		return err
	}
	slog.Info("user joined group", "group_id", groupID, "user_id", userID)
	return nil
}

// Leave removes the user from the group. The owner cannot leave.
func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	role, err := s.store.GroupRole(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if role == models.RoleOwner {
		return validationf("the owner cannot leave the group")
	}
	if role == models.RoleNone {
		return storage.ErrNotMember
	}
	return s.store.RemoveGroupUser(ctx, groupID, userID)
}

// Remove kicks a target out of the group, subject to the role hierarchy.
func (s *GroupService) Remove(ctx context.Context, actorID, groupID, targetID string) error {
	actorRole, err := s.store.GroupRole(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	targetRole, err := s.store.GroupRole(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if targetRole == models.RoleNone {
		return storage.ErrNotMember
	}
	if !models.CanRemove(actorRole, targetRole) {
		return storage.ErrForbidden
	}
	if err := s.store.RemoveGroupUser(ctx, groupID, targetID); err != nil {
		return err
	}
	slog.Info("user removed from group",
		"group_id", groupID, "actor_id", actorID, "target_id", targetID)
	return nil
}

// Promote moves a member into the admin set. Owner only.
func (s *GroupService) Promote(ctx context.Context, actorID, groupID, targetID string) error {
	notification, err := s.store.PromoteMember(ctx, groupID, actorID, targetID)
	if err != nil {
		return err
	}
	s.notifications.Emit(notification)

	slog.Info("member promoted", "group_id", groupID, "target_id", targetID)
	return nil
}

// Demote moves an admin back into the member set. Owner only.
func (s *GroupService) Demote(ctx context.Context, actorID, groupID, targetID string) error {
	return s.store.DemoteAdmin(ctx, groupID, actorID, targetID)
}

// Invite records an invitation of inviteeID into the group. Any role
// holder may invite.
func (s *GroupService) Invite(ctx context.Context, inviterID, groupID, inviteeID string) error {
	role, err := s.store.GroupRole(ctx, groupID, inviterID)
	if err != nil {
		return err
	}
	if role == models.RoleNone {
		return storage.ErrForbidden
	}
	if _, err := s.store.GetUserByID(ctx, inviteeID); err != nil {
		return err
	}

	notification, err := s.store.CreateInvitation(ctx, groupID, inviterID, inviteeID)
	if err != nil {
		return err
	}
	s.notifications.Emit(notification)

	slog.Info("invitation sent",
		"group_id", groupID, "inviter_id", inviterID, "invitee_id", inviteeID)
	return nil
}

// AcceptInvite consumes the invitation and joins the group.
func (s *GroupService) AcceptInvite(ctx context.Context, userID, groupID string) error {
	notification, err := s.store.AcceptInvitation(ctx, groupID, userID)
	if err != nil {
		return err
	}
	s.notifications.Emit(notification)

	slog.Info("invitation accepted", "group_id", groupID, "user_id", userID)
	return nil
}

// DeclineInvite consumes the invitation without joining.
func (s *GroupService) DeclineInvite(ctx context.Context, userID, groupID string) error {
	return s.store.DeclineInvitation(ctx, groupID, userID)
}
