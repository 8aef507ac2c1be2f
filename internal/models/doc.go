// Package models defines the core domain models for Linkup.
//
// # Models
//
//   - User: account, profile fields, privacy flag
//   - Group: owner/admin/member community with PRIVATE or PUBLIC visibility
//   - Invitation: outstanding group invite (one per group/invitee)
//   - Post: feed or group post, optionally a reshare of a parent post
//   - Comment, Like: attached to posts (Like also to comments, exactly one)
//   - Message: direct message between two users
//   - Notification: durable record of a social event, typed by NotificationType
//
// # Design Principles
//
//  1. Plain structs with ID string references instead of object pointers;
//     relationship traversal happens through explicit storage queries.
//  2. Enum-like kinds (NotificationType, GroupType, GroupRole) are closed
//     string types validated at creation and serialization sites.
//  3. Wire views (NotificationView, MessageView) are built here so every
//     transport serializes the same shape.
package models
