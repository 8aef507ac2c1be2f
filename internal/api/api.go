// Package api exposes the HTTP surface: a JSON REST API under /api, the
// websocket endpoint, and the Prometheus metrics endpoint.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/auth"
	"github.com/linkuphq/linkup/internal/metrics"
	"github.com/linkuphq/linkup/internal/middleware"
	"github.com/linkuphq/linkup/internal/realtime"
	"github.com/linkuphq/linkup/internal/service"
	"github.com/linkuphq/linkup/internal/storage"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         *service.UserService
	friends       *service.FriendService
	groups        *service.GroupService
	feed          *service.FeedService
	messages      *service.MessageService
	notifications *service.NotificationService
	gateway       *realtime.Gateway
}

// NewServer creates a Server from its dependencies.
func NewServer(
	authenticator auth.Authenticator,
	jwtManager *auth.JWTManager,
	users *service.UserService,
	friends *service.FriendService,
	groups *service.GroupService,
	feed *service.FeedService,
	messages *service.MessageService,
	notifications *service.NotificationService,
	gateway *realtime.Gateway,
) *Server {
	return &Server{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		friends:       friends,
		groups:        groups,
		feed:          feed,
		messages:      messages,
		notifications: notifications,
		gateway:       gateway,
	}
}

// Router builds the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(middleware.RequestLogging)

	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.jwtManager))

			r.Get("/auth/me", s.handleMe)

			r.Get("/users", s.handleSearchUsers)
			r.Get("/users/{username}", s.handleGetProfile)
			r.Get("/users/{username}/posts", s.handleUserPosts)
			r.Get("/users/{username}/friends", s.handleProfileFriends)
			r.Get("/users/{username}/groups", s.handleProfileGroups)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/profile/password", s.handleChangePassword)
			r.Delete("/profile", s.handleDeleteAccount)

			r.Get("/friends", s.handleListFriends)
			r.Delete("/friends/{userID}", s.handleUnfriend)
			r.Get("/friends/requests", s.handleListRequests)
			r.Post("/friends/requests", s.handleSendRequest)
			r.Post("/friends/requests/{userID}/accept", s.handleAcceptRequest)
			r.Post("/friends/requests/{userID}/decline", s.handleDeclineRequest)

			r.Get("/feed", s.handleCommunityFeed)
			r.Get("/feed/friends", s.handleFriendsFeed)

			r.Post("/posts", s.handleCreatePost)
			r.Get("/posts/{postID}", s.handleGetPost)
			r.Delete("/posts/{postID}", s.handleDeletePost)
			r.Post("/posts/{postID}/share", s.handleReshare)
			r.Post("/posts/{postID}/like", s.handleLikePost)
			r.Get("/posts/{postID}/comments", s.handleListComments)
			r.Post("/posts/{postID}/comments", s.handleCreateComment)
			r.Delete("/comments/{commentID}", s.handleDeleteComment)
			r.Post("/comments/{commentID}/like", s.handleLikeComment)

			r.Post("/groups", s.handleCreateGroup)
			r.Get("/groups", s.handleListGroups)
			r.Get("/groups/{groupID}", s.handleGetGroup)
			r.Put("/groups/{groupID}", s.handleUpdateGroup)
			r.Delete("/groups/{groupID}", s.handleDeleteGroup)
			r.Get("/groups/{groupID}/posts", s.handleGroupPosts)
			r.Get("/groups/{groupID}/members", s.handleGroupMembers)
			r.Get("/groups/{groupID}/admins", s.handleGroupAdmins)
			r.Post("/groups/{groupID}/join", s.handleJoinGroup)
			r.Post("/groups/{groupID}/leave", s.handleLeaveGroup)
			r.Delete("/groups/{groupID}/members/{userID}", s.handleRemoveGroupUser)
			r.Post("/groups/{groupID}/members/{userID}/promote", s.handlePromote)
			r.Post("/groups/{groupID}/members/{userID}/demote", s.handleDemote)
			r.Post("/groups/{groupID}/invitations", s.handleInvite)
			r.Post("/groups/{groupID}/invitations/accept", s.handleAcceptInvite)
			r.Post("/groups/{groupID}/invitations/decline", s.handleDeclineInvite)

			r.Get("/messages", s.handleInbox)
			r.Get("/messages/unread", s.handleHasUnread)
			r.Get("/messages/{userID}", s.handleConversation)
			r.Post("/messages", s.handleSendMessage)

			r.Get("/notifications", s.handleListNotifications)
			r.Get("/notifications/unread", s.handleUnreadNotifications)
			r.Get("/notifications/next", s.handleNextNotification)
			r.Post("/notifications/{notificationID}/read", s.handleMarkNotificationRead)
			r.Post("/notifications/read-all", s.handleMarkAllNotificationsRead)

			r.Get("/ws", s.gateway.ServeHTTP)
		})
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondError maps domain errors to HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrAlreadyFriends),
		errors.Is(err, storage.ErrRequestAlreadySent),
		errors.Is(err, storage.ErrAlreadyMember),
		errors.Is(err, storage.ErrAlreadyAdmin),
		errors.Is(err, storage.ErrDuplicateInvitation):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrNotFriends),
		errors.Is(err, storage.ErrNotMember),
		errors.Is(err, storage.ErrNotAdmin),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, auth.ErrUsernameExists):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		respondJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.ErrValidation
	}
	return nil
}

// pageFromRequest reads page and size query parameters.
func pageFromRequest(r *http.Request) storage.Page {
	var page storage.Page
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Number = n
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		page.Size = size
	}
	return page
}
