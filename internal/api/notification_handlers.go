package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/middleware"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, hasNext, err := s.notifications.List(r.Context(), userID, unreadOnly, pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": newNotificationViews(notifications),
		"has_next":      hasNext,
	})
}

// handleUnreadNotifications serves the capped dropdown preview of the
// newest unread notifications.
func (s *Server) handleUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.notifications.Unread(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": newNotificationViews(notifications),
	})
}

// handleNextNotification feeds the client's toast queue: the newest unread
// notification not already on screen, one at a time.
func (s *Server) handleNextNotification(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	excludeIDs := r.URL.Query()["exclude"]

	notification, err := s.notifications.Next(r.Context(), userID, excludeIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	if notification == nil {
		respondJSON(w, http.StatusOK, map[string]any{"notification": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"notification": notification.View()})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.notifications.MarkRead(r.Context(),
		chi.URLParam(r, "notificationID"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkAllRead(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
