package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/middleware"
	"github.com/linkuphq/linkup/internal/storage"
)

func (s *Server) handleSendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	outcome, err := s.friends.SendRequest(r.Context(), middleware.GetUserID(r.Context()), req.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"auto_accepted": outcome == storage.OutcomeAutoAccepted,
	})
}

func (s *Server) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	err := s.friends.Accept(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	err := s.friends.Decline(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}

func (s *Server) handleUnfriend(w http.ResponseWriter, r *http.Request) {
	err := s.friends.Unfriend(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, hasNext, err := s.friends.Friends(r.Context(), middleware.GetUserID(r.Context()), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"friends":  newUserViews(friends),
		"has_next": hasNext,
	})
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requesters, err := s.friends.ReceivedRequests(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"requests": newUserViews(requesters)})
}
