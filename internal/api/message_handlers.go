package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/middleware"
)

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientID string `json:"recipient_id"`
		Content     string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	message, err := s.messages.Send(r.Context(),
		middleware.GetUserID(r.Context()), req.RecipientID, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, message.View())
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	messages, hasNext, hasUnread, err := s.messages.Conversation(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "userID"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"messages":   newMessageViews(messages),
		"has_next":   hasNext,
		"has_unread": hasUnread,
	})
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	messages, err := s.messages.Inbox(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"conversations": newMessageViews(messages)})
}

func (s *Server) handleHasUnread(w http.ResponseWriter, r *http.Request) {
	hasUnread, err := s.messages.HasUnread(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"has_unread": hasUnread})
}
