package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/middleware"
)

func (s *Server) handleCommunityFeed(w http.ResponseWriter, r *http.Request) {
	posts, hasNext, err := s.feed.Community(r.Context(),
		middleware.GetUserID(r.Context()), r.URL.Query().Get("tag"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts":    newPostViews(posts),
		"has_next": hasNext,
	})
}

func (s *Server) handleFriendsFeed(w http.ResponseWriter, r *http.Request) {
	posts, hasNext, err := s.feed.Friends(r.Context(), middleware.GetUserID(r.Context()), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts":    newPostViews(posts),
		"has_next": hasNext,
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		GroupID string `json:"group_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	post, err := s.feed.CreatePost(r.Context(), middleware.GetUserID(r.Context()), req.GroupID, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newPostView(post))
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.feed.GetPost(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newPostView(post))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	err := s.feed.DeletePost(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReshare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	post, err := s.feed.Reshare(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "postID"), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newPostView(post))
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	result, err := s.feed.LikePost(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"likes":    result.Likes,
		"is_liked": result.IsLiked,
	})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, hasNext, err := s.feed.Comments(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "postID"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"comments": newCommentViews(comments),
		"has_next": hasNext,
	})
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	comment, err := s.feed.Comment(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "postID"), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCommentView(comment))
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.feed.DeleteComment(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleLikeComment(w http.ResponseWriter, r *http.Request) {
	result, err := s.feed.LikeComment(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "commentID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"likes":    result.Likes,
		"is_liked": result.IsLiked,
	})
}
