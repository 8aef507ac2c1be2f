package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/middleware"
	"github.com/linkuphq/linkup/internal/models"
	"github.com/linkuphq/linkup/internal/service"
)

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users, hasNext, err := s.users.Search(r.Context(), r.URL.Query().Get("search"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"users":    newUserViews(users),
		"has_next": hasNext,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	user, isFriend, err := s.users.Profile(r.Context(), viewerID, chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user":      newUserView(user, user.ID == viewerID),
		"is_friend": isFriend,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Surname   string `json:"surname"`
		Location  string `json:"location"`
		About     string `json:"about"`
		WorkingOn string `json:"working_on"`
		Interests string `json:"interests"`
		Links     string `json:"links"`
		Image     string `json:"image"`
		IsPrivate bool   `json:"is_private"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), service.ProfileUpdate{
		Name:      req.Name,
		Surname:   req.Surname,
		Location:  req.Location,
		About:     req.About,
		WorkingOn: req.WorkingOn,
		Interests: req.Interests,
		Links:     req.Links,
		Image:     req.Image,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(user, true))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleProfileFriends(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	friends, hasNext, err := s.users.ProfileFriends(r.Context(), viewerID, chi.URLParam(r, "username"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"friends":  newUserViews(friends),
		"has_next": hasNext,
	})
}

func (s *Server) handleProfileGroups(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	groups, hasNext, err := s.users.ProfileGroups(r.Context(), viewerID, chi.URLParam(r, "username"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	views := make([]groupView, 0, len(groups))
	for i := range groups {
		views = append(views, newGroupView(&groups[i], models.RoleNone))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"groups":   views,
		"has_next": hasNext,
	})
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	user, _, err := s.users.Profile(r.Context(), viewerID, chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, err)
		return
	}
	posts, hasNext, err := s.feed.UserPosts(r.Context(), viewerID, user.ID, pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts":    newPostViews(posts),
		"has_next": hasNext,
	})
}
