package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkuphq/linkup/internal/middleware"
	"github.com/linkuphq/linkup/internal/models"
)

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		About string `json:"about"`
		Image string `json:"image"`
		Type  string `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	group, err := s.groups.Create(r.Context(),
		middleware.GetUserID(r.Context()), req.Name, req.About, req.Image, req.Type)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newGroupView(group, models.RoleOwner))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	mine := r.URL.Query().Get("mine") == "true"
	groups, hasNext, err := s.groups.List(r.Context(),
		middleware.GetUserID(r.Context()), r.URL.Query().Get("search"), mine, pageFromRequest(r))
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

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, role, err := s.groups.Get(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newGroupView(group, role))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		About string `json:"about"`
		Image string `json:"image"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	group, err := s.groups.Update(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"), req.Name, req.About, req.Image)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newGroupView(group, models.RoleNone))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groups.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGroupPosts(w http.ResponseWriter, r *http.Request) {
	posts, hasNext, err := s.feed.GroupPosts(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts":    newPostViews(posts),
		"has_next": hasNext,
	})
}

func (s *Server) handleGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, hasNext, err := s.groups.Members(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"members":  newUserViews(members),
		"has_next": hasNext,
	})
}

func (s *Server) handleGroupAdmins(w http.ResponseWriter, r *http.Request) {
	admins, hasNext, err := s.groups.Admins(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"), pageFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"admins":   newUserViews(admins),
		"has_next": hasNext,
	})
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groups.Join(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groups.Leave(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *Server) handleRemoveGroupUser(w http.ResponseWriter, r *http.Request) {
	err := s.groups.Remove(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	err := s.groups.Promote(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

func (s *Server) handleDemote(w http.ResponseWriter, r *http.Request) {
	err := s.groups.Demote(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "demoted"})
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	err := s.groups.Invite(r.Context(), middleware.GetUserID(r.Context()),
		chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "invited"})
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	err := s.groups.AcceptInvite(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (s *Server) handleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	err := s.groups.DeclineInvite(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}
