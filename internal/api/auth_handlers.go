package api

import (
	"net/http"
	"strings"

	"github.com/linkuphq/linkup/internal/middleware"
	"github.com/linkuphq/linkup/internal/service"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		respondError(w, service.ErrValidation)
		return
	}

	user, err := s.authenticator.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{Token: token, User: newUserView(user, true)})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: newUserView(user, true)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.authenticator.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _, err := s.users.Profile(r.Context(), "", middleware.GetUsername(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(user, true))
}
