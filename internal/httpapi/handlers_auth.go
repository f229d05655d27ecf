package httpapi

import (
	"net/http"

	"task-manager/internal/domain"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[registerRequest](w, r, s.cfg.MaxBodyBytes)
	if !ok {
		return
	}

	user, err := s.api.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleLogin issues a session token. Later requests present it as a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[loginRequest](w, r, s.cfg.MaxBodyBytes)
	if !ok {
		return
	}

	user, token, err := s.api.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	s.tokens.Set(token, *user, s.sessionTTL)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := tokenFromContext(r.Context())
	if err := s.api.Logout(r.Context(), token); err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	s.tokens.Delete(token)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.api.CurrentUser(r.Context())
	if err != nil {
		writeDomainError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
