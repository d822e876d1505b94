package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/rest/respond"
	"github.com/dmitrijs2005/taxportal/internal/server/validate"
)

// login POST /api/login
func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, user, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

// me GET /api/me
func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, s.svc.Auth.Me(sessionFrom(r.Context())))
}

// logout POST /api/logout
func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Auth.Logout(r.Context(), sessionFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}
