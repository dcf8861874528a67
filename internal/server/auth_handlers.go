package server

import (
	"encoding/json"
	"net/http"

	"gatehouse/internal/auth"
	"gatehouse/internal/constants"
	"gatehouse/internal/services"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Success bool       `json:"success"`
	User    *auth.User `json:"user"`
	Token   string     `json:"token"`
}

// handleSignup creates a new account and starts a session.
// POST /api/users/signup
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleServiceError(w, services.ErrInvalidRequest)
		return
	}

	user, credential, err := s.app.UserService.Register(req.Email, req.Name, req.Password)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.setSessionCookie(w, credential)
	WriteJSON(w, http.StatusCreated, sessionResponse{Success: true, User: user, Token: credential})
}

// handleLogin verifies credentials and starts a session.
// POST /api/users/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleServiceError(w, services.ErrInvalidRequest)
		return
	}

	user, credential, err := s.app.UserService.Login(req.Email, req.Password)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	s.setSessionCookie(w, credential)
	WriteSuccess(w, sessionResponse{Success: true, User: user, Token: credential})
}

// handleLogout clears the session cookie.
// POST /api/users/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}

	s.clearSessionCookie(w)
	WriteSuccess(w, map[string]interface{}{"success": true})
}

// handleMe returns the authenticated account.
// GET /api/users/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed", constants.ErrCodeInvalidRequest)
		return
	}

	principal := auth.GetPrincipal(r)
	if err := s.app.Guard.RequireAuthenticated(principal); err != nil {
		s.handleServiceError(w, services.ErrAuthRequired)
		return
	}

	user, err := s.app.UserService.GetByID(principal.ID)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"success": true, "user": user})
}

// setSessionCookie stores the credential in the access cookie. The cookie
// mirrors the credential TTL and is HTTP-only; the Secure flag follows
// the environment.
func (s *Server) setSessionCookie(w http.ResponseWriter, credential string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    credential,
		Path:     "/",
		MaxAge:   int(s.app.Codec.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.app.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
