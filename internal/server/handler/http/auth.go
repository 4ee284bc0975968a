// Package http provides the loopback JSON API over the local store: account
// registration and login, conversion history and the tutoring workflow.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/basetutor/internal/models"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, username, email, password string, role models.Role) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, bool, error)
	UserDetails(ctx context.Context, username string) (models.User, error)
}

// AuthHandler handles HTTP requests for accounts.
type AuthHandler struct {
	// AuthService performs the underlying account operations.
	AuthService AuthService
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ExistsResponse reports username and email availability independently.
type ExistsResponse struct {
	Username bool `json:"username"`
	Email    bool `json:"email"`
}

// Register creates an account and responds 201 with the user, 409 when the
// username or email is taken.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(r, &req, false) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Login verifies credentials and responds with the user, or 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(r, &req, false) || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Exists answers ?username=&email= with two independent booleans.
func (h *AuthHandler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userTaken, emailTaken, err := h.AuthService.UserExists(r.Context(), q.Get("username"), q.Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExistsResponse{Username: userTaken, Email: emailTaken})
}

// Details returns the stored profile of {username}.
func (h *AuthHandler) Details(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.UserDetails(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
