package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pharmaevents/storage"
	"pharmaevents/user"
)

type loginPageView struct {
	layoutView
	Email string
}

const forgotPasswordHTML = `<p>Password reset functionality coming soon. Please contact administrator.</p><p><a href="/login">Back to Login</a></p>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.render(w, "login.html", loginPageView{layoutView: s.layout(w, r, "Login")})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := user.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || strings.TrimSpace(password) == "" {
		s.redirectWithFlash(w, r, "/login", flashDanger, "Please enter both email and password")
		return
	}

	account, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("login lookup", zap.String("email", email), zap.Error(err))
	}
	if err != nil || !user.CheckPassword(account.PasswordHash, password) {
		s.logger.Info("login failed", zap.String("email", email))
		s.redirectWithFlash(w, r, "/login", flashDanger, "Invalid email or password")
		return
	}

	s.signIn(w, r, account)
	s.logger.Info("login", zap.Int64("user_id", account.ID), zap.String("role", string(account.Role)))
	s.redirectWithFlash(w, r, "/dashboard", flashSuccess, "Login successful!")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.signOut(w, r)
	s.redirectWithFlash(w, r, "/login", flashInfo, "You have been logged out.")
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, forgotPasswordHTML)
}

func (s *Server) handleAPIAuthTest(w http.ResponseWriter, r *http.Request) {
	account, _ := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          account.Email,
		"role":          account.Role,
	})
}
