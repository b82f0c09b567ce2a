package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"pharmaevents/config"
	"pharmaevents/storage"
	"pharmaevents/user"
)

const (
	sessionName = "pharmaevents-session"
	userIDKey   = "user_id"
)

const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashWarning = "warning"
	flashDanger  = "danger"
)

var flashCategories = []string{flashSuccess, flashInfo, flashWarning, flashDanger}

type flash struct {
	Category string
	Message  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

func newSessionStore(cfg config.ServerConfig, logger *zap.Logger) (*sessions.CookieStore, error) {
	key := []byte(cfg.SessionSecret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate session key")
		}
		logger.Warn("no session secret configured; sessions will not survive a restart")
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   cfg.SecureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// session returns the request session. A cookie that no longer decodes (for
// example after a secret rotation) yields a fresh session.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			s.logger.Debug("discarding undecodable session cookie", zap.Error(err))
		} else {
			s.logger.Warn("load session", zap.Error(err))
		}
	}
	return sess
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		s.logger.Error("save session", zap.Error(err))
	}
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	sess := s.session(r)
	sess.AddFlash(message, category)
	s.saveSession(w, r, sess)
}

func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []flash {
	sess := s.session(r)
	var out []flash
	for _, category := range flashCategories {
		for _, value := range sess.Flashes(category) {
			if message, ok := value.(string); ok {
				out = append(out, flash{Category: category, Message: message})
			}
		}
	}
	if len(out) > 0 {
		s.saveSession(w, r, sess)
	}
	return out
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, category, message string) {
	s.addFlash(w, r, category, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, account user.User) {
	sess := s.session(r)
	sess.Values[userIDKey] = account.ID
	s.saveSession(w, r, sess)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	delete(sess.Values, userIDKey)
	s.saveSession(w, r, sess)
}

func currentUser(r *http.Request) (user.User, bool) {
	account, ok := r.Context().Value(currentUserKey).(user.User)
	return account, ok
}

// loadUser puts the signed-in account into the request context. Sessions that
// point at a deleted account are treated as signed out.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.session(r)
		id, ok := sess.Values[userIDKey].(int64)
		if !ok || id <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		account, err := s.store.GetUser(r.Context(), id)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				s.logger.Error("load session user", zap.Int64("user_id", id), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), currentUserKey, account)))
	})
}

func (s *Server) requireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if isAPIRequest(r) {
			writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		s.redirectWithFlash(w, r, "/login", flashInfo, "Please log in to access this page.")
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := currentUser(r)
		if ok && account.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		if isAPIRequest(r) {
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			writeJSONError(w, http.StatusForbidden, "This action requires administrator privileges")
			return
		}
		s.redirectWithFlash(w, r, "/dashboard", flashDanger, "Access denied. Admin privileges required.")
	})
}

func (s *Server) denyMedicalRep(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if account, ok := currentUser(r); ok && account.IsMedicalRep() {
			s.redirectWithFlash(w, r, "/dashboard", flashDanger, "Medical representatives do not have access to this feature")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
