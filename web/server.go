// Package web serves the event management UI and its JSON API.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"pharmaevents/config"
	"pharmaevents/event"
	"pharmaevents/internal/classify"
	"pharmaevents/internal/timeutil"
	"pharmaevents/storage"
	"pharmaevents/user"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	store    *storage.Store
	cfg      config.Config
	logger   *zap.Logger
	sessions *sessions.CookieStore
	validate *validator.Validate
	router   chi.Router

	now      func() time.Time
	location *time.Location
	hash     func(string) (string, error)
}

type Option func(*Server)

// WithClock replaces the clock used for dashboard classification.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithPasswordHasher replaces bcrypt hashing for created and imported users.
func WithPasswordHasher(hash func(string) (string, error)) Option {
	return func(s *Server) {
		s.hash = hash
	}
}

func NewServer(store *storage.Store, cfg config.Config, logger *zap.Logger, opts ...Option) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessionStore, err := newSessionStore(cfg.Server, logger)
	if err != nil {
		return nil, err
	}

	server := &Server{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		sessions: sessionStore,
		validate: validator.New(),
		now:      time.Now,
		location: time.Local,
		hash:     user.HashPassword,
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(server.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(server.loadUser)

	r.Get("/healthz", server.handleHealth)
	r.Get("/", server.handleIndex)
	r.Get("/login", server.handleLoginPage)
	r.With(server.loginLimiter()).Post("/login", server.handleLogin)
	r.Get("/forgot_password", server.handleForgotPassword)

	r.Group(func(r chi.Router) {
		r.Use(server.requireSignedIn)

		r.Get("/logout", server.handleLogout)
		r.Get("/dashboard", server.handleDashboard)
		r.Get("/events", server.handleEvents)
		r.Get("/event_details/{id}", server.handleEventDetails)
		r.Get("/create_event", server.handleCreateEventPage)
		r.Post("/create_event", server.handleCreateEvent)
		r.Get("/edit_event/{id}", server.handleEditEventPage)
		r.Post("/edit_event/{id}", server.handleEditEvent)
		r.Get("/uploads/*", server.handleUploadedFile)

		r.Group(func(r chi.Router) {
			r.Use(server.denyMedicalRep)
			r.Get("/export_events", server.handleExportEvents)
			r.Get("/settings", server.handleSettings)
		})

		r.Group(func(r chi.Router) {
			r.Use(server.requireAdmin)
			r.Get("/approve_event/{id}", server.handleApproveEvent)
			r.Get("/reject_event/{id}", server.handleRejectEvent)
			r.Post("/delete_event/{id}", server.handleDeleteEvent)
			r.Get("/bulk-user-upload", server.handleBulkUploadPage)
			r.Post("/bulk-user-upload", server.handleBulkUpload)
		})
	})

	r.Route("/api", func(r chi.Router) {
		if len(cfg.Server.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   cfg.Server.CORSOrigins,
				AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Use(server.requireSignedIn)

		r.Get("/auth/test", server.handleAPIAuthTest)
		r.Get("/download/users-template", server.handleUsersTemplate)
		r.Get("/download/attendees-template", server.handleAttendeesTemplate)
		r.Get("/dashboard/stats", server.handleAPIDashboardStats)
		r.Get("/dashboard/categories", server.handleAPIDashboardCategories)
		r.Get("/dashboard/monthly", server.handleAPIDashboardMonthly)
		r.Get("/dashboard/event-types", server.handleAPIDashboardEventTypes)
		r.Get("/dashboard/requesters", server.handleAPIDashboardRequesters)

		r.Group(func(r chi.Router) {
			r.Use(server.requireAdmin)
			r.Post("/settings/theme", server.handleAPIUpdateTheme)
			r.Post("/settings/app", server.handleAPIUpdateApp)
			r.Post("/settings/logo", server.handleAPIUploadLogo)
			r.Post("/categories", server.handleAPIAddCategory)
			r.Delete("/categories/{id}", server.handleAPIDeleteCategory)
			r.Post("/event-types", server.handleAPIAddEventType)
			r.Delete("/event-types/{id}", server.handleAPIDeleteEventType)
			r.Post("/users", server.handleAPIAddUser)
			r.Delete("/users/{id}", server.handleAPIDeleteUser)
		})
	})

	server.router = r
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) loginLimiter() func(http.Handler) http.Handler {
	if s.cfg.Server.LoginRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(s.cfg.Server.LoginRateLimit, time.Minute)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// layoutView carries what base.html needs on every page.
type layoutView struct {
	Title      string
	AppName    string
	ThemeColor string
	Logo       string
	User       *user.User
	Flashes    []flash
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request, title string) layoutView {
	view := layoutView{
		Title:      title,
		AppName:    s.cfg.App.Name,
		ThemeColor: s.cfg.App.ThemeColor,
		Flashes:    s.popFlashes(w, r),
	}
	if current, ok := currentUser(r); ok {
		view.User = &current
	}

	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.logger.Warn("load app settings", zap.Error(err))
		return view
	}
	if name := settings[storage.SettingAppName]; name != "" {
		view.AppName = name
	}
	if color := settings[storage.SettingThemeColor]; color != "" {
		view.ThemeColor = color
	}
	view.Logo = settings[storage.SettingAppLogo]
	return view
}

func (s *Server) render(w http.ResponseWriter, pageTemplate string, data any) {
	s.renderStatus(w, http.StatusOK, pageTemplate, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, status int, pageTemplate string, data any) {
	var page bytes.Buffer
	if err := renderTemplate(&page, pageTemplate, data, s.now()); err != nil {
		s.logger.Error("render page", zap.String("template", pageTemplate), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}

func renderTemplate(w io.Writer, pageTemplate string, data any, now time.Time) error {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"fmtTime": func(value time.Time) string {
			return timeutil.FormatOrEmpty(value.Local(), timeutil.DisplayLayout)
		},
		"formDate": func(value time.Time) string {
			return timeutil.FormatOrEmpty(value.Local(), timeutil.FormDateLayout)
		},
		"formTime": func(value time.Time) string {
			return timeutil.FormatOrEmpty(value.Local(), timeutil.FormTimeLayout)
		},
		"phase": func(e event.Event) string {
			return string(classify.PhaseOf(e, now))
		},
		"safeHTML": func(value string) template.HTML {
			// descriptions are sanitized before they are stored
			return template.HTML(value)
		},
		"uploadURL": uploadURL,
		"hasCategory": func(e event.Event, id int64) bool {
			for _, category := range e.Categories {
				if category.ID == id {
					return true
				}
			}
			return false
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func parsePositiveInt64(value string) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("value must be > 0")
	}
	return parsed, nil
}

func pathID(r *http.Request) (int64, error) {
	return parsePositiveInt64(chi.URLParam(r, "id"))
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func tempUploadPattern(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return "upload-*"
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem = "upload"
	}
	if ext == "" {
		return stem + "-*"
	}
	return stem + "-*" + ext
}
