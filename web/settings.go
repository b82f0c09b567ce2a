package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"pharmaevents/event"
	"pharmaevents/importer"
	"pharmaevents/output"
	"pharmaevents/storage"
	"pharmaevents/user"
)

type settingsPageView struct {
	layoutView
	Categories []event.Category
	Types      []event.Type
	Users      []user.User
	Roles      []user.Role
}

type bulkUploadView struct {
	layoutView
	PasswordRequired bool
	DefaultPassword  string
}

type themeRequest struct {
	ThemeColor string `json:"theme_color" validate:"required,hexcolor"`
}

type appSettingsRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := settingsPageView{layoutView: s.layout(w, r, "Settings"), Roles: user.Roles()}

	var err error
	if view.Categories, err = s.store.ListCategories(ctx); err != nil {
		s.logger.Error("list categories", zap.Error(err))
	}
	if view.Types, err = s.store.ListEventTypes(ctx); err != nil {
		s.logger.Error("list event types", zap.Error(err))
	}
	if view.Users, err = s.store.ListUsers(ctx); err != nil {
		s.logger.Error("list users", zap.Error(err))
	}
	s.render(w, "settings.html", view)
}

func (s *Server) handleBulkUploadPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "bulk_user_upload.html", bulkUploadView{
		layoutView:       s.layout(w, r, "Bulk User Upload"),
		PasswordRequired: s.cfg.Import.PasswordRequired,
		DefaultPassword:  s.cfg.Import.DefaultPassword,
	})
}

func (s *Server) importOptions() importer.Options {
	opts := importer.DefaultOptions()
	opts.BatchSize = s.cfg.Import.BatchSize
	opts.PasswordRequired = s.cfg.Import.PasswordRequired
	opts.DefaultPassword = s.cfg.Import.DefaultPassword
	opts.MaxDisplayedErrors = s.cfg.Import.MaxDisplayedErrors
	opts.RoleAliases = s.cfg.Import.RoleAliasMap()
	opts.Hash = s.hash
	opts.Logger = s.logger
	return opts
}

// handleBulkUpload runs a user import and flashes the report lines.
func (s *Server) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	const page = "/bulk-user-upload"
	if err := s.parseMultipart(w, r); err != nil {
		s.logger.Warn("bulk upload form", zap.Error(err))
		s.redirectWithFlash(w, r, page, flashDanger, "Please select a file to upload")
		return
	}
	file, header, err := formFile(r, "users_file")
	if err != nil {
		s.redirectWithFlash(w, r, page, flashDanger, "Please select a file to upload")
		return
	}
	defer file.Close()
	if !usersUpload.accepts(header.Filename) {
		s.redirectWithFlash(w, r, page, flashDanger, "Please upload an Excel file (.xlsx or .xls) or a CSV file")
		return
	}

	tmpPath, err := saveTempUpload(file, header)
	if err != nil {
		s.logger.Error("save bulk upload", zap.Error(err))
		s.redirectWithFlash(w, r, page, flashDanger, fmt.Sprintf("Error processing file: %v", err))
		return
	}
	defer os.Remove(tmpPath)

	report, err := importer.ImportUsers(r.Context(), tmpPath, "", s.store, s.importOptions())
	if err != nil {
		var fatal *importer.FatalError
		if !errors.As(err, &fatal) {
			s.logger.Error("bulk user import", zap.Error(err))
			s.redirectWithFlash(w, r, page, flashDanger, "Error processing file. Please try again.")
			return
		}
		report = importer.FatalReport(fatal)
	}

	sess := s.session(r)
	for i, line := range report.Summary() {
		category := flashSuccess
		if i > 0 || report.SuccessCount == 0 {
			category = flashWarning
		}
		sess.AddFlash(line, category)
	}
	for _, line := range report.Messages() {
		sess.AddFlash(line, flashDanger)
	}
	s.saveSession(w, r, sess)
	http.Redirect(w, r, page, http.StatusSeeOther)
}

func (s *Server) handleUsersTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.UsersTemplateName))
	if err := output.WriteUsersTemplate(w); err != nil {
		s.logger.Error("write users template", zap.Error(err))
	}
}

func (s *Server) handleAttendeesTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.AttendeesTemplateName))
	if err := output.WriteAttendeesTemplate(w); err != nil {
		s.logger.Error("write attendees template", zap.Error(err))
	}
}

func (s *Server) handleAPIUpdateTheme(w http.ResponseWriter, r *http.Request) {
	var body themeRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Theme color is required")
		return
	}
	body.ThemeColor = strings.TrimSpace(body.ThemeColor)
	if err := s.validate.Struct(body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Theme color must be a hex color such as #0f6e84")
		return
	}
	if err := s.store.SetSetting(r.Context(), storage.SettingThemeColor, body.ThemeColor); err != nil {
		s.logger.Error("save theme color", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to save theme color")
		return
	}
	s.logger.Info("theme color saved", zap.String("theme_color", body.ThemeColor))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "theme_color": body.ThemeColor})
}

func (s *Server) handleAPIUpdateApp(w http.ResponseWriter, r *http.Request) {
	var body appSettingsRequest
	if err := decodeJSON(r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "No data provided")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if err := s.validate.Struct(body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Application name is required")
		return
	}
	if err := s.store.SetSetting(r.Context(), storage.SettingAppName, body.Name); err != nil {
		s.logger.Error("save app name", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleAPIUploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		writeJSONError(w, http.StatusBadRequest, "No logo file provided")
		return
	}
	file, header, err := formFile(r, "logo")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No logo file provided")
		return
	}
	defer file.Close()
	if !logoUpload.accepts(header.Filename) {
		writeJSONError(w, http.StatusBadRequest, "Invalid file type. Please upload PNG, JPG, JPEG, or SVG files only.")
		return
	}

	rel, err := s.saveUpload(file, header, logoUpload)
	if err != nil {
		s.logger.Error("save logo", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to upload logo")
		return
	}
	logoURL := uploadURL(rel)
	if err := s.store.SetSetting(r.Context(), storage.SettingAppLogo, logoURL); err != nil {
		s.removeUpload(rel)
		s.logger.Error("save logo setting", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to upload logo")
		return
	}
	s.logger.Info("logo uploaded", zap.String("logo_url", logoURL))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"logo_url": logoURL,
		"message":  "Logo uploaded successfully!",
	})
}

func (s *Server) handleAPIAddCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("category_name"))
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "Category name is required")
		return
	}
	category, err := s.store.CreateCategory(r.Context(), name, strings.TrimSpace(r.FormValue("description")))
	if errors.Is(err, storage.ErrDuplicateName) {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("Category %q already exists", name))
		return
	}
	if err != nil {
		s.logger.Error("create category", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to add category")
		return
	}
	s.addFlash(w, r, flashSuccess, fmt.Sprintf("Category %q added successfully", category.Name))
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": category.ID, "name": category.Name})
}

func (s *Server) handleAPIDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.store.DeleteCategory, "Category deleted successfully", "Category not found")
}

func (s *Server) handleAPIAddEventType(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("type_name"))
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "Event type name is required")
		return
	}
	eventType, err := s.store.CreateEventType(r.Context(), name, strings.TrimSpace(r.FormValue("description")))
	if errors.Is(err, storage.ErrDuplicateName) {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("Event type %q already exists", name))
		return
	}
	if err != nil {
		s.logger.Error("create event type", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to add event type")
		return
	}
	s.addFlash(w, r, flashSuccess, fmt.Sprintf("Event type %q added successfully", eventType.Name))
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": eventType.ID, "name": eventType.Name})
}

func (s *Server) handleAPIDeleteEventType(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, s.store.DeleteEventType, "Event type deleted successfully", "Event type not found")
}

func (s *Server) handleAPIAddUser(w http.ResponseWriter, r *http.Request) {
	email := user.NormalizeEmail(r.FormValue("email"))
	password := strings.TrimSpace(r.FormValue("password"))
	rawRole := strings.TrimSpace(r.FormValue("role"))
	if email == "" || password == "" || rawRole == "" {
		writeJSONError(w, http.StatusBadRequest, "Email, password, and role are required")
		return
	}
	if err := s.validate.Var(email, "email"); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid email %q", email))
		return
	}
	role, err := user.NormalizeRole(rawRole, s.cfg.Import.RoleAliasMap())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid role %q. Must be one of: %s", rawRole, user.RoleNames()))
		return
	}

	hash, err := s.hash(password)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to add user")
		return
	}
	created, err := s.store.CreateUser(r.Context(), user.NewUser{Email: email, PasswordHash: hash, Role: role})
	if errors.Is(err, storage.ErrDuplicateEmail) {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("User with email %q already exists", email))
		return
	}
	if err != nil {
		s.logger.Error("create user", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to add user")
		return
	}

	s.logger.Info("user created", zap.Int64("user_id", created.ID), zap.String("role", string(created.Role)))
	s.addFlash(w, r, flashSuccess, fmt.Sprintf("User %q added successfully", created.Email))
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      created.ID,
		"email":   created.Email,
		"role":    created.Role,
	})
}

func (s *Server) handleAPIDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if account, _ := currentUser(r); account.ID == id {
		writeJSONError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	err = s.store.DeleteUser(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, storage.ErrUserHasEvents):
		writeJSONError(w, http.StatusConflict, "User has events and cannot be deleted")
	case err != nil:
		s.logger.Error("delete user", zap.Int64("user_id", id), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to delete user")
	default:
		s.addFlash(w, r, flashSuccess, "User deleted successfully")
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, id int64) error, success, missing string) {
	id, err := pathID(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	err = remove(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, missing)
		return
	}
	if err != nil {
		s.logger.Error("delete", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Delete failed")
		return
	}
	s.addFlash(w, r, flashSuccess, success)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
