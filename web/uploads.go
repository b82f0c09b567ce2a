package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// uploadKind describes where an accepted upload is stored.
type uploadKind struct {
	dir        string
	prefix     string
	extensions []string
}

var (
	eventImageUpload = uploadKind{dir: "events", prefix: "event", extensions: []string{"png", "jpg", "jpeg", "gif"}}
	attendeesUpload  = uploadKind{dir: "attendees", prefix: "attendees", extensions: []string{"csv", "xlsx", "xls"}}
	logoUpload       = uploadKind{dir: "", prefix: "logo", extensions: []string{"png", "jpg", "jpeg", "svg"}}
	usersUpload      = uploadKind{extensions: []string{"xlsx", "xls", "csv"}}
)

var errNoFile = errors.New("no file uploaded")

func (k uploadKind) accepts(filename string) bool {
	ext := uploadExt(filename)
	for _, allowed := range k.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func uploadExt(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), "."))
}

func (s *Server) maxUploadBytes() int64 {
	mb := s.cfg.Server.MaxUploadMB
	if mb <= 0 {
		mb = 32
	}
	return mb << 20
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	limit := s.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return fmt.Errorf("parse multipart form: %w", err)
	}
	return nil
}

// formFile returns the named upload, or errNoFile when the field is absent or
// has no filename.
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, errNoFile
	}
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(header.Filename) == "" {
		_ = file.Close()
		return nil, nil, errNoFile
	}
	return file, header, nil
}

// saveUpload stores an upload under the upload directory and returns its path
// relative to that directory, using forward slashes.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader, kind uploadKind) (string, error) {
	dir := filepath.Join(s.cfg.Server.UploadDir, kind.dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.%s", kind.prefix, uuid.NewString(), uploadExt(header.Filename))
	target, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(target, file); err != nil {
		_ = target.Close()
		_ = os.Remove(target.Name())
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := target.Close(); err != nil {
		_ = os.Remove(target.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path.Join(filepath.ToSlash(kind.dir), name), nil
}

func (s *Server) uploadPath(rel string) string {
	return filepath.Join(s.cfg.Server.UploadDir, filepath.FromSlash(rel))
}

func (s *Server) removeUpload(rel string) {
	if rel == "" {
		return
	}
	if err := os.Remove(s.uploadPath(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove upload", zap.String("file", rel), zap.Error(err))
	}
}

// saveTempUpload copies an upload into a temp file that keeps the original
// extension, so readers can infer the format from it.
func saveTempUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	tmp, err := os.CreateTemp("", tempUploadPattern(header.Filename))
	if err != nil {
		return "", fmt.Errorf("create temp upload: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close upload temp file: %w", err)
	}
	return tmpPath, nil
}

func (s *Server) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	if rel == "" {
		http.NotFound(w, r)
		return
	}
	full := s.uploadPath(rel)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

func uploadURL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/uploads/" + rel
}
