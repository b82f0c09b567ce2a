package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pharmaevents/config"
	"pharmaevents/event"
	"pharmaevents/storage"
	"pharmaevents/user"
)

const testPassword = "Secret123!"

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type testApp struct {
	t      *testing.T
	store  *storage.Store
	server *httptest.Server
	cfg    config.Config
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	return config.Config{
		Server: config.ServerConfig{
			Port:          5000,
			SessionSecret: "test-session-secret-0123456789",
			UploadDir:     t.TempDir(),
			MaxUploadMB:   8,
		},
		Database: config.DatabaseConfig{Driver: storage.DriverSQLite, DSN: ":memory:"},
		Import: config.ImportConfig{
			BatchSize:          50,
			PasswordRequired:   true,
			DefaultPassword:    "ChangeMe123!",
			MaxDisplayedErrors: 10,
		},
		App: config.AppConfig{Name: "PharmaEvents", ThemeColor: "#0f6e84"},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := testConfig(t)
	handler, err := NewServer(store, cfg, nil,
		WithClock(func() time.Time { return testNow }),
		WithPasswordHasher(func(password string) (string, error) { return "hashed:" + password, nil }),
	)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testApp{t: t, store: store, server: server, cfg: cfg}
}

func (a *testApp) createUser(email string, role user.Role) user.User {
	a.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		a.t.Fatalf("hash password: %v", err)
	}
	created, err := a.store.CreateUser(context.Background(), user.NewUser{Email: email, PasswordHash: string(hash), Role: role})
	if err != nil {
		a.t.Fatalf("create user %s: %v", email, err)
	}
	return created
}

func (a *testApp) createEvent(e event.Event) event.Event {
	a.t.Helper()

	id, err := a.store.CreateEvent(context.Background(), e, nil)
	if err != nil {
		a.t.Fatalf("create event %s: %v", e.Name, err)
	}
	stored, err := a.store.GetEvent(context.Background(), id)
	if err != nil {
		a.t.Fatalf("get event %d: %v", id, err)
	}
	return stored
}

// client returns a cookie-keeping client that does not follow redirects.
func (a *testApp) client() *http.Client {
	a.t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		a.t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) login(email string) *http.Client {
	a.t.Helper()

	client := a.client()
	resp := a.postForm(client, "/login", url.Values{"email": {email}, "password": {testPassword}})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/dashboard" {
		a.t.Fatalf("login %s: status %d location %q", email, resp.StatusCode, resp.Header.Get("Location"))
	}
	return client
}

func (a *testApp) get(client *http.Client, path string) (*http.Response, string) {
	a.t.Helper()

	resp, err := client.Get(a.server.URL + path)
	if err != nil {
		a.t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(a.t, resp)
}

func (a *testApp) postForm(client *http.Client, path string, values url.Values) *http.Response {
	a.t.Helper()

	resp, err := client.PostForm(a.server.URL+path, values)
	if err != nil {
		a.t.Fatalf("POST %s: %v", path, err)
	}
	readBody(a.t, resp)
	return resp
}

func (a *testApp) postJSON(client *http.Client, path string, payload any) (*http.Response, map[string]any) {
	a.t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		a.t.Fatalf("marshal payload: %v", err)
	}
	resp, err := client.Post(a.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		a.t.Fatalf("POST %s: %v", path, err)
	}
	return resp, decodeBody(a.t, resp)
}

func (a *testApp) delete(client *http.Client, path string) (*http.Response, map[string]any) {
	a.t.Helper()

	req, err := http.NewRequest(http.MethodDelete, a.server.URL+path, nil)
	if err != nil {
		a.t.Fatalf("build DELETE %s: %v", path, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		a.t.Fatalf("DELETE %s: %v", path, err)
	}
	return resp, decodeBody(a.t, resp)
}

type uploadFile struct {
	field    string
	filename string
	content  string
}

func (a *testApp) postMultipart(client *http.Client, path string, fields url.Values, files ...uploadFile) (*http.Response, string) {
	a.t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				a.t.Fatalf("write field %s: %v", key, err)
			}
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.field, file.filename)
		if err != nil {
			a.t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(part, file.content); err != nil {
			a.t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		a.t.Fatalf("close multipart writer: %v", err)
	}

	resp, err := client.Post(a.server.URL+path, writer.FormDataContentType(), &body)
	if err != nil {
		a.t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(a.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	body := readBody(t, resp)
	out := map[string]any{}
	if strings.TrimSpace(body) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode json %q: %v", body, err)
	}
	return out
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()

	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect to %s, got status %d", location, resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}
