package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"pharmaevents/user"
)

func TestAddUser(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	created, err := addUser(ctx, store, " Jane@Example.com ", "Event Manager", "Secret123", nil, fakeHash)
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if created.Email != "jane@example.com" || created.Role != user.RoleEventManager {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if created.PasswordHash != "hashed:Secret123" {
		t.Fatalf("expected password to be hashed, got %q", created.PasswordHash)
	}

	tests := []struct {
		name     string
		email    string
		role     string
		password string
	}{
		{name: "duplicate email", email: "JANE@example.com", role: "admin", password: "x"},
		{name: "invalid email", email: "jane", role: "admin", password: "x"},
		{name: "unknown role", email: "bob@example.com", role: "owner", password: "x"},
		{name: "empty password", email: "bob@example.com", role: "admin", password: "  "},
	}
	for _, tt := range tests {
		if _, err := addUser(ctx, store, tt.email, tt.role, tt.password, nil, fakeHash); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}

	aliased, err := addUser(ctx, store, "rep@example.com", "Field Rep", "pw", map[string]user.Role{"field rep": user.RoleMedicalRep}, fakeHash)
	if err != nil {
		t.Fatalf("add aliased user: %v", err)
	}
	if aliased.Role != user.RoleMedicalRep {
		t.Fatalf("expected alias to resolve to medical rep, got %s", aliased.Role)
	}
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	for _, email := range []string{"a@test.com", "b@test.com"} {
		if _, err := addUser(ctx, store, email, "admin", "pw", nil, fakeHash); err != nil {
			t.Fatalf("add user %s: %v", email, err)
		}
	}

	var out bytes.Buffer
	if err := listUsers(ctx, store, &out); err != nil {
		t.Fatalf("list users: %v", err)
	}
	text := out.String()
	for _, want := range []string{"EMAIL", "a@test.com", "b@test.com", "Admin", "Users: 2"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in user list, got:\n%s", want, text)
		}
	}
}
