package user

import (
	"errors"
	"testing"
)

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    Role
		wantErr bool
	}{
		{name: "admin lower", raw: "admin", want: RoleAdmin},
		{name: "admin title", raw: "Admin", want: RoleAdmin},
		{name: "admin upper padded", raw: "  ADMIN ", want: RoleAdmin},
		{name: "medical rep with space", raw: "Medical Rep", want: RoleMedicalRep},
		{name: "medical rep underscore", raw: "medical_rep", want: RoleMedicalRep},
		{name: "medical rep hyphen", raw: "Medical-Rep", want: RoleMedicalRep},
		{name: "event manager with space", raw: "event manager", want: RoleEventManager},
		{name: "event manager underscore", raw: "EVENT_MANAGER", want: RoleEventManager},
		{name: "manager is unknown", raw: "manager", wantErr: true},
		{name: "empty", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRole(tt.raw, nil)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRole) {
					t.Fatalf("expected ErrInvalidRole, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected role: want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeRole_UsesAliases(t *testing.T) {
	t.Parallel()

	aliases := map[string]Role{
		"Sales Rep": RoleMedicalRep,
		"bogus":     Role("owner"),
	}

	got, err := NormalizeRole("sales-rep", aliases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != RoleMedicalRep {
		t.Fatalf("unexpected role: want %q, got %q", RoleMedicalRep, got)
	}

	if _, err := NormalizeRole("bogus", aliases); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected alias to an unknown role to be rejected, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmail("  A.User@Example.COM "); got != "a.user@example.com" {
		t.Fatalf("unexpected email: %q", got)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("SecurePass123!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPassword(hash, "SecurePass123!") {
		t.Fatalf("expected password to match hash")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to be rejected")
	}
}
