package user

import (
	"errors"
	"strings"
	"time"
)

// Role is the canonical access level of an account.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleEventManager Role = "event_manager"
	RoleMedicalRep   Role = "medical_rep"
)

var ErrInvalidRole = errors.New("invalid role")

// synonyms is keyed by the separator-collapsed form produced by roleKey.
var synonyms = map[string]Role{
	"admin":         RoleAdmin,
	"event_manager": RoleEventManager,
	"medical_rep":   RoleMedicalRep,
}

// User is a persisted account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NewUser is an account ready to be inserted; the password is already hashed.
type NewUser struct {
	Email        string
	PasswordHash string
	Role         Role
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsMedicalRep() bool {
	return u.Role == RoleMedicalRep
}

// Roles returns the canonical roles in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEventManager, RoleMedicalRep}
}

// RoleNames returns the canonical role values joined for messages.
func RoleNames() string {
	names := make([]string, 0, 3)
	for _, role := range Roles() {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEventManager, RoleMedicalRep:
		return true
	default:
		return false
	}
}

func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleEventManager:
		return "Event Manager"
	case RoleMedicalRep:
		return "Medical Rep"
	default:
		return string(r)
	}
}

// NormalizeRole maps a free-text role label to its canonical role. Matching
// ignores case and treats spaces, hyphens and underscores alike. Extra aliases
// are consulted after the built-in synonyms.
func NormalizeRole(raw string, aliases map[string]Role) (Role, error) {
	key := roleKey(raw)
	if key == "" {
		return "", ErrInvalidRole
	}
	if role, ok := synonyms[key]; ok {
		return role, nil
	}
	for alias, role := range aliases {
		if roleKey(alias) == key && role.Valid() {
			return role, nil
		}
	}
	return "", ErrInvalidRole
}

func roleKey(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(raw)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, "_")
}

// NormalizeEmail trims and lower-cases an address for storage and comparison.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
