package importer

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"pharmaevents/user"
)

var fieldValidator = validator.New()

// ValidatedUser is a row that passed validation and role normalization.
// Password is plain text until the committer hashes it.
type ValidatedUser struct {
	Row      int
	Email    string
	Role     user.Role
	Password string
}

// ValidateRow checks the required fields of one row and normalizes its email
// and role. It has no side effects.
func ValidateRow(record Record, cols ColumnMap, opts Options) (ValidatedUser, *RowError) {
	email := user.NormalizeEmail(record.Cell(cols.Email))
	rawRole := record.Cell(cols.Role)
	password := ""
	if cols.HasPassword() {
		password = record.Cell(cols.Password)
	}

	missing := make([]string, 0, 3)
	if email == "" {
		missing = append(missing, "Email")
	}
	if opts.PasswordRequired && password == "" {
		missing = append(missing, "Password")
	}
	if rawRole == "" {
		missing = append(missing, "Role")
	}
	if len(missing) > 0 {
		return ValidatedUser{}, newRowError(record.Index, ValidationError,
			"Missing required fields (%s)", strings.Join(missing, ", "))
	}

	if err := fieldValidator.Var(email, "email"); err != nil {
		return ValidatedUser{}, newRowError(record.Index, ValidationError, "Invalid email %q", email)
	}

	role, err := user.NormalizeRole(rawRole, opts.RoleAliases)
	if err != nil {
		return ValidatedUser{}, newRowError(record.Index, NormalizationError,
			"Invalid role %q. Must be one of: %s", strings.ToLower(rawRole), user.RoleNames())
	}

	if password == "" {
		password = opts.DefaultPassword
	}

	return ValidatedUser{
		Row:      record.Index,
		Email:    email,
		Role:     role,
		Password: password,
	}, nil
}
