package importer

import (
	"fmt"
	"strings"
)

// ColumnMap holds the column positions of the import fields. Absent columns
// are -1.
type ColumnMap struct {
	Email    int
	Password int
	Role     int
}

func (m ColumnMap) HasPassword() bool {
	return m.Password >= 0
}

// ResolveColumns matches header cells by keyword. A header containing "email"
// is the email column, else one containing "password" is the password column,
// else one containing "role" is the role column. The first match wins.
func ResolveColumns(headers []string, passwordRequired bool) (ColumnMap, error) {
	cols := ColumnMap{Email: -1, Password: -1, Role: -1}
	for i, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		switch {
		case strings.Contains(lower, "email"):
			if cols.Email < 0 {
				cols.Email = i
			}
		case strings.Contains(lower, "password"):
			if cols.Password < 0 {
				cols.Password = i
			}
		case strings.Contains(lower, "role"):
			if cols.Role < 0 {
				cols.Role = i
			}
		}
	}

	missing := make([]string, 0, 3)
	if cols.Email < 0 {
		missing = append(missing, "Email")
	}
	if passwordRequired && cols.Password < 0 {
		missing = append(missing, "Password")
	}
	if cols.Role < 0 {
		missing = append(missing, "Role")
	}
	if len(missing) > 0 {
		return cols, &FatalError{Message: fmt.Sprintf(
			"Missing required columns: %s. Please download the template and use the correct format.",
			strings.Join(missing, ", "),
		)}
	}
	return cols, nil
}
