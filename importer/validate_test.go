package importer

import (
	"testing"

	"pharmaevents/user"
)

var testColumns = ColumnMap{Email: 0, Role: 1, Password: 2}

func testRecord(index int, cells ...string) Record {
	return Record{Index: index, RowNumber: index + 1, Cells: cells}
}

func TestValidateRow_ValidRowsNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cells []string
		email string
		role  user.Role
	}{
		{cells: []string{"  Alice@Example.COM ", "Admin", "pw1"}, email: "alice@example.com", role: user.RoleAdmin},
		{cells: []string{"bob@example.com", "medical rep", "pw2"}, email: "bob@example.com", role: user.RoleMedicalRep},
		{cells: []string{"CAROL@example.com", "Event-Manager", "pw3"}, email: "carol@example.com", role: user.RoleEventManager},
	}

	for i, tc := range tests {
		validated, rowErr := ValidateRow(testRecord(i+1, tc.cells...), testColumns, testOptions())
		if rowErr != nil {
			t.Fatalf("row %d: unexpected error: %s", i+1, rowErr.Message)
		}
		if validated.Email != tc.email || validated.Role != tc.role || validated.Row != i+1 {
			t.Fatalf("row %d: unexpected result: %+v", i+1, validated)
		}
	}
}

func TestValidateRow_MissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cells []string
		want  string
	}{
		{name: "email", cells: []string{"", "admin", "pw"}, want: "Row 4: Missing required fields (Email)"},
		{name: "role", cells: []string{"a@x.com", " ", "pw"}, want: "Row 4: Missing required fields (Role)"},
		{name: "email and role", cells: []string{"", "", "pw"}, want: "Row 4: Missing required fields (Email, Role)"},
		{name: "password", cells: []string{"a@x.com", "admin"}, want: "Row 4: Missing required fields (Password)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, rowErr := ValidateRow(testRecord(4, tc.cells...), testColumns, testOptions())
			if rowErr == nil {
				t.Fatalf("expected validation error")
			}
			if rowErr.Kind != ValidationError || rowErr.Message != tc.want {
				t.Fatalf("unexpected error: %+v", rowErr)
			}
		})
	}
}

func TestValidateRow_DefaultPasswordWhenOptional(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.PasswordRequired = false
	opts.DefaultPassword = "Welcome1!"

	validated, rowErr := ValidateRow(testRecord(1, "a@x.com", "admin"), ColumnMap{Email: 0, Role: 1, Password: -1}, opts)
	if rowErr != nil {
		t.Fatalf("unexpected error: %s", rowErr.Message)
	}
	if validated.Password != "Welcome1!" {
		t.Fatalf("expected default password, got %q", validated.Password)
	}
}

func TestValidateRow_BlankPasswordCellFallsBackWhenOptional(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.PasswordRequired = false
	opts.DefaultPassword = "Welcome1!"
	cols := ColumnMap{Email: 0, Role: 1, Password: 2}

	validated, rowErr := ValidateRow(testRecord(1, "a@x.com", "admin", " "), cols, opts)
	if rowErr != nil {
		t.Fatalf("unexpected error: %s", rowErr.Message)
	}
	if validated.Password != "Welcome1!" {
		t.Fatalf("expected default password for blank cell, got %q", validated.Password)
	}

	validated, rowErr = ValidateRow(testRecord(2, "b@x.com", "admin", "Own123!"), cols, opts)
	if rowErr != nil {
		t.Fatalf("unexpected error: %s", rowErr.Message)
	}
	if validated.Password != "Own123!" {
		t.Fatalf("expected row password to be kept, got %q", validated.Password)
	}
}

func TestValidateRow_InvalidRole(t *testing.T) {
	t.Parallel()

	_, rowErr := ValidateRow(testRecord(2, "a@x.com", "Manager", "pw"), testColumns, testOptions())
	if rowErr == nil {
		t.Fatalf("expected role error")
	}
	want := `Row 2: Invalid role "manager". Must be one of: admin, event_manager, medical_rep`
	if rowErr.Kind != NormalizationError || rowErr.Message != want {
		t.Fatalf("unexpected error: %+v", rowErr)
	}
}

func TestValidateRow_RoleAlias(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.RoleAliases = map[string]user.Role{"Sales Rep": user.RoleMedicalRep}

	validated, rowErr := ValidateRow(testRecord(1, "a@x.com", "sales-rep", "pw"), testColumns, opts)
	if rowErr != nil {
		t.Fatalf("unexpected error: %s", rowErr.Message)
	}
	if validated.Role != user.RoleMedicalRep {
		t.Fatalf("unexpected role: %q", validated.Role)
	}
}

func TestValidateRow_InvalidEmail(t *testing.T) {
	t.Parallel()

	_, rowErr := ValidateRow(testRecord(3, "not-an-email", "admin", "pw"), testColumns, testOptions())
	if rowErr == nil {
		t.Fatalf("expected email error")
	}
	if rowErr.Message != `Row 3: Invalid email "not-an-email"` {
		t.Fatalf("unexpected message: %q", rowErr.Message)
	}
}
