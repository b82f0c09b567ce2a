package output

import (
	"encoding/csv"
	"fmt"
	"io"
)

var usersTemplateHeaders = []string{"Email", "Role", "Password", "Full Name", "Department", "Phone", "Employee ID"}

var usersTemplateRows = [][]string{
	{"ahmed.hassan@example.com", "medical_rep", "SecurePass123!", "Dr. Ahmed Hassan", "Cardiology", "+20 123 456 7890", "EMP001"},
	{"sarah.mohamed@example.com", "event_manager", "MyPassword456#", "Dr. Sarah Mohamed", "Neurology", "+20 987 654 3210", "EMP002"},
	{"mohamed.ali@example.com", "admin", "AdminPass789$", "Dr. Mohamed Ali", "Administration", "+20 555 123 4567", "EMP003"},
}

var attendeesTemplateHeaders = []string{"Name", "Email", "Phone", "Title", "Company", "Department", "Special_Requirements"}

var attendeesTemplateRows = [][]string{
	{"Dr. Ahmed Hassan", "ahmed.hassan@example.com", "+20 123 456 7890", "Cardiologist", "Cairo Medical Center", "Cardiology", "Vegetarian meal"},
	{"Dr. Sarah Mohamed", "sarah.mohamed@example.com", "+20 987 654 3210", "Neurologist", "Alexandria Hospital", "Neurology", ""},
}

const (
	UsersTemplateName     = "users_template.xlsx"
	AttendeesTemplateName = "attendees_template.csv"
)

// WriteUsersTemplate writes the bulk user upload workbook.
func WriteUsersTemplate(out io.Writer) error {
	return writeSheet(out, "Users", usersTemplateHeaders, usersTemplateRows)
}

// WriteAttendeesTemplate writes the attendee list CSV.
func WriteAttendeesTemplate(out io.Writer) error {
	writer := csv.NewWriter(out)
	if err := writer.Write(attendeesTemplateHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(attendeesTemplateRows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
