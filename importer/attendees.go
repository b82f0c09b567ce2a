package importer

import (
	"strings"
)

// AttendeeSummary describes an uploaded attendee list.
type AttendeeSummary struct {
	Rows        int
	Count       int
	NameColumn  string
	EmailColumn string
}

// CountAttendees reads an attendee list and counts its attendees. Rows are
// counted by the first name-like column when there is one, otherwise every
// non-blank row counts.
func CountAttendees(path string, format string) (AttendeeSummary, error) {
	sheet, err := ReadFile(path, format)
	if err != nil {
		return AttendeeSummary{}, err
	}

	nameCol, emailCol := -1, -1
	summary := AttendeeSummary{}
	for i, header := range sheet.Headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		if nameCol < 0 && containsAny(lower, "name", "participant", "attendee") {
			nameCol = i
			summary.NameColumn = strings.TrimSpace(header)
		}
		if emailCol < 0 && containsAny(lower, "email", "mail") {
			emailCol = i
			summary.EmailColumn = strings.TrimSpace(header)
		}
	}

	for _, record := range sheet.Records {
		if record.Blank() {
			continue
		}
		summary.Rows++
		if nameCol < 0 || record.Cell(nameCol) != "" {
			summary.Count++
		}
	}
	if summary.Rows == 0 {
		return AttendeeSummary{}, ErrEmptyFile
	}
	return summary, nil
}

func containsAny(value string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}
