package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	FormDateLayout = "2006-01-02"
	FormTimeLayout = "15:04"
	DisplayLayout  = "02 Jan 2006, 15:04"
	ExportLayout   = "2006-01-02 15:04"
)

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func StartOfYear(value time.Time) time.Time {
	return time.Date(value.Year(), time.January, 1, 0, 0, 0, 0, value.Location())
}

// MonthLabels returns the short month names Jan..Dec.
func MonthLabels() []string {
	labels := make([]string, 0, 12)
	for month := time.January; month <= time.December; month++ {
		labels = append(labels, month.String()[:3])
	}
	return labels
}

// ParseFormDateTime combines the date and time inputs of an HTML form.
// An empty date yields the zero time; an empty time means midnight.
func ParseFormDateTime(dateValue, timeValue string, loc *time.Location) (time.Time, error) {
	dateValue = strings.TrimSpace(dateValue)
	timeValue = strings.TrimSpace(timeValue)
	if dateValue == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}

	if timeValue == "" {
		parsed, err := time.ParseInLocation(FormDateLayout, dateValue, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("unsupported date format: %q", dateValue)
		}
		return parsed, nil
	}

	datetime := dateValue + " " + timeValue
	layouts := []string{
		FormDateLayout + " " + FormTimeLayout,
		FormDateLayout + " 15:04:05",
		FormDateLayout + " 03:04 PM",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, datetime, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date/time format: %q", datetime)
}

// FormatOrEmpty formats value, or returns "" for the zero time.
func FormatOrEmpty(value time.Time, layout string) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(layout)
}
