package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"pharmaevents/event"
	"pharmaevents/internal/classify"
	"pharmaevents/internal/htmlsanitize"
	"pharmaevents/internal/timeutil"
)

type Writer interface {
	Write(w io.Writer, events []event.Event) error
	ContentType() string
	Extension() string
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv", "":
		return &CSVWriter{Now: time.Now}, nil
	case "excel", "xlsx":
		return &ExcelWriter{Now: time.Now}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile writes events to path in the given format.
func WriteFile(path, format string, events []event.Event) error {
	writer, err := WriterForFormat(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	if err := writer.Write(file, events); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", path, err)
	}
	return nil
}

var eventHeaders = []string{
	"ID",
	"Name",
	"Requester",
	"Online",
	"StartDateTime",
	"EndDateTime",
	"RegistrationDeadline",
	"Governorate",
	"Venue",
	"EventType",
	"Description",
	"Attendees",
	"CreatedAt",
	"Status",
	"Phase",
	"Categories",
}

func eventRow(e event.Event, now time.Time) []string {
	online := "No"
	if e.IsOnline {
		online = "Yes"
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Name,
		e.CreatorEmail,
		online,
		timeutil.FormatOrEmpty(e.StartDateTime, timeutil.ExportLayout),
		timeutil.FormatOrEmpty(e.EndDateTime, timeutil.ExportLayout),
		timeutil.FormatOrEmpty(e.RegistrationDeadline, timeutil.ExportLayout),
		e.Governorate,
		e.Venue,
		e.EventTypeName,
		htmlsanitize.PlainText(e.Description),
		strconv.Itoa(e.AttendeesCount),
		timeutil.FormatOrEmpty(e.CreatedAt, timeutil.ExportLayout),
		string(e.Status),
		string(classify.PhaseOf(e, now)),
		e.CategoryNames(),
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
