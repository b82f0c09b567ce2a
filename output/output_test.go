package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmaevents/event"
	"pharmaevents/importer"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleEvents() []event.Event {
	return []event.Event{
		{
			ID:            7,
			Name:          "Cardio Update",
			Description:   "<p>New <b>guidelines</b></p>",
			EventTypeName: "Conference",
			IsOnline:      true,
			StartDateTime: time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC),
			EndDateTime:   time.Date(2026, 7, 2, 17, 0, 0, 0, time.UTC),
			Governorate:   "Giza",
			CreatorEmail:  "manager@pharma.eg",
			Status:        event.StatusApproved,
			Categories:    []event.Category{{Name: "Cardiology"}, {Name: "Diabetes"}},
		},
		{
			ID:             8,
			Name:           "Rep Workshop",
			StartDateTime:  time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC),
			EndDateTime:    time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC),
			AttendeesCount: 12,
			Status:         event.StatusPending,
		},
	}
}

func TestCSVWriter_WritesEventRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := &CSVWriter{Now: func() time.Time { return fixedNow }}
	if err := writer.Write(&buf, sampleEvents()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(eventHeaders, ",") {
		t.Fatalf("unexpected headers: %v", rows[0])
	}

	first := rows[1]
	if first[1] != "Cardio Update" || first[2] != "manager@pharma.eg" || first[3] != "Yes" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if first[4] != "2026-07-02 09:00" || first[10] != "New guidelines" {
		t.Fatalf("unexpected formatted values: %v", first)
	}
	if first[14] != "upcoming" || first[15] != "Cardiology, Diabetes" {
		t.Fatalf("unexpected phase or categories: %v", first)
	}
	if rows[2][3] != "No" || rows[2][14] != "completed" || rows[2][6] != "" {
		t.Fatalf("unexpected second row: %v", rows[2])
	}
}

func TestExcelWriter_WritesEventsSheet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer, err := WriterForFormat("excel")
	if err != nil {
		t.Fatalf("writer for format: %v", err)
	}
	if writer.Extension() != "xlsx" {
		t.Fatalf("unexpected extension: %s", writer.Extension())
	}
	if err := writer.Write(&buf, sampleEvents()); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	value, err := file.GetCellValue("Events", "B2")
	if err != nil {
		t.Fatalf("get cell: %v", err)
	}
	if value != "Cardio Update" {
		t.Fatalf("unexpected B2 value: %q", value)
	}
}

func TestWriterForFormat_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestBuildMonthlySummaries(t *testing.T) {
	t.Parallel()

	events := append(sampleEvents(), event.Event{
		StartDateTime:  time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC),
		Status:         event.StatusRejected,
		AttendeesCount: 3,
	})

	summaries := BuildMonthlySummaries(events, time.UTC)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 months, got %d", len(summaries))
	}
	may, july := summaries[0], summaries[1]
	if may.Month != "2026-05" || may.EventCount != 1 || may.Pending != 1 || may.Attendees != 12 {
		t.Fatalf("unexpected may summary: %+v", may)
	}
	if july.Month != "2026-07" || july.EventCount != 2 || july.Online != 1 || july.Offline != 1 || july.Approved != 1 || july.Rejected != 1 {
		t.Fatalf("unexpected july summary: %+v", july)
	}

	var buf bytes.Buffer
	if err := WriteMonthlySummaries(&buf, "csv", summaries); err != nil {
		t.Fatalf("write monthly summaries: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Month,Events,Online") {
		t.Fatalf("unexpected csv output: %q", buf.String())
	}
}

func TestWriteUsersTemplate_IsImportable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), UsersTemplateName)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create template file: %v", err)
	}
	if err := WriteUsersTemplate(file); err != nil {
		t.Fatalf("write users template: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close template file: %v", err)
	}

	sheet, err := importer.ReadFile(path, "")
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if len(sheet.Records) != 3 {
		t.Fatalf("expected 3 sample rows, got %d", len(sheet.Records))
	}
	if _, err := importer.ResolveColumns(sheet.Headers, true); err != nil {
		t.Fatalf("expected template headers to resolve: %v", err)
	}
}

func TestWriteAttendeesTemplate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteAttendeesTemplate(&buf); err != nil {
		t.Fatalf("write attendees template: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Name" || rows[0][6] != "Special_Requirements" {
		t.Fatalf("unexpected template: %v", rows)
	}
}
