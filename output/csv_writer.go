package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"pharmaevents/event"
)

type CSVWriter struct {
	Now func() time.Time
}

func (w *CSVWriter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (w *CSVWriter) Extension() string {
	return "csv"
}

func (w *CSVWriter) Write(out io.Writer, events []event.Event) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(eventHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	now := nowFunc(w.Now)()
	for _, e := range events {
		if err := writer.Write(eventRow(e, now)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

func nowFunc(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
