package output

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmaevents/event"
)

type ExcelWriter struct {
	Now func() time.Time
}

func (w *ExcelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *ExcelWriter) Extension() string {
	return "xlsx"
}

func (w *ExcelWriter) Write(out io.Writer, events []event.Event) error {
	now := nowFunc(w.Now)()
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, eventRow(e, now))
	}
	return writeSheet(out, "Events", eventHeaders, rows)
}

// writeSheet writes a single-sheet workbook with a bold header row.
func writeSheet(out io.Writer, sheetName string, headers []string, rows [][]string) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := file.SetCellStyle(sheetName, "A1", last, style); err != nil {
			return fmt.Errorf("set header style: %w", err)
		}
	}

	for i, values := range rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.Write(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}

	return nil
}
