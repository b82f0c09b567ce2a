package importer

import (
	"strings"
)

// Record is one data row of an uploaded sheet. Index counts data rows from 1,
// RowNumber is the physical line in the file (header is line 1).
type Record struct {
	Index     int
	RowNumber int
	Cells     []string
}

// Cell returns the trimmed value at a column position, or "" past the end.
func (r Record) Cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[col])
}

func (r Record) Blank() bool {
	for _, cell := range r.Cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Sheet is the header row plus the data rows of one file.
type Sheet struct {
	Headers []string
	Records []Record
}

// newSheet keeps cells by position, so repeated headers never shadow each other.
func newSheet(headers []string, rows [][]string) Sheet {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, Record{Index: i + 1, RowNumber: i + 2, Cells: row})
	}

	return Sheet{Headers: headers, Records: records}
}
