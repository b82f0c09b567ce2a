package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrLegacyWorkbook is returned for binary .xls files, which excelize cannot open.
var ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx or .csv")

// ExcelReader reads the first worksheet. Blank rows above the header are skipped.
type ExcelReader struct{}

func (r *ExcelReader) Read(path string) (Sheet, error) {
	file, err := excelize.OpenFile(path)
	if err != nil && (errors.Is(err, excelize.ErrWorkbookFileFormat) || strings.EqualFold(filepath.Ext(path), ".xls")) {
		return Sheet{}, ErrLegacyWorkbook
	}
	if err != nil {
		return Sheet{}, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return Sheet{}, fmt.Errorf("excel file has no sheets: %s", path)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return Sheet{}, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	header := 0
	for header < len(rows) && (Record{Cells: rows[header]}).Blank() {
		header++
	}
	if header == len(rows) {
		return Sheet{}, ErrEmptyFile
	}

	sheet := newSheet(rows[header], rows[header+1:])
	for i := range sheet.Records {
		sheet.Records[i].RowNumber += header
	}
	return sheet, nil
}
