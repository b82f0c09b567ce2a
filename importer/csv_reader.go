package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrEmptyFile = errors.New("file is empty")

type CSVReader struct{}

func (r *CSVReader) Read(path string) (Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	// BOMOverride strips a UTF-8 BOM and decodes UTF-16 files that carry one.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(file, decoder))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return Sheet{}, ErrEmptyFile
	}
	if err != nil {
		return Sheet{}, fmt.Errorf("read csv header: %w", err)
	}

	rows := make([][]string, 0, 128)
	lines := make([]int, 0, 128)
	rowNumber := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("read csv row %d: %w", rowNumber+1, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
		rowNumber++
	}

	sheet := newSheet(headers, rows)
	for i := range sheet.Records {
		sheet.Records[i].RowNumber = lines[i]
	}
	return sheet, nil
}
