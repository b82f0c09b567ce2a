package importer

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Reader interface {
	Read(path string) (Sheet, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm", "xls":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// InferFormat returns format when set, otherwise derives it from the file
// extension.
func InferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm", "xls":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

// ReadFile infers the format of path and reads it.
func ReadFile(path string, format string) (Sheet, error) {
	sourceFormat, err := InferFormat(path, format)
	if err != nil {
		return Sheet{}, err
	}
	reader, err := ReaderForFormat(sourceFormat)
	if err != nil {
		return Sheet{}, err
	}
	return reader.Read(path)
}

func normalizeFormat(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.TrimPrefix(trimmed, ".")
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	return strings.ReplaceAll(trimmed, " ", "")
}
