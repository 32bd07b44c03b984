package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gksim/withdrawal-simulator/internal/domain"
)

// GenerateReport renders the report in the named format and writes it to dir,
// returning the written file path.
func GenerateReport(report *domain.Report, format, dir string) (string, error) {
	f, err := GetFormatterByName(format)
	if err != nil {
		return "", err
	}
	return WriteFormatted(f, report, dir)
}

// WriteFormatted runs a formatter and writes its output to a timestamped file
// under dir.
func WriteFormatted(f Formatter, report *domain.Report, dir string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := fmt.Sprintf("withdrawal_report_%s.%s", nowFunc().Format("20060102_150405"), extensionFor(f.Name()))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func extensionFor(name string) string {
	switch name {
	case "console", "console-lite":
		return "txt"
	case "csv", "detailed-csv":
		return "csv"
	case "json":
		return "json"
	case "html":
		return "html"
	case "pdf":
		return "pdf"
	}
	return "txt"
}
