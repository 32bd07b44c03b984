package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/pkg/decimalutil"
)

// Dataset document formats.
const (
	FormatJSON  = "json"
	FormatHJSON = "hjson"
)

// readCSVSeries parses `year,value` rows from a CSV stream. Malformed rows
// are skipped and counted rather than failing the whole file; only an
// unreadable stream is an error.
func readCSVSeries(r io.Reader) ([]Point, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < 2 {
		return nil, 0, fmt.Errorf("invalid CSV format: expected year,value columns")
	}

	var points []Point
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to read data row: %w", err)
		}

		if len(record) < 2 {
			skipped++
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			skipped++
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			skipped++
			continue
		}
		points = append(points, Point{Year: year, Value: value})
	}
	return points, skipped, nil
}

// LoadCSVFile loads a single `year,value` series from a CSV file. The
// returned count covers malformed rows and duplicate years that were skipped.
func LoadCSVFile(path, name, description, source string) (Series, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return Series{}, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	points, skipped, err := readCSVSeries(file)
	if err != nil {
		return Series{}, skipped, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(points) == 0 {
		return Series{}, skipped, fmt.Errorf("no valid data points found in %s", path)
	}
	series, duplicates := newSeries(name, description, source, points)
	return series, skipped + duplicates, nil
}

// documentFile is the on-disk shape of a single-file dataset: metadata plus
// one row per year carrying both series.
type documentFile struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Source      string        `json:"source"`
	Years       []documentRow `json:"years"`
}

// documentRow uses pointers so absent fields are distinguishable from zero
// values and the row can be rejected instead of silently zeroed.
type documentRow struct {
	Year      int      `json:"year"`
	Return    *float64 `json:"return"`
	Inflation *float64 `json:"inflation"`
}

// Document is a parsed single-file dataset: both series plus the metadata
// shared between them.
type Document struct {
	Name        string
	Returns     Series
	Inflation   Series
	SkippedRows int
}

// ParseDocument parses a single-document dataset in the given format into
// its return and inflation series. Rows with missing or non-finite numbers
// are skipped and counted.
func ParseDocument(data []byte, format string) (Document, error) {
	var doc documentFile
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatHJSON:
		err = hjson.Unmarshal(data, &doc)
	default:
		return Document{}, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse dataset document: %w", err)
	}
	if len(doc.Years) == 0 {
		return Document{}, fmt.Errorf("dataset document has no years")
	}

	skipped := 0
	returnPoints := make([]Point, 0, len(doc.Years))
	inflationPoints := make([]Point, 0, len(doc.Years))
	for _, row := range doc.Years {
		if row.Return == nil || row.Inflation == nil {
			skipped++
			continue
		}
		ret, err := decimalutil.FromFloat(*row.Return)
		if err != nil {
			skipped++
			continue
		}
		infl, err := decimalutil.FromFloat(*row.Inflation)
		if err != nil {
			skipped++
			continue
		}
		returnPoints = append(returnPoints, Point{Year: row.Year, Value: ret})
		inflationPoints = append(inflationPoints, Point{Year: row.Year, Value: infl})
	}
	if len(returnPoints) == 0 {
		return Document{SkippedRows: skipped}, fmt.Errorf("no valid rows in dataset document")
	}

	returns, dupReturns := newSeries(doc.Name+" returns", doc.Description, doc.Source, returnPoints)
	inflation, dupInflation := newSeries(doc.Name+" inflation", doc.Description, doc.Source, inflationPoints)
	return Document{
		Name:        doc.Name,
		Returns:     returns,
		Inflation:   inflation,
		SkippedRows: skipped + dupReturns + dupInflation,
	}, nil
}

// LoadDocumentFile loads a .json or .hjson dataset document from disk.
func LoadDocumentFile(path string) (Document, error) {
	format, err := FormatForFile(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := ParseDocument(data, format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// FormatForFile maps a dataset filename extension onto its parse format.
func FormatForFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".hjson":
		return FormatHJSON, nil
	default:
		return "", fmt.Errorf("unsupported dataset file extension %q (want .json or .hjson)", filepath.Ext(path))
	}
}
