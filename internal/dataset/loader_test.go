package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadCSVSeriesSkipsMalformedRows(t *testing.T) {
	csv := strings.Join([]string{
		"year,value",
		"2000,8.5",
		"not-a-year,1.0",
		"2001",
		"2002,not-a-number",
		"2003,-3.25",
		"2004,12.0,extra-column-is-fine",
	}, "\n")

	points, skipped, err := readCSVSeries(strings.NewReader(csv))
	assert.NoError(t, err)
	assert.Equal(t, 3, skipped)
	assert.Len(t, points, 3)
	assert.Equal(t, 2000, points[0].Year)
	assert.Equal(t, "8.5", points[0].Value.String())
	assert.Equal(t, 2003, points[1].Year)
	assert.Equal(t, 2004, points[2].Year)
}

func TestLoadCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "returns.csv")
	content := "year,value\n2001,10.5\n2000,8.0\nbad-row\n2002,-5.5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	series, skipped, err := LoadCSVFile(path, "returns", "test returns", "unit test")
	assert.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "returns", series.Name)
	assert.Equal(t, 2000, series.MinYear)
	assert.Equal(t, 2002, series.MaxYear)
	assert.Len(t, series.Points, 3)
	assert.Equal(t, 3, series.Statistics.Count)
}

func TestLoadCSVFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadCSVFile(filepath.Join(dir, "absent.csv"), "x", "", "")
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, []byte("year,value\nbad,bad\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	_, _, err = LoadCSVFile(empty, "x", "", "")
	assert.Error(t, err, "a file with no valid rows must fail")
}

func TestParseDocumentJSON(t *testing.T) {
	data := []byte(`{
		"name": "test-data",
		"description": "three good rows and one incomplete",
		"source": "unit test",
		"years": [
			{"year": 2000, "return": 10.0, "inflation": 2.0},
			{"year": 2001, "return": -5.0, "inflation": 3.0},
			{"year": 2002, "return": 7.5},
			{"year": 2003, "return": 12.0, "inflation": 1.5}
		]
	}`)

	doc, err := ParseDocument(data, FormatJSON)
	assert.NoError(t, err)
	assert.Equal(t, "test-data", doc.Name)
	assert.Equal(t, 1, doc.SkippedRows, "the row without inflation is rejected")
	assert.Equal(t, "test-data returns", doc.Returns.Name)
	assert.Equal(t, "test-data inflation", doc.Inflation.Name)
	assert.Len(t, doc.Returns.Points, 3)
	assert.Len(t, doc.Inflation.Points, 3)
	assert.Equal(t, 2000, doc.Returns.MinYear)
	assert.Equal(t, 2003, doc.Returns.MaxYear)

	value, ok := doc.Inflation.Value(2001)
	assert.True(t, ok)
	assert.Equal(t, "3", value.String())
}

func TestParseDocumentHJSON(t *testing.T) {
	data := []byte(`{
  # comments and quoteless keys are fine in hjson
  name: hand-rolled
  description: written for the comment handling test
  source: unit test
  years: [
    {
      year: 2000
      return: 10
      inflation: 2
    }
    {
      year: 2001
      return: -5
      inflation: 3
    }
  ]
}`)

	doc, err := ParseDocument(data, FormatHJSON)
	assert.NoError(t, err)
	assert.Equal(t, "hand-rolled", doc.Name)
	assert.Len(t, doc.Returns.Points, 2)
	assert.Len(t, doc.Inflation.Points, 2)

	value, ok := doc.Returns.Value(2001)
	assert.True(t, ok)
	assert.Equal(t, "-5", value.String())
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := ParseDocument([]byte("{}"), FormatJSON)
	assert.Error(t, err, "a document without years must fail")

	_, err = ParseDocument([]byte(`{"years": [{"year": 2000}]}`), FormatJSON)
	assert.Error(t, err, "a document with no complete rows must fail")

	_, err = ParseDocument([]byte("{"), FormatJSON)
	assert.Error(t, err)

	_, err = ParseDocument([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestFormatForFile(t *testing.T) {
	format, err := FormatForFile("data/history.json")
	assert.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	format, err = FormatForFile("data/HISTORY.HJSON")
	assert.NoError(t, err)
	assert.Equal(t, FormatHJSON, format)

	_, err = FormatForFile("data/history.csv")
	assert.Error(t, err)
}
