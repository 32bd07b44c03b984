package dataset

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func point(year int, value float64) Point {
	return Point{Year: year, Value: decimal.NewFromFloat(value)}
}

func TestNewSeriesSortsAndDedupes(t *testing.T) {
	series, duplicates := newSeries("test", "unsorted input", "unit test", []Point{
		point(2003, 3),
		point(2000, 1),
		point(2001, 2),
		point(2000, 99),
	})

	assert.Equal(t, 1, duplicates)
	assert.Len(t, series.Points, 3)
	assert.Equal(t, 2000, series.MinYear)
	assert.Equal(t, 2003, series.MaxYear)
	for i := 1; i < len(series.Points); i++ {
		assert.Greater(t, series.Points[i].Year, series.Points[i-1].Year)
	}

	// The first occurrence of a duplicated year wins.
	value, ok := series.Value(2000)
	assert.True(t, ok)
	assert.Equal(t, "1", value.String())
}

func TestCalculateStatistics(t *testing.T) {
	stats := calculateStatistics([]Point{
		point(2000, 10),
		point(2001, 20),
		point(2002, 30),
		point(2003, 40),
	})

	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, "25", stats.Mean.String())
	assert.Equal(t, "25", stats.Median.String())
	assert.Equal(t, "10", stats.Min.String())
	assert.Equal(t, "40", stats.Max.String())

	// Population standard deviation of 10,20,30,40 is sqrt(125).
	expected := decimal.NewFromFloat(11.1803)
	assert.True(t, stats.StdDev.Sub(expected).Abs().LessThan(decimal.NewFromFloat(0.001)),
		"std dev: expected about %s, got %s", expected.StringFixed(4), stats.StdDev.StringFixed(4))
}

func TestCalculateStatisticsOddCountMedian(t *testing.T) {
	stats := calculateStatistics([]Point{
		point(2000, 30),
		point(2001, 10),
		point(2002, 20),
	})
	assert.Equal(t, "20", stats.Median.String())
}

func TestSeriesMissingYears(t *testing.T) {
	series, _ := newSeries("gappy", "", "", []Point{
		point(2000, 1),
		point(2001, 2),
		point(2003, 3),
		point(2005, 4),
	})
	assert.Equal(t, []int{2002, 2004}, series.MissingYears())

	dense, _ := newSeries("dense", "", "", []Point{
		point(2000, 1),
		point(2001, 2),
	})
	assert.Nil(t, dense.MissingYears())
}

func TestSeriesValue(t *testing.T) {
	series, _ := newSeries("lookup", "", "", []Point{
		point(1990, 7.5),
		point(1991, -2.25),
	})

	value, ok := series.Value(1991)
	assert.True(t, ok)
	assert.Equal(t, "-2.25", value.String())

	_, ok = series.Value(1889)
	assert.False(t, ok)
}
