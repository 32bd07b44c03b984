package dataset

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gksim/withdrawal-simulator/pkg/yearspan"
)

// Point represents a single year's observation in a historical series.
type Point struct {
	Year  int             `json:"year"`
	Value decimal.Decimal `json:"value"`
}

// Statistics provides a statistical summary of a series, computed on load.
type Statistics struct {
	Mean   decimal.Decimal `json:"mean"`
	Median decimal.Decimal `json:"median"`
	StdDev decimal.Decimal `json:"std_dev"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Count  int             `json:"count"`
}

// Series represents a complete historical series with metadata.
type Series struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	Points      []Point    `json:"points"`
	MinYear     int        `json:"min_year"`
	MaxYear     int        `json:"max_year"`
	Statistics  Statistics `json:"statistics"`
}

// newSeries builds a series from raw points: sorts them by year, drops
// duplicate years keeping the first occurrence, and computes the year range
// and statistics. The second return is the number of duplicates dropped.
func newSeries(name, description, source string, points []Point) (Series, int) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	deduped := points[:0]
	duplicates := 0
	for i, p := range points {
		if i > 0 && p.Year == points[i-1].Year {
			duplicates++
			continue
		}
		deduped = append(deduped, p)
	}
	points = deduped

	s := Series{
		Name:        name,
		Description: description,
		Source:      source,
		Points:      points,
	}
	if len(points) == 0 {
		return s, duplicates
	}
	s.MinYear = points[0].Year
	s.MaxYear = points[len(points)-1].Year
	s.Statistics = calculateStatistics(points)
	return s, duplicates
}

// calculateStatistics computes the summary measures over the point values.
// The standard deviation goes through float64 for the square root.
func calculateStatistics(points []Point) Statistics {
	if len(points) == 0 {
		return Statistics{}
	}

	count := decimal.NewFromInt(int64(len(points)))
	var sum decimal.Decimal
	min := points[0].Value
	max := points[0].Value
	for _, p := range points {
		sum = sum.Add(p.Value)
		if p.Value.LessThan(min) {
			min = p.Value
		}
		if p.Value.GreaterThan(max) {
			max = p.Value
		}
	}
	mean := sum.Div(count)

	var varianceSum decimal.Decimal
	for _, p := range points {
		diff := p.Value.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	variance := varianceSum.Div(count)
	varianceFloat, _ := variance.Float64()
	stdDev := decimal.NewFromFloat(math.Sqrt(varianceFloat))

	values := make([]decimal.Decimal, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
	var median decimal.Decimal
	mid := len(values) / 2
	if len(values)%2 == 1 {
		median = values[mid]
	} else {
		median = values[mid-1].Add(values[mid]).Div(decimal.NewFromInt(2))
	}

	return Statistics{
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Count:  len(points),
	}
}

// Span returns the inclusive year range the series covers.
func (s Series) Span() yearspan.Span {
	return yearspan.New(s.MinYear, s.MaxYear)
}

// Value returns the series value for a year, and whether the year is present.
func (s Series) Value(year int) (decimal.Decimal, bool) {
	for _, p := range s.Points {
		if p.Year == year {
			return p.Value, true
		}
	}
	return decimal.Zero, false
}

// MissingYears lists the years inside the series range with no data point.
func (s Series) MissingYears() []int {
	if len(s.Points) < 2 {
		return nil
	}
	present := make(map[int]bool, len(s.Points))
	for _, p := range s.Points {
		present[p.Year] = true
	}
	var missing []int
	for year := s.MinYear; year <= s.MaxYear; year++ {
		if !present[year] {
			missing = append(missing, year)
		}
	}
	return missing
}
