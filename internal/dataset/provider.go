package dataset

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/gksim/withdrawal-simulator/internal/domain"
	"github.com/gksim/withdrawal-simulator/pkg/yearspan"
)

//go:embed data/default.json
var defaultDataset []byte

// Data source names accepted in configuration.
const (
	SourceEmbedded  = "embedded"
	SourceDirectory = "directory"
	SourceFile      = "file"
)

// Conventional filenames inside a dataset directory.
const (
	returnsFileName   = "returns.csv"
	inflationFileName = "inflation.csv"
)

// minQualityYears is the aligned-year count below which the provider warns
// that results will rest on very little history.
const minQualityYears = 10

// Merge inner-joins the return and inflation series by year, ascending.
// Years present in only one series are dropped; an empty join is an error.
func Merge(returns, inflation Series) ([]domain.AnnualDatum, error) {
	overlap, ok := yearspan.Overlap(returns.Span(), inflation.Span())
	if !ok {
		return nil, fmt.Errorf("series share no years: %s covers %s, %s covers %s",
			returns.Name, returns.Span(), inflation.Name, inflation.Span())
	}

	data := make([]domain.AnnualDatum, 0, overlap.Length())
	for year := overlap.First; year <= overlap.Last; year++ {
		ret, ok := returns.Value(year)
		if !ok {
			continue
		}
		infl, ok := inflation.Value(year)
		if !ok {
			continue
		}
		data = append(data, domain.AnnualDatum{
			Year:             year,
			ReturnPercent:    ret,
			InflationPercent: infl,
		})
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("series share no years within %s", overlap)
	}
	return data, nil
}

// Window slices a contiguous run from merged annual data, beginning exactly
// at startYear.
func Window(data []domain.AnnualDatum, startYear, length int) ([]domain.AnnualDatum, error) {
	if length < 1 {
		return nil, fmt.Errorf("window length must be at least 1, got %d", length)
	}
	start := -1
	for i, d := range data {
		if d.Year == startYear {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("year %d not present in dataset", startYear)
	}
	if start+length > len(data) {
		return nil, fmt.Errorf("dataset has %d years from %d, cannot window %d",
			len(data)-start, startYear, length)
	}
	return data[start : start+length], nil
}

// Provider loads a configured data source once and serves aligned annual
// data to the simulation. It is not safe for concurrent Load calls; load
// before sharing.
type Provider struct {
	Returns   Series
	Inflation Series

	config   domain.DataConfig
	name     string
	merged   []domain.AnnualDatum
	warnings []string
	loaded   bool
}

// NewProvider creates a provider for the configured source. Nothing is read
// until Load.
func NewProvider(config domain.DataConfig) *Provider {
	return &Provider{config: config}
}

// Load reads the configured source, aligns the two series, and gathers
// quality warnings. Loading an already loaded provider is a no-op.
func (p *Provider) Load() error {
	if p.loaded {
		return nil
	}

	var err error
	switch p.config.Source {
	case SourceEmbedded, "":
		err = p.loadEmbedded()
	case SourceDirectory:
		err = p.loadDirectory(p.config.Path)
	case SourceFile:
		err = p.loadFile(p.config.Path)
	default:
		return fmt.Errorf("unknown data source %q (want %s, %s or %s)",
			p.config.Source, SourceEmbedded, SourceDirectory, SourceFile)
	}
	if err != nil {
		return err
	}

	p.merged, err = Merge(p.Returns, p.Inflation)
	if err != nil {
		return err
	}
	p.collectWarnings()
	p.loaded = true
	return nil
}

func (p *Provider) loadEmbedded() error {
	doc, err := ParseDocument(defaultDataset, FormatJSON)
	if err != nil {
		return fmt.Errorf("embedded dataset: %w", err)
	}
	p.adoptDocument(doc)
	return nil
}

func (p *Provider) loadFile(path string) error {
	if path == "" {
		return fmt.Errorf("data source %q requires a path", SourceFile)
	}
	doc, err := LoadDocumentFile(path)
	if err != nil {
		return err
	}
	p.adoptDocument(doc)
	return nil
}

func (p *Provider) adoptDocument(doc Document) {
	p.Returns = doc.Returns
	p.Inflation = doc.Inflation
	p.name = doc.Name
	if doc.SkippedRows > 0 {
		p.warnings = append(p.warnings,
			fmt.Sprintf("%s: skipped %d malformed or duplicate rows", doc.Name, doc.SkippedRows))
	}
}

func (p *Provider) loadDirectory(dir string) error {
	if dir == "" {
		return fmt.Errorf("data source %q requires a path", SourceDirectory)
	}

	returns, skippedReturns, err := LoadCSVFile(
		filepath.Join(dir, returnsFileName), "returns", "Annual portfolio returns", dir)
	if err != nil {
		return fmt.Errorf("failed to load returns: %w", err)
	}
	inflation, skippedInflation, err := LoadCSVFile(
		filepath.Join(dir, inflationFileName), "inflation", "Annual inflation rates", dir)
	if err != nil {
		return fmt.Errorf("failed to load inflation: %w", err)
	}

	p.Returns = returns
	p.Inflation = inflation
	p.name = filepath.Base(dir)
	if skippedReturns > 0 {
		p.warnings = append(p.warnings,
			fmt.Sprintf("%s: skipped %d malformed or duplicate rows", returnsFileName, skippedReturns))
	}
	if skippedInflation > 0 {
		p.warnings = append(p.warnings,
			fmt.Sprintf("%s: skipped %d malformed or duplicate rows", inflationFileName, skippedInflation))
	}
	return nil
}

func (p *Provider) collectWarnings() {
	if len(p.merged) < minQualityYears {
		p.warnings = append(p.warnings,
			fmt.Sprintf("dataset provides only %d aligned years; results will rest on very little history", len(p.merged)))
	}
	for _, s := range []Series{p.Returns, p.Inflation} {
		if missing := s.MissingYears(); len(missing) > 0 {
			p.warnings = append(p.warnings,
				fmt.Sprintf("%s: %d missing years inside %s", s.Name, len(missing), s.Span()))
		}
	}
}

// AnnualData returns aligned data for a run of the given length, honoring
// the configured start year. Without a configured start year the run begins
// at the start of the aligned range.
func (p *Provider) AnnualData(years int) ([]domain.AnnualDatum, error) {
	if years < 1 {
		return nil, fmt.Errorf("years must be at least 1, got %d", years)
	}
	data, err := p.AllData()
	if err != nil {
		return nil, err
	}
	if len(data) < years {
		return nil, fmt.Errorf("dataset provides %d years from %d, need %d",
			len(data), data[0].Year, years)
	}
	return data[:years], nil
}

// AllData returns every aligned year from the configured start year onward,
// for rolling backtests.
func (p *Provider) AllData() ([]domain.AnnualDatum, error) {
	if !p.loaded {
		return nil, fmt.Errorf("dataset not loaded")
	}
	if p.config.StartYear == 0 {
		return p.merged, nil
	}
	for i, d := range p.merged {
		if d.Year >= p.config.StartYear {
			return p.merged[i:], nil
		}
	}
	return nil, fmt.Errorf("start year %d is after the dataset range %s",
		p.config.StartYear, p.Span())
}

// Name returns a human-readable dataset name for report headers.
func (p *Provider) Name() string { return p.name }

// Span returns the aligned year range.
func (p *Provider) Span() yearspan.Span {
	if len(p.merged) == 0 {
		return yearspan.Span{}
	}
	return yearspan.New(p.merged[0].Year, p.merged[len(p.merged)-1].Year)
}

// ValidateQuality returns human-readable warnings about the loaded data.
// An empty slice means no concerns.
func (p *Provider) ValidateQuality() []string {
	return p.warnings
}
