package domain

// SimulationConfig is the on-disk configuration schema. Numeric inputs stay
// as float64 here; they are converted to decimals, with finiteness checks,
// when the run parameters are built.
type SimulationConfig struct {
	Metadata   Metadata         `yaml:"metadata" mapstructure:"metadata"`
	Parameters ParametersConfig `yaml:"parameters" mapstructure:"parameters"`
	Data       DataConfig       `yaml:"data" mapstructure:"data"`
	Policies   []string         `yaml:"policies,omitempty" mapstructure:"policies"`
	Output     OutputConfig     `yaml:"output,omitempty" mapstructure:"output"`
	Logging    LoggingConfig    `yaml:"logging,omitempty" mapstructure:"logging"`
}

// Metadata labels a configuration for reports.
type Metadata struct {
	Name        string `yaml:"name,omitempty" mapstructure:"name"`
	Description string `yaml:"description,omitempty" mapstructure:"description"`
}

// ParametersConfig holds the core run inputs.
type ParametersConfig struct {
	InitialAssets         float64 `yaml:"initial_assets" mapstructure:"initial_assets"`
	InitialWithdrawalRate float64 `yaml:"initial_withdrawal_rate" mapstructure:"initial_withdrawal_rate"`
	Years                 int     `yaml:"years" mapstructure:"years"`
}

// DataConfig selects the annual data source.
//
// Source is one of:
//   - "embedded": the built-in historical dataset
//   - "directory": Path points at a directory holding returns.csv and inflation.csv
//   - "file": Path points at a single .json or .hjson dataset document
type DataConfig struct {
	Source    string `yaml:"source" mapstructure:"source"`
	Path      string `yaml:"path,omitempty" mapstructure:"path"`
	StartYear int    `yaml:"start_year,omitempty" mapstructure:"start_year"`
}

// OutputConfig selects the report format and destination directory.
type OutputConfig struct {
	Format    string `yaml:"format,omitempty" mapstructure:"format"`
	Directory string `yaml:"directory,omitempty" mapstructure:"directory"`
}

// LoggingConfig holds logging options applied at process startup.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`             // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`           // json, console
	OutputFile string `yaml:"output_file,omitempty" mapstructure:"output_file"` // optional file output
}
